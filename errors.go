package holdings

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a ByteStore when nothing has been persisted yet.
	ErrNotFound = errors.New("not found")
	// ErrIndexOutOfRange is wrapped by the ValidationError returned when removing
	// a position that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrSymbolNotFound is returned by providers that do not know a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoPrice is returned by providers that know a symbol but have no price for it.
	ErrNoPrice = errors.New("no price available")
)

// ValidationError reports invalid user input. The ledger is unchanged.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ProviderError reports a failed or timed out upstream lookup.
type ProviderError struct {
	Op     string // e.g. "equity quote", "etf quote", "rate"
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError reports that the ledger could not be read or written.
type PersistenceError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cannot %s ledger: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ParseError reports a persisted ledger that cannot be decoded.
type ParseError struct {
	Index int // record position, -1 for the document itself
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("corrupt ledger: %v", e.Err)
	}
	return fmt.Sprintf("corrupt ledger record #%d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
