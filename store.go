package holdings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ByteStore is the persistence medium holding the encoded ledger.
//
// ReadAll returns ErrNotFound when nothing was written yet. WriteAll replaces
// the whole content atomically: a concurrent or later ReadAll observes either
// the old or the new content, never a mix.
type ByteStore interface {
	ReadAll(ctx context.Context) ([]byte, error)
	WriteAll(ctx context.Context, data []byte) error
}

// Store loads and saves a ledger in a ByteStore.
type Store struct {
	bytes ByteStore
}

// NewStore creates a ledger store backed by b.
func NewStore(b ByteStore) *Store { return &Store{bytes: b} }

// Load reads and migrates the persisted ledger. An empty ledger is returned
// when nothing has been persisted yet. Corrupt content is reported as a
// *ParseError and is never replaced by an empty ledger.
func (s *Store) Load(ctx context.Context) (*Ledger, error) {
	data, err := s.bytes.ReadAll(ctx)
	if errors.Is(err, ErrNotFound) {
		return NewLedger(), nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}
	return DecodeLedger(bytes.NewReader(data))
}

// Save replaces the persisted ledger with l.
func (s *Store) Save(ctx context.Context, l *Ledger) error {
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	if err := s.bytes.WriteAll(ctx, buf.Bytes()); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	return nil
}

// FileStore is a ByteStore in a single file.
type FileStore struct {
	Path string
}

// ReadAll reads the whole file.
func (f FileStore) ReadAll(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", f.Path, ErrNotFound)
	}
	return data, err
}

// WriteAll writes data to a temporary file next to the target, then renames
// it over the target. A crash leaves either the old or the new file.
func (f FileStore) WriteAll(_ context.Context, data []byte) (err error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for ledger %q: %w", f.Path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", f.Path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("could not write %q: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("could not sync %q: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("could not chmod %q: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("could not replace %q: %w", f.Path, err)
	}
	return nil
}
