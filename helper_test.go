package holdings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// D is a helper for tests to create exact decimals.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// CNY is a helper for tests to create reporting currency money.
func CNY(s string) Money { return M(D(s), string(Local)) }

// HKD is a helper for tests to create foreign currency money.
func HKD(s string) Money { return M(D(s), string(Foreign)) }

// clock is a manual clock.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeQuotes is a QuoteProvider serving quotes from memory.
type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]Quote // by padded symbol
	err    error
	delay  time.Duration
	calls  int
}

func newFakeQuotes() *fakeQuotes { return &fakeQuotes{quotes: make(map[string]Quote)} }

func (f *fakeQuotes) set(symbol, name, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = Quote{Name: name, Price: D(price)}
}

func (f *fakeQuotes) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeQuotes) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeQuotes) FetchEquityQuote(ctx context.Context, symbol string, _ Market) (Quote, error) {
	return f.fetch(ctx, symbol)
}

func (f *fakeQuotes) FetchETFQuote(ctx context.Context, symbol string) (Quote, error) {
	return f.fetch(ctx, symbol)
}

func (f *fakeQuotes) fetch(ctx context.Context, symbol string) (Quote, error) {
	f.mu.Lock()
	f.calls++
	q, ok := f.quotes[symbol]
	err, delay := f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Quote{}, ctx.Err()
		}
	}
	if err != nil {
		return Quote{}, err
	}
	if !ok {
		return Quote{}, ErrSymbolNotFound
	}
	return q, nil
}

// fakeRate is a RateProvider returning a fixed rate.
type fakeRate struct {
	mu    sync.Mutex
	rate  decimal.Decimal
	err   error
	calls int
}

func (f *fakeRate) set(rate string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rate != "" {
		f.rate = D(rate)
	}
	f.err = err
}

func (f *fakeRate) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRate) FetchRate(_ context.Context, _, _ Currency) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.rate, f.err
}

// memStore is an in memory ByteStore.
type memStore struct {
	mu       sync.Mutex
	data     []byte
	exists   bool
	writeErr error
	writes   int
}

var errDiskFull = errors.New("disk full")

func (m *memStore) ReadAll(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memStore) WriteAll(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	m.writes++
	return nil
}

func (m *memStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
