package holdings

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// refreshConcurrency bounds the number of quotes fetched at the same time.
const refreshConcurrency = 4

// Registry owns the ledger: it validates and applies mutations, persists them
// through the Store, and refreshes prices through MarketData.
//
// Mutations are serialized. Each one is applied to a copy of the ledger, saved,
// and only then published, so readers always observe a complete ledger and a
// failed save leaves the published ledger untouched.
type Registry struct {
	store  *Store
	market *MarketData
	now    func() time.Time

	mu         sync.Mutex // serializes mutations
	ledger     atomic.Pointer[Ledger]
	lastUpdate atomic.Pointer[time.Time]
}

// OpenRegistry loads the ledger from store. A corrupt ledger is an error.
func OpenRegistry(ctx context.Context, store *Store, market *MarketData) (*Registry, error) {
	l, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	r := &Registry{store: store, market: market, now: time.Now}
	r.ledger.Store(l)
	t := r.now()
	r.lastUpdate.Store(&t)
	return r, nil
}

// Ledger returns a copy of the current ledger.
func (r *Registry) Ledger() *Ledger { return r.ledger.Load().Clone() }

// LastUpdate returns when the ledger was opened or last changed by a refresh.
func (r *Registry) LastUpdate() time.Time { return *r.lastUpdate.Load() }

// AddRequest describes a new holding.
type AddRequest struct {
	Type      AssetType
	Symbol    string
	Market    Market
	Shares    Quantity
	CostPrice decimal.Decimal
}

func (req AddRequest) validate() error {
	if strings.TrimSpace(req.Symbol) == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if req.Type != Equity && req.Type != FundETF {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown asset type %q", req.Type)}
	}
	if req.Type == Equity && req.Market != Domestic && req.Market != HongKong {
		return &ValidationError{Field: "market", Reason: fmt.Sprintf("unknown market %q", req.Market)}
	}
	if !req.Shares.IsPositive() {
		return &ValidationError{Field: "shares", Reason: fmt.Sprintf("must be positive, got %v", req.Shares)}
	}
	if !req.CostPrice.IsPositive() {
		return &ValidationError{Field: "cost price", Reason: fmt.Sprintf("must be positive, got %v", req.CostPrice)}
	}
	return nil
}

// Add validates req, fetches the asset name and price from the provider
// (bypassing the cache freshness), appends the asset and saves the ledger.
//
// Funds are always listed on the Domestic market and their cost price is
// rounded to 3 decimals before it is validated.
func (r *Registry) Add(ctx context.Context, req AddRequest) (Asset, error) {
	req.CostPrice = roundPrice(req.Type, req.CostPrice)
	if err := req.validate(); err != nil {
		return Asset{}, err
	}
	if req.Type == FundETF {
		req.Market = Domestic
	}

	a := Asset{
		Symbol:    strings.TrimSpace(req.Symbol),
		Type:      req.Type,
		Market:    req.Market,
		Currency:  req.Market.Currency(),
		Shares:    req.Shares,
		CostPrice: req.CostPrice,
	}
	q := r.market.FetchQuote(ctx, a.Key())
	a.Name = q.Name
	a.CurrentPrice = roundPrice(a.Type, q.Price)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.ledger.Load().Clone()
	next.Append(a)
	if err := r.store.Save(ctx, next); err != nil {
		return Asset{}, err
	}
	r.ledger.Store(next)
	log.Printf("added %v: %v shares at %v", a, a.Shares, a.CostPrice)
	return a, nil
}

// Remove deletes the asset at position index and saves the ledger.
func (r *Registry) Remove(ctx context.Context, index int) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.ledger.Load().Clone()
	a, ok := next.Remove(index)
	if !ok {
		return Asset{}, &ValidationError{
			Field:  "index",
			Reason: fmt.Sprintf("%d is not in [0, %d)", index, next.Len()),
			Err:    ErrIndexOutOfRange,
		}
	}
	if err := r.store.Save(ctx, next); err != nil {
		return Asset{}, err
	}
	r.ledger.Store(next)
	log.Printf("removed %v", a)
	return a, nil
}

// RefreshAll queries the quote of every asset through the market data cache and
// updates prices and names that changed. The ledger is saved once, only if
// something changed. It reports whether anything changed.
//
// Unavailable quotes are skipped: the stored price and name are kept.
func (r *Registry) RefreshAll(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.ledger.Load().Clone()
	quotes := make([]Quote, next.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i, a := range next.All() {
		g.Go(func() error {
			quotes[i] = r.market.Quote(gctx, a.Key())
			return nil
		})
	}
	g.Wait() // quotes never fail

	changed := false
	for i, a := range next.All() {
		q := quotes[i]
		if !q.Available {
			log.Printf("refresh %v: no quote, keeping %v", a, a.CurrentPrice)
			continue
		}
		if !priceChanged(a, q) {
			continue
		}
		a.CurrentPrice = roundPrice(a.Type, q.Price)
		a.Name = q.Name
		next.set(i, a)
		changed = true
	}
	if !changed {
		return false, nil
	}

	if err := r.store.Save(ctx, next); err != nil {
		return false, err
	}
	r.ledger.Store(next)
	t := r.now()
	r.lastUpdate.Store(&t)
	return true, nil
}

// Report values the current ledger at the current exchange rate, using fresh
// cached quotes when there are some. It only calls a provider for the rate,
// and only if the cached rate is stale.
func (r *Registry) Report(ctx context.Context) *Snapshot {
	l := r.ledger.Load()
	quotes := make(map[QuoteKey]Quote)
	for _, a := range l.All() {
		if q, ok := r.market.CachedQuote(a.Key()); ok {
			quotes[a.Key()] = q
		}
	}
	return Valuate(l, r.market.Rate(ctx), quotes)
}
