package holdings

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/etnz/holdings/cache"
	"github.com/shopspring/decimal"
)

// Quote is a price observation returned by a market data provider.
//
// Available is false for the placeholder returned when the provider failed:
// its Price is then zero and must not be taken for a real price.
type Quote struct {
	Name      string
	Price     decimal.Decimal
	Currency  Currency
	FetchedAt time.Time
	Available bool
}

// QuoteKey identifies a quote in the cache. Symbol is padded, see PadSymbol.
type QuoteKey struct {
	Symbol string
	Market Market
	Type   AssetType
}

func (k QuoteKey) String() string { return k.Type.Short() + ":" + k.Market.Short() + ":" + k.Symbol }

// QuoteProvider fetches current quotes. Symbols are already padded.
type QuoteProvider interface {
	FetchEquityQuote(ctx context.Context, symbol string, market Market) (Quote, error)
	FetchETFQuote(ctx context.Context, symbol string) (Quote, error)
}

// RateProvider fetches the conversion rate from base to quote: 1 base = rate quote.
type RateProvider interface {
	FetchRate(ctx context.Context, base, quote Currency) (decimal.Decimal, error)
}

// MarketDataConfig configures the market data cache.
type MarketDataConfig struct {
	QuoteWindow  time.Duration   // freshness of quotes
	RateWindow   time.Duration   // freshness of the exchange rate
	Timeout      time.Duration   // bound for every provider call, 5s if not positive
	FallbackRate decimal.Decimal // used when the rate was never fetched successfully
	Now          func() time.Time
}

// DefaultMarketDataConfig returns the default configuration.
func DefaultMarketDataConfig() MarketDataConfig {
	return MarketDataConfig{
		QuoteWindow:  5 * time.Minute,
		RateWindow:   time.Hour,
		Timeout:      5 * time.Second,
		FallbackRate: decimal.RequireFromString("0.92"),
	}
}

// MarketData serves quotes and the exchange rate through caches, so that slow
// and rate limited providers are called at most once per freshness window.
//
// Its methods never fail: a provider failure is logged and replaced by a
// fallback value.
type MarketData struct {
	quotes       *cache.Cache[QuoteKey, Quote]
	rates        *cache.Cache[string, decimal.Decimal]
	quoteFetcher QuoteProvider
	rateFetcher  RateProvider
	timeout      time.Duration
	fallbackRate decimal.Decimal
	now          func() time.Time
}

// NewMarketData creates a market data cache over the given providers.
func NewMarketData(quotes QuoteProvider, rates RateProvider, cfg MarketDataConfig) *MarketData {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultMarketDataConfig().Timeout
	}
	return &MarketData{
		quotes:       cache.New[QuoteKey, Quote](cfg.QuoteWindow, cfg.Now),
		rates:        cache.New[string, decimal.Decimal](cfg.RateWindow, cfg.Now),
		quoteFetcher: quotes,
		rateFetcher:  rates,
		timeout:      cfg.Timeout,
		fallbackRate: cfg.FallbackRate,
		now:          cfg.Now,
	}
}

// Quote returns the quote for key, from the cache when fresh.
//
// When the provider fails it returns a placeholder quote named after the
// symbol, with a zero price in the market currency and Available false. The
// placeholder is not cached.
func (m *MarketData) Quote(ctx context.Context, key QuoteKey) Quote {
	key.Symbol = PadSymbol(key.Symbol, key.Market)
	q, err := m.quotes.Get(ctx, key, m.quoteLoader(key))
	if err != nil {
		log.Printf("quote %v unavailable, using placeholder: %v", key, err)
		return m.placeholder(key)
	}
	return q
}

// FetchQuote fetches the quote for key bypassing the freshness window, and
// stores it in the cache. It fails like Quote.
func (m *MarketData) FetchQuote(ctx context.Context, key QuoteKey) Quote {
	key.Symbol = PadSymbol(key.Symbol, key.Market)
	q, err := m.quotes.Refresh(ctx, key, m.quoteLoader(key))
	if err != nil {
		log.Printf("quote %v unavailable, using placeholder: %v", key, err)
		return m.placeholder(key)
	}
	return q
}

// CachedQuote returns the quote for key only if it is in the cache and fresh.
// It never calls the provider.
func (m *MarketData) CachedQuote(key QuoteKey) (Quote, bool) {
	key.Symbol = PadSymbol(key.Symbol, key.Market)
	return m.quotes.Fresh(key)
}

func (m *MarketData) placeholder(key QuoteKey) Quote {
	return Quote{
		Name:      key.Symbol,
		Price:     decimal.Zero,
		Currency:  key.Market.Currency(),
		FetchedAt: m.now(),
	}
}

func (m *MarketData) quoteLoader(key QuoteKey) cache.Loader[Quote] {
	return func(ctx context.Context) (q Quote, err error) {
		ctx, cancel := m.withTimeout(ctx)
		defer cancel()

		op := "equity quote"
		if key.Type == FundETF {
			op = "etf quote"
			q, err = m.quoteFetcher.FetchETFQuote(ctx, key.Symbol)
		} else {
			q, err = m.quoteFetcher.FetchEquityQuote(ctx, key.Symbol, key.Market)
		}
		if err != nil {
			return q, &ProviderError{Op: op, Symbol: key.Symbol, Err: err}
		}
		q.Price = roundPrice(key.Type, q.Price)
		if q.Currency == "" {
			q.Currency = key.Market.Currency()
		}
		if q.FetchedAt.IsZero() {
			q.FetchedAt = m.now()
		}
		q.Available = true
		return q, nil
	}
}

// rateKey is the only currency pair.
const rateKey = string(Foreign) + "/" + string(Local)

// Rate returns the number of Local units for one Foreign unit.
//
// When the provider fails it returns the last rate successfully fetched
// whatever its age, or the configured fallback rate if there is none.
func (m *MarketData) Rate(ctx context.Context) decimal.Decimal {
	rate, err := m.rates.Get(ctx, rateKey, func(ctx context.Context) (decimal.Decimal, error) {
		ctx, cancel := m.withTimeout(ctx)
		defer cancel()
		r, err := m.rateFetcher.FetchRate(ctx, Foreign, Local)
		if err == nil && !r.IsPositive() {
			err = fmt.Errorf("invalid rate %v", r)
		}
		if err != nil {
			return r, &ProviderError{Op: "rate", Symbol: rateKey, Err: err}
		}
		return r, nil
	})
	if err == nil {
		return rate
	}
	if last, at, ok := m.rates.Peek(rateKey); ok {
		log.Printf("%v, using last known rate %v from %v", err, last, at.Format(time.DateTime))
		return last
	}
	log.Printf("%v, using fallback rate %v", err, m.fallbackRate)
	return m.fallbackRate
}

func (m *MarketData) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}
