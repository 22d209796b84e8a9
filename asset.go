package holdings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetType is a typed string for the kind of security held.
//
// Values are the labels persisted in the ledger file.
type AssetType string

// Asset types.
const (
	Equity  AssetType = "股票"
	FundETF AssetType = "ETF基金"
)

// ParseAssetType parses either the persisted label or an english alias.
func ParseAssetType(s string) (AssetType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Equity), "equity", "stock":
		return Equity, nil
	case strings.ToLower(string(FundETF)), "etf", "fund":
		return FundETF, nil
	default:
		return "", fmt.Errorf("unknown asset type: %q", s)
	}
}

// Short returns the english alias of the asset type.
func (t AssetType) Short() string {
	switch t {
	case FundETF:
		return "etf"
	default:
		return "equity"
	}
}

// Market is a typed string for the exchange an asset is listed on.
type Market string

// Markets.
const (
	Domestic Market = "A股"
	HongKong Market = "港股"
)

// ParseMarket parses either the persisted label or an english alias.
func ParseMarket(s string) (Market, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Domestic), "domestic", "a", "cn":
		return Domestic, nil
	case string(HongKong), "hk", "hongkong":
		return HongKong, nil
	default:
		return "", fmt.Errorf("unknown market: %q", s)
	}
}

// Short returns the english alias of the market.
func (m Market) Short() string {
	switch m {
	case HongKong:
		return "hk"
	default:
		return "domestic"
	}
}

// Currency returns the currency assets of this market are quoted in.
func (m Market) Currency() Currency {
	if m == HongKong {
		return Foreign
	}
	return Local
}

// symbolWidth is the zero padded width of provider symbols on this market.
func (m Market) symbolWidth() int {
	if m == HongKong {
		return 5
	}
	return 6
}

// Currency is the ISO code of one of the two supported currencies.
type Currency string

// Currencies. Local is also the reporting currency.
const (
	Local   Currency = "CNY"
	Foreign Currency = "HKD"
)

// ParseCurrency parses an ISO code.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Local):
		return Local, nil
	case string(Foreign):
		return Foreign, nil
	default:
		return "", fmt.Errorf("unsupported currency: %q", s)
	}
}

// PadSymbol trims the symbol and left pads it with zeros to the width used by
// the market's data provider.
func PadSymbol(symbol string, market Market) string {
	symbol = strings.TrimSpace(symbol)
	width := market.symbolWidth()
	if len(symbol) >= width {
		return symbol
	}
	return strings.Repeat("0", width-len(symbol)) + symbol
}

// Asset is a single holding in the ledger.
type Asset struct {
	Symbol       string
	Type         AssetType
	Market       Market
	Currency     Currency // always Market.Currency()
	Shares       Quantity
	CostPrice    decimal.Decimal // per share, in Currency
	Name         string
	CurrentPrice decimal.Decimal // per share, in Currency; zero when unknown

	// extra holds fields found in the ledger that this version does not know
	// about, in their original order, so that saving does not drop them.
	extra []rawField
}

type rawField struct {
	key   string
	value json.RawMessage
}

// Key returns the market data cache key for this asset.
func (a Asset) Key() QuoteKey {
	return QuoteKey{Symbol: PadSymbol(a.Symbol, a.Market), Market: a.Market, Type: a.Type}
}

// Cost returns the cost basis price as money.
func (a Asset) Cost() Money { return M(a.CostPrice, string(a.Currency)) }

// Price returns the last known price as money.
func (a Asset) Price() Money { return M(a.CurrentPrice, string(a.Currency)) }

// Equal reports whether both assets hold the same values, unknown fields included.
func (a Asset) Equal(b Asset) bool {
	if a.Symbol != b.Symbol || a.Type != b.Type || a.Market != b.Market || a.Currency != b.Currency ||
		a.Name != b.Name || !a.Shares.Equal(b.Shares) ||
		!a.CostPrice.Equal(b.CostPrice) || !a.CurrentPrice.Equal(b.CurrentPrice) {
		return false
	}
	if len(a.extra) != len(b.extra) {
		return false
	}
	for i := range a.extra {
		if a.extra[i].key != b.extra[i].key || string(a.extra[i].value) != string(b.extra[i].value) {
			return false
		}
	}
	return true
}

func (a Asset) String() string {
	if a.Name == "" {
		return a.Symbol
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Symbol)
}

// roundPrice applies the ingestion rounding policy: fund prices keep 3
// decimals, equity prices are kept as is.
func roundPrice(t AssetType, p decimal.Decimal) decimal.Decimal {
	if t == FundETF {
		return p.Round(3)
	}
	return p
}
