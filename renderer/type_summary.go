package renderer

import (
	"time"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// Summary is the data of the portfolio summary report.
// Amounts are in the reporting currency, prices in the asset currency.
type Summary struct {
	// LastUpdate is when prices were last changed by a refresh.
	LastUpdate time.Time
	// Rate is the exchange rate used for foreign assets.
	Rate     decimal.Decimal
	RatePair string
	// Positions lists every asset in ledger order.
	Positions []SummaryPosition

	ReportingCurrency string
	TotalMarketValue  holdings.Money
	TotalCost         holdings.Money
	TotalProfit       holdings.Money
	TotalReturn       holdings.Percent
}

// SummaryPosition is a single row of the summary.
type SummaryPosition struct {
	Index       int // position in the ledger, as used by remove
	Type        string
	Name        string
	Symbol      string
	Market      string
	Shares      holdings.Quantity
	CostPrice   string
	Price       string
	Return      holdings.Percent
	MarketValue holdings.Money
	Profit      holdings.Money
}

// NewSummary creates a new Summary from a valuation snapshot.
func NewSummary(s *holdings.Snapshot, lastUpdate time.Time) *Summary {
	sum := &Summary{
		LastUpdate:        lastUpdate,
		Rate:              s.Rate,
		RatePair:          string(holdings.Foreign) + "/" + string(holdings.Local),
		Positions:         make([]SummaryPosition, 0, len(s.Rows)),
		ReportingCurrency: string(holdings.Local),
		TotalMarketValue:  s.TotalMarketValue,
		TotalCost:         s.TotalCost,
		TotalProfit:       s.TotalProfit,
		TotalReturn:       s.TotalReturn,
	}
	for i, r := range s.Rows {
		a := r.Asset
		places := pricePlaces(a.Type)
		sum.Positions = append(sum.Positions, SummaryPosition{
			Index:       i,
			Type:        string(a.Type),
			Name:        a.Name,
			Symbol:      a.Symbol,
			Market:      string(a.Market),
			Shares:      a.Shares,
			CostPrice:   a.Cost().StringFixed(places),
			Price:       holdings.M(r.Price, string(a.Currency)).StringFixed(places),
			Return:      r.Return,
			MarketValue: r.ReportingMarketValue,
			Profit:      r.ReportingProfit,
		})
	}
	return sum
}

// pricePlaces is the number of decimals displayed for prices: funds trade in
// thousandths.
func pricePlaces(t holdings.AssetType) int32 {
	if t == holdings.FundETF {
		return 3
	}
	return 2
}
