package holdings

import (
	"github.com/shopspring/decimal"
)

// Row is the valuation of a single asset.
//
// Native amounts are in the asset currency, Reporting amounts in Local.
type Row struct {
	Asset Asset
	Price decimal.Decimal // price used for the valuation

	MarketValue Money
	Cost        Money
	Profit      Money

	ReportingMarketValue Money
	ReportingCost        Money
	ReportingProfit      Money

	Return Percent // price return over the cost price
}

// Snapshot is the valuation of a whole ledger in the reporting currency.
type Snapshot struct {
	Rate decimal.Decimal // Local units for one Foreign unit
	Rows []Row

	TotalMarketValue Money
	TotalCost        Money
	TotalProfit      Money
	TotalReturn      Percent
}

// Valuate computes the valuation of every asset in l, and the portfolio totals.
//
// The price used for an asset is the one from its quote in quotes if it is
// available, otherwise the price stored in the ledger. rate converts Foreign
// amounts to Local. Valuate does not modify l.
func Valuate(l *Ledger, rate decimal.Decimal, quotes map[QuoteKey]Quote) *Snapshot {
	s := &Snapshot{
		Rate:             rate,
		Rows:             make([]Row, 0, l.Len()),
		TotalMarketValue: M(0, string(Local)),
		TotalCost:        M(0, string(Local)),
		TotalProfit:      M(0, string(Local)),
	}
	for _, a := range l.All() {
		price := a.CurrentPrice
		if q, ok := quotes[a.Key()]; ok && q.Available {
			price = roundPrice(a.Type, q.Price)
		}
		row := valuateAsset(a, price, rate)
		s.Rows = append(s.Rows, row)

		s.TotalMarketValue = s.TotalMarketValue.Add(row.ReportingMarketValue)
		s.TotalCost = s.TotalCost.Add(row.ReportingCost)
		s.TotalProfit = s.TotalProfit.Add(row.ReportingProfit)
	}
	if s.TotalCost.IsPositive() {
		s.TotalReturn = Ratio(s.TotalProfit.Value(), s.TotalCost.Value())
	}
	return s
}

func valuateAsset(a Asset, price decimal.Decimal, rate decimal.Decimal) Row {
	cur := string(a.Currency)
	r := Row{
		Asset:       a,
		Price:       price,
		MarketValue: M(price, cur).Mul(a.Shares),
		Cost:        a.Cost().Mul(a.Shares),
		Return:      PriceReturn(a.CostPrice, price),
	}
	r.Profit = r.MarketValue.Sub(r.Cost)

	if a.Currency == Foreign {
		r.ReportingMarketValue = r.MarketValue.Convert(rate, string(Local))
		r.ReportingCost = r.Cost.Convert(rate, string(Local))
		r.ReportingProfit = r.Profit.Convert(rate, string(Local))
	} else {
		r.ReportingMarketValue = r.MarketValue
		r.ReportingCost = r.Cost
		r.ReportingProfit = r.Profit
	}
	return r
}

// PriceReturn returns the return of price over cost in percent, 0 when cost is 0.
func PriceReturn(cost, price decimal.Decimal) Percent {
	return Ratio(price.Sub(cost), cost)
}

// priceChanged applies the refresh change detection rule: an asset is updated
// only if its rounded price or its name differs from the stored one.
func priceChanged(a Asset, q Quote) bool {
	return !roundPrice(a.Type, q.Price).Equal(a.CurrentPrice) || q.Name != a.Name
}
