package holdings

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent is a percentage, 10 means 10%.
type Percent float64

// Ratio returns part over whole as a percentage, 0 when whole is zero.
func Ratio(part, whole decimal.Decimal) Percent {
	if whole.IsZero() {
		return 0
	}
	return Percent(part.Div(whole).Mul(hundred).InexactFloat64())
}

// Equal compares percentages up to a ten thousandth of a percent.
func (p Percent) Equal(q Percent) bool { return math.Abs(float64(p-q)) < 1e-4 }

// String formats with 2 decimals, e.g. "5.62%".
func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString formats with a sign, except for zero: "+5.62%", "-1.00%", "0.00%".
func (p Percent) SignedString() string {
	s := fmt.Sprintf("%+.2f%%", float64(p))
	if s == "+0.00%" || s == "-0.00%" {
		return "0.00%"
	}
	return s
}
