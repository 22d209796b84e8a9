package holdings

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDecodeLedger_Migration(t *testing.T) {
	testCases := []struct {
		name         string
		record       string
		wantType     AssetType
		wantMarket   Market
		wantCurrency Currency
	}{
		{
			name:         "legacy hong kong record without type nor currency",
			record:       `{"symbol": "00700", "market": "港股", "shares": 100, "cost_price": 300.5, "name": "腾讯控股", "current_price": 320}`,
			wantType:     Equity,
			wantMarket:   HongKong,
			wantCurrency: Foreign,
		},
		{
			name:         "legacy domestic record without currency",
			record:       `{"symbol": "000001", "type": "股票", "market": "A股", "shares": 100, "cost_price": 10, "name": "平安银行", "current_price": 12}`,
			wantType:     Equity,
			wantMarket:   Domestic,
			wantCurrency: Local,
		},
		{
			name:         "currency disagreeing with market",
			record:       `{"symbol": "000001", "type": "股票", "market": "A股", "currency": "HKD", "shares": 1, "cost_price": 1}`,
			wantType:     Equity,
			wantMarket:   Domestic,
			wantCurrency: Local,
		},
		{
			name:         "fund listed in hong kong",
			record:       `{"symbol": "159691", "type": "ETF基金", "market": "港股", "currency": "HKD", "shares": 1, "cost_price": 1}`,
			wantType:     FundETF,
			wantMarket:   Domestic,
			wantCurrency: Local,
		},
		{
			name:         "english aliases",
			record:       `{"symbol": "700", "type": "equity", "market": "hk", "currency": "HKD", "shares": 1, "cost_price": 1}`,
			wantType:     Equity,
			wantMarket:   HongKong,
			wantCurrency: Foreign,
		},
		{
			name:         "null fields are absent",
			record:       `{"symbol": "700", "type": null, "market": "港股", "currency": null, "shares": 1, "cost_price": 1}`,
			wantType:     Equity,
			wantMarket:   HongKong,
			wantCurrency: Foreign,
		},
		{
			name:         "missing market",
			record:       `{"symbol": "600519", "shares": 1, "cost_price": 1}`,
			wantType:     Equity,
			wantMarket:   Domestic,
			wantCurrency: Local,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := DecodeLedger(strings.NewReader("[" + tc.record + "]"))
			if err != nil {
				t.Fatalf("DecodeLedger() unexpected error: %v", err)
			}
			if l.Len() != 1 {
				t.Fatalf("DecodeLedger() got %d assets, want 1", l.Len())
			}
			a := l.At(0)
			if a.Type != tc.wantType || a.Market != tc.wantMarket || a.Currency != tc.wantCurrency {
				t.Errorf("DecodeLedger() = (%s, %s, %s), want (%s, %s, %s)",
					a.Type, a.Market, a.Currency, tc.wantType, tc.wantMarket, tc.wantCurrency)
			}
		})
	}
}

func TestDecodeLedger_NumericSymbol(t *testing.T) {
	l, err := DecodeLedger(strings.NewReader(`[{"symbol": 700, "market": "港股", "shares": 1, "cost_price": 1}]`))
	if err != nil {
		t.Fatalf("DecodeLedger() unexpected error: %v", err)
	}
	if got := l.At(0).Symbol; got != "700" {
		t.Errorf("Symbol = %q, want %q", got, "700")
	}
}

func TestDecodeLedger_Corrupt(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantIndex int
	}{
		{name: "empty file", input: "", wantIndex: -1},
		{name: "truncated", input: `[{"symbol": "00700", "mar`, wantIndex: -1},
		{name: "not an array", input: `{"symbol": "00700"}`, wantIndex: -1},
		{name: "null", input: "null", wantIndex: -1},
		{name: "null with spaces", input: " null\n", wantIndex: -1},
		{name: "record not an object", input: `[{"symbol": "1", "shares": 1}, 3]`, wantIndex: 1},
		{name: "unknown market", input: `[{"symbol": "1", "market": "NYSE"}]`, wantIndex: 0},
		{name: "unknown type", input: `[{"symbol": "1", "type": "bond"}]`, wantIndex: 0},
		{name: "shares not a number", input: `[{"symbol": "1", "shares": "many"}]`, wantIndex: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tc.input))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("DecodeLedger() error = %v, want a *ParseError", err)
			}
			if perr.Index != tc.wantIndex {
				t.Errorf("ParseError.Index = %d, want %d", perr.Index, tc.wantIndex)
			}
		})
	}
}

func TestEncodeLedger(t *testing.T) {
	input := `[{"symbol": "00700", "market": "港股", "shares": 100, "note": {"broker":  "futu"}, "cost_price": 300.5, "name": "腾讯控股", "current_price": 320.2, "tags": ["a", "b"]}]`
	l, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLedger() unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}
	want := `[
  {
    "symbol": "00700",
    "type": "股票",
    "market": "港股",
    "shares": 100,
    "cost_price": 300.5,
    "name": "腾讯控股",
    "current_price": 320.2,
    "currency": "HKD",
    "note": {
      "broker": "futu"
    },
    "tags": [
      "a",
      "b"
    ]
  }
]
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeLedger() =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodeLedger_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, NewLedger()); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}
	if got, want := buf.String(), "[]\n"; got != want {
		t.Errorf("EncodeLedger() = %q, want %q", got, want)
	}
}

func TestLedger_RoundTrip(t *testing.T) {
	want := NewLedger(
		Asset{Symbol: "000001", Type: Equity, Market: Domestic, Currency: Local, Shares: Q(100), CostPrice: D("10.123456"), Name: "平安银行", CurrentPrice: D("12.01")},
		Asset{Symbol: "00700", Type: Equity, Market: HongKong, Currency: Foreign, Shares: Q(D("12.5")), CostPrice: D("300"), Name: "腾讯控股", CurrentPrice: D("0")},
		Asset{Symbol: "159691", Type: FundETF, Market: Domestic, Currency: Local, Shares: Q(5000), CostPrice: D("1.234"), Name: "港股红利ETF", CurrentPrice: D("1.301")},
	)

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, want); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}
	got, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip = %v, want %v", got.Assets(), want.Assets())
	}
}

// TestMigration_Idempotent checks Load(Save(Load(x))) == Load(x) on generated legacy records.
func TestMigration_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("migration is idempotent", prop.ForAll(
		func(symbol string, hasType, isETF, hk, hasCurrency, wrongCurrency bool, shares int, cost float64) bool {
			record := map[string]any{
				"symbol":     symbol,
				"shares":     shares,
				"cost_price": cost,
				"unknown":    map[string]any{"kept": true},
			}
			market := Domestic
			if hk {
				market = HongKong
			}
			record["market"] = market
			if hasType {
				record["type"] = Equity
				if isETF {
					record["type"] = FundETF
				}
			}
			if hasCurrency {
				cur := market.Currency()
				if wrongCurrency {
					cur = map[Currency]Currency{Local: Foreign, Foreign: Local}[cur]
				}
				record["currency"] = cur
			}
			data, err := json.Marshal([]any{record})
			if err != nil {
				return false
			}

			first, err := DecodeLedger(bytes.NewReader(data))
			if err != nil {
				return false
			}
			var buf bytes.Buffer
			if err := EncodeLedger(&buf, first); err != nil {
				return false
			}
			second, err := DecodeLedger(&buf)
			if err != nil {
				return false
			}
			a := second.At(0)
			return second.Equal(first) && a.Currency == a.Market.Currency() && len(a.extra) == 1
		},
		gen.NumString(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.IntRange(1, 1000000),
		gen.Float64Range(0.001, 10000),
	))

	properties.TestingRun(t)
}
