package eastmoney

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// fakeServer serves eastmoney responses by secid.
func fakeServer(t *testing.T, responses map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fields"); got != "f43,f57,f58" {
			t.Errorf("fields = %q, want f43,f57,f58", got)
		}
		body, ok := responses[r.URL.Query().Get("secid")]
		if !ok {
			body = `{"rc":0,"data":null}`
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	c := New(100)
	c.BaseURL = srv.URL
	return c
}

func TestSecID(t *testing.T) {
	testCases := []struct {
		symbol string
		market holdings.Market
		want   string
	}{
		{"600519", holdings.Domestic, "1.600519"},
		{"510300", holdings.Domestic, "1.510300"},
		{"900901", holdings.Domestic, "1.900901"},
		{"000001", holdings.Domestic, "0.000001"},
		{"300750", holdings.Domestic, "0.300750"},
		{"159691", holdings.Domestic, "0.159691"},
		{"00700", holdings.HongKong, "116.00700"},
	}
	for _, tc := range testCases {
		if got := secID(tc.symbol, tc.market); got != tc.want {
			t.Errorf("secID(%q, %v) = %q, want %q", tc.symbol, tc.market, got, tc.want)
		}
	}
}

func TestClient_Fetch(t *testing.T) {
	c := fakeServer(t, map[string]string{
		"116.00700": `{"rc":0,"data":{"f43":320.2,"f57":"00700","f58":"腾讯控股"}}`,
		"0.159691":  `{"rc":0,"data":{"f43":1.234,"f57":"159691","f58":"港股红利ETF"}}`,
		"1.600519":  `{"rc":0,"data":{"f43":"-","f57":"600519","f58":"贵州茅台"}}`,
		"0.000001":  `{"rc":0,"data":{"f43":0,"f57":"000001","f58":"平安银行"}}`,
		"1.601398":  `{"rc":0,"data":{"f57":"601398"}}`,
	})
	ctx := context.Background()

	t.Run("hong kong equity", func(t *testing.T) {
		q, err := c.FetchEquityQuote(ctx, "00700", holdings.HongKong)
		if err != nil {
			t.Fatalf("FetchEquityQuote() failed: %v", err)
		}
		if q.Name != "腾讯控股" || !q.Price.Equal(decimal.RequireFromString("320.2")) || q.Currency != holdings.Foreign {
			t.Errorf("FetchEquityQuote() = %+v, want 腾讯控股 at 320.2 HKD", q)
		}
	})

	t.Run("fund", func(t *testing.T) {
		q, err := c.FetchETFQuote(ctx, "159691")
		if err != nil {
			t.Fatalf("FetchETFQuote() failed: %v", err)
		}
		if q.Name != "港股红利ETF" || !q.Price.Equal(decimal.RequireFromString("1.234")) || q.Currency != holdings.Local {
			t.Errorf("FetchETFQuote() = %+v, want 港股红利ETF at 1.234 CNY", q)
		}
	})

	errorCases := []struct {
		name   string
		symbol string
		want   error
	}{
		{name: "unknown symbol", symbol: "000002", want: holdings.ErrSymbolNotFound},
		{name: "no trade", symbol: "600519", want: holdings.ErrNoPrice},
		{name: "zero price", symbol: "000001", want: holdings.ErrNoPrice},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.FetchEquityQuote(ctx, tc.symbol, holdings.Domestic)
			if !errors.Is(err, tc.want) {
				t.Errorf("FetchEquityQuote(%q) error = %v, want %v", tc.symbol, err, tc.want)
			}
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		if _, err := c.FetchEquityQuote(ctx, "601398", holdings.Domestic); err == nil {
			t.Error("FetchEquityQuote() succeeded without a name and a price")
		}
	})
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := New(100)
	c.BaseURL = srv.URL

	if _, err := c.FetchETFQuote(context.Background(), "159691"); err == nil {
		t.Error("FetchETFQuote() succeeded on a 503")
	}
}
