package holdings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// contains http utils shared by market data providers

// JSONClient performs rate limited HTTP GET requests returning JSON documents.
type JSONClient struct {
	HTTP    *http.Client  // nil is http.DefaultClient
	Limiter *rate.Limiter // nil is unlimited
}

// NewJSONClient returns a client allowing rps requests per second, with bursts of burst requests.
func NewJSONClient(rps float64, burst int) *JSONClient {
	return &JSONClient{
		HTTP:    new(http.Client),
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Get performs an HTTP GET request on addr and decodes the JSON response.
// Numbers are decoded as json.Number to keep their exact value.
func (c *JSONClient) Get(ctx context.Context, addr string) (any, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var jobj any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("invalid JSON from %v%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return jobj, nil
}

// errNoValue is returned by JSONValue when the path does not match anything.
var errNoValue = errors.New("no value")

// JSONValue evaluates a jsonpath expression on a decoded document.
func JSONValue(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	// jsonpath returns a list for filters and slices: keep the first value
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("%q: %w", path, errNoValue)
		}
		jval = jlist[0]
	}
	if jval == nil {
		return nil, fmt.Errorf("%q: %w", path, errNoValue)
	}
	return jval, nil
}

// JSONDecimal evaluates a jsonpath expression and reads the value as a decimal.
// Numbers encoded as strings are accepted.
func JSONDecimal(path string, jobj any) (decimal.Decimal, error) {
	jval, err := JSONValue(path, jobj)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q: not a number %q", path, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%q: not a number %v", path, jval)
	}
}

// JSONString evaluates a jsonpath expression and reads the value as a string.
func JSONString(path string, jobj any) (string, error) {
	jval, err := JSONValue(path, jobj)
	if err != nil {
		return "", err
	}
	switch v := jval.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%q: not a string %v", path, jval)
	}
}
