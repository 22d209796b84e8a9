package holdings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Ledger record keys, in the order they are written.
const (
	keySymbol       = "symbol"
	keyType         = "type"
	keyMarket       = "market"
	keyShares       = "shares"
	keyCostPrice    = "cost_price"
	keyName         = "name"
	keyCurrentPrice = "current_price"
	keyCurrency     = "currency"
)

// DecodeLedger decodes a ledger document: a JSON array of asset records.
//
// Every record is migrated to the current shape, see migrate. Fields unknown to
// this version are kept and written back by EncodeLedger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}
	if records == nil {
		return nil, &ParseError{Index: -1, Err: fmt.Errorf("ledger is not an array")}
	}

	ledger := NewLedger()
	for i, raw := range records {
		a, present, err := decodeAsset(raw)
		if err != nil {
			return nil, &ParseError{Index: i, Err: err}
		}
		for _, fix := range migrate(&a, present) {
			log.Printf("ledger record #%d %s: %s", i, a.Symbol, fix)
		}
		ledger.Append(a)
	}
	return ledger, nil
}

// decodeAsset reads a single record, keeping unknown fields in order. present
// lists the known keys that were found with a non null value.
func decodeAsset(raw json.RawMessage) (a Asset, present map[string]bool, err error) {
	present = make(map[string]bool)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return a, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return a, nil, fmt.Errorf("record is not an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return a, nil, err
		}
		key := tok.(string) // object keys are always strings
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return a, nil, fmt.Errorf("field %q: %w", key, err)
		}

		if err := a.decodeField(key, value); err != nil {
			return a, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if isKnownKey(key) && string(value) != "null" {
			present[key] = true
		}
	}
	return a, present, nil
}

func isKnownKey(key string) bool {
	switch key {
	case keySymbol, keyType, keyMarket, keyShares, keyCostPrice, keyName, keyCurrentPrice, keyCurrency:
		return true
	}
	return false
}

// decodeField sets the field named key from its JSON value. Unknown keys are
// stored verbatim. null leaves the field unset.
func (a *Asset) decodeField(key string, value json.RawMessage) error {
	if !isKnownKey(key) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return err
		}
		a.extra = append(a.extra, rawField{key: key, value: buf.Bytes()})
		return nil
	}
	if string(value) == "null" {
		return nil
	}

	var err error
	switch key {
	case keySymbol:
		a.Symbol, err = decodeText(value)
	case keyName:
		a.Name, err = decodeText(value)
	case keyType:
		var s string
		if s, err = decodeText(value); err == nil {
			a.Type, err = ParseAssetType(s)
		}
	case keyMarket:
		var s string
		if s, err = decodeText(value); err == nil {
			a.Market, err = ParseMarket(s)
		}
	case keyCurrency:
		var s string
		if s, err = decodeText(value); err == nil {
			a.Currency, err = ParseCurrency(s)
		}
	case keyShares:
		err = json.Unmarshal(value, &a.Shares)
	case keyCostPrice:
		err = json.Unmarshal(value, &a.CostPrice)
	case keyCurrentPrice:
		err = json.Unmarshal(value, &a.CurrentPrice)
	}
	return err
}

// decodeText accepts a string or a number. Symbols typed as numbers in a
// hand edited ledger are common.
func decodeText(value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		return "", fmt.Errorf("expected a string, got %s", value)
	}
	return n.String(), nil
}

// migrate upgrades a record read from an older ledger version in place, and
// returns a description of each correction applied.
//
// migrate is idempotent: a migrated asset is never changed again.
func migrate(a *Asset, present map[string]bool) (fixes []string) {
	if !present[keyType] {
		a.Type = Equity
		fixes = append(fixes, fmt.Sprintf("missing type, defaults to %s", Equity))
	}
	if !present[keyMarket] {
		a.Market = Domestic
		fixes = append(fixes, fmt.Sprintf("missing market, defaults to %s", Domestic))
	}
	if a.Type == FundETF && a.Market != Domestic {
		fixes = append(fixes, fmt.Sprintf("%s listed on %s, moved to %s", FundETF, a.Market, Domestic))
		a.Market = Domestic
	}
	if want := a.Market.Currency(); a.Currency != want {
		if present[keyCurrency] {
			fixes = append(fixes, fmt.Sprintf("currency %s does not match market %s, set to %s", a.Currency, a.Market, want))
		} else {
			fixes = append(fixes, fmt.Sprintf("missing currency, set to %s", want))
		}
		a.Currency = want
	}
	return fixes
}

// EncodeLedger writes the ledger as an indented JSON array.
func EncodeLedger(w io.Writer, l *Ledger) error {
	records := make([]json.RawMessage, 0, l.Len())
	for i, a := range l.All() {
		rec, err := encodeAsset(a)
		if err != nil {
			return fmt.Errorf("cannot encode record #%d %s: %w", i, a.Symbol, err)
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func encodeAsset(a Asset) (json.RawMessage, error) {
	var w jsonObjectWriter
	w.Append(keySymbol, a.Symbol).
		Append(keyType, a.Type).
		Append(keyMarket, a.Market).
		Append(keyShares, a.Shares).
		Append(keyCostPrice, a.CostPrice).
		Append(keyName, a.Name).
		Append(keyCurrentPrice, a.CurrentPrice).
		Append(keyCurrency, a.Currency)
	for _, f := range a.extra {
		w.AppendRaw(f.key, f.value)
	}
	return w.MarshalJSON()
}
