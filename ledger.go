package holdings

import (
	"iter"
	"slices"
)

// Ledger is the ordered list of assets held.
//
// A Ledger published by a Registry is never modified in place, mutations are
// applied to a Clone.
type Ledger struct {
	assets []Asset
}

// NewLedger creates a ledger holding assets.
func NewLedger(assets ...Asset) *Ledger {
	return &Ledger{assets: slices.Clone(assets)}
}

// Len returns the number of assets.
func (l *Ledger) Len() int { return len(l.assets) }

// At returns the asset at position i.
func (l *Ledger) At(i int) Asset { return l.assets[i] }

// All iterates over positions and assets in ledger order.
func (l *Ledger) All() iter.Seq2[int, Asset] {
	return func(yield func(int, Asset) bool) {
		for i, a := range l.assets {
			if !yield(i, a) {
				return
			}
		}
	}
}

// Assets returns a copy of the assets.
func (l *Ledger) Assets() []Asset { return slices.Clone(l.assets) }

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{assets: make([]Asset, len(l.assets))}
	for i, a := range l.assets {
		a.extra = slices.Clone(a.extra)
		c.assets[i] = a
	}
	return c
}

// Append adds assets at the end of the ledger.
func (l *Ledger) Append(assets ...Asset) {
	l.assets = append(l.assets, assets...)
}

// Remove deletes the asset at position i and returns it.
func (l *Ledger) Remove(i int) (Asset, bool) {
	if i < 0 || i >= len(l.assets) {
		return Asset{}, false
	}
	a := l.assets[i]
	l.assets = slices.Delete(l.assets, i, i+1)
	return a, true
}

// set replaces the asset at position i.
func (l *Ledger) set(i int, a Asset) { l.assets[i] = a }

// Equal reports whether both ledgers hold equal assets in the same order.
func (l *Ledger) Equal(m *Ledger) bool {
	return slices.EqualFunc(l.assets, m.assets, Asset.Equal)
}
