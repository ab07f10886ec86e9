package currency

import (
	"sort"

	"github.com/juju/errors"
)

var ErrNoExactBreakdown = errors.New("No note combination matches this amount")

// Breakdown computes which notes of store sum to exactly amount.
// Search is greedy with backtracking: nominals descending, largest
// count first, decrement on dead end. First solution found wins,
// so the result is deterministic for a fixed store snapshot.
// store is not modified. Result holds only positive counts.
func Breakdown(store *NominalGroup, amount Amount) (*NominalGroup, error) {
	nominals := make([]Nominal, 0, len(store.values))
	for n := range store.values {
		nominals = append(nominals, n)
	}
	sort.Slice(nominals, func(i, j int) bool { return nominals[i] > nominals[j] })

	picked := make([]uint, len(nominals))
	if !breakdownStep(store, nominals, picked, amount, 0) {
		return nil, errors.Annotatef(ErrNoExactBreakdown, "amount=%s store=%s", amount.Format100I(), store.String())
	}

	result := &NominalGroup{values: make(map[Nominal]uint)}
	for i, n := range nominals {
		if picked[i] > 0 {
			result.values[n] = picked[i]
		}
	}
	return result, nil
}

// Recursion depth is bounded by the nominal set size.
func breakdownStep(store *NominalGroup, nominals []Nominal, picked []uint, remaining Amount, index int) bool {
	if remaining == 0 {
		return true
	}
	if index >= len(nominals) {
		return false
	}

	n := nominals[index]
	max := uint(remaining / Amount(n))
	if stored := store.values[n]; stored < max {
		max = stored
	}
	for count := max; ; count-- {
		picked[index] = count
		if breakdownStep(store, nominals, picked, remaining-Amount(count)*Amount(n), index+1) {
			return true
		}
		if count == 0 {
			break
		}
	}
	picked[index] = 0
	return false
}
