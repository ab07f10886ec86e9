package ledger

import (
	"sort"

	"github.com/juju/errors"
)

// Reporting utilities over account snapshots. Read-only: inputs are
// never modified, results are fresh slices.

// SortByBalanceDesc orders a snapshot by balance, highest first.
// Partition sort around the first entry as pivot; equal balances
// keep their input order next to the pivot, which makes the sort
// stable and applying it twice yields the same order as once.
func SortByBalanceDesc(accounts []Info) []Info {
	if len(accounts) <= 1 {
		out := make([]Info, len(accounts))
		copy(out, accounts)
		return out
	}
	pivot := accounts[0]
	greater := make([]Info, 0, len(accounts)-1)
	equal := []Info{pivot}
	lesser := make([]Info, 0, len(accounts)-1)
	for _, a := range accounts[1:] {
		switch {
		case a.Balance > pivot.Balance:
			greater = append(greater, a)
		case a.Balance == pivot.Balance:
			equal = append(equal, a)
		default:
			lesser = append(lesser, a)
		}
	}
	out := make([]Info, 0, len(accounts))
	out = append(out, SortByBalanceDesc(greater)...)
	out = append(out, equal...)
	out = append(out, SortByBalanceDesc(lesser)...)
	return out
}

// FindByID is a binary search over a copy sorted ascending by id.
func FindByID(accounts []Info, id string) (Info, error) {
	sorted := make([]Info, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	lo, hi := 0, len(sorted)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case sorted[mid].ID == id:
			return sorted[mid], nil
		case sorted[mid].ID < id:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return Info{}, errors.NotFoundf("account id=%s", id)
}
