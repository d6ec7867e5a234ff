package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Reconcile turns a known current balance plus a window of transactions
// into an absolute balance series.
//
// Provider feeds arrive newest-first, so the input is sorted into
// chronological order before aggregation. The running change is the prefix
// sum of signed deltas; the starting balance is back-solved from the
// current balance minus the final running change, so history is derived
// from a known present rather than an unknown past.
//
// An empty window yields an empty series: the balance is constant at
// currentBalance and there is nothing to back-solve.
func Reconcile(currentBalance Money, transactions []Transaction) []BalancePoint {
	if len(transactions) == 0 {
		return nil
	}

	ordered := make([]Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	running := make([]int64, len(ordered))
	var sum int64
	for i, tx := range ordered {
		sum += tx.Signed()
		running[i] = sum
	}

	starting := currentBalance.MinorUnits - running[len(running)-1]

	points := make([]BalancePoint, len(ordered))
	for i, tx := range ordered {
		points[i] = BalancePoint{
			Date:    tx.Timestamp,
			Delta:   decimal.New(tx.Signed(), -2),
			Balance: decimal.New(starting+running[i], -2),
		}
	}
	return points
}
