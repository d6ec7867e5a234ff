package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the remaining-vs-spent pair for one allowance, in
// display currency units.
type BudgetStatus struct {
	Remaining decimal.Decimal
	Spent     decimal.Decimal
}

// RemainingAndSpent computes how much of an allowance is left after the
// OUT transactions in the window. Transactions whose category is in the
// allowance's exclusion set (case-insensitive) do not count against it.
//
// When the computed remaining would exceed the allowance ceiling it is
// clamped to the allowance and spent is forced to zero, so the result is
// always a renderable state.
func RemainingAndSpent(a Allowance, transactions []Transaction) BudgetStatus {
	excluded := make(map[string]struct{}, len(a.Exclusions))
	for _, c := range a.Exclusions {
		excluded[strings.ToLower(c)] = struct{}{}
	}

	var spent int64
	for _, tx := range transactions {
		if tx.Direction != Out {
			continue
		}
		if _, skip := excluded[strings.ToLower(tx.Category)]; skip {
			continue
		}
		spent += tx.Amount.MinorUnits
	}

	return clampToAllowance(a.Amount.MinorUnits, a.Amount.MinorUnits-spent, spent)
}

// RemainingFromBalance derives remaining-vs-spent from a reported balance,
// as with a savings space whose saved amount is the remainder of its
// allowance. A balance above the allowance clamps to a full allowance with
// nothing spent.
func RemainingFromBalance(allowance, balance Money) BudgetStatus {
	return clampToAllowance(allowance.MinorUnits, balance.MinorUnits, allowance.MinorUnits-balance.MinorUnits)
}

func clampToAllowance(allowance, remaining, spent int64) BudgetStatus {
	if remaining > allowance {
		remaining = allowance
		spent = 0
	}
	return BudgetStatus{
		Remaining: decimal.New(remaining, -2),
		Spent:     decimal.New(spent, -2),
	}
}
