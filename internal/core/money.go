// Package core holds the domain types and the pure transforms of the
// aggregation engine: unit normalization, balance reconciliation, budget
// allocation, category rollups and budgeting-period arithmetic.
//
// Everything in this package is deterministic and side-effect free; the
// current time and FX rates are always injected by the caller.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// usNamespace marks tickers quoted in dollars on a US listing. Everything
// else from the brokerage is quoted in pence.
const usNamespace = "_US_"

var hundred = decimal.NewFromInt(100)

// Decimal converts minor units to display currency units (pence to pounds).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.MinorUnits, -2)
}

// Add returns the sum of two amounts.
func (m Money) Add(n Money) Money {
	return Money{MinorUnits: m.MinorUnits + n.MinorUnits}
}

// NormalizePrice converts a raw holding quote to the display currency.
// US-listed tickers are quoted in dollars and convert via the supplied FX
// rate; all other tickers are quoted in pence and divide by 100.
func NormalizePrice(ticker string, price, usdRate decimal.Decimal) decimal.Decimal {
	if strings.Contains(ticker, usNamespace) {
		return price.Mul(usdRate)
	}
	return price.Div(hundred)
}

// Value returns the display-currency value of a holding at its normalized
// price.
func (h Holding) Value(usdRate decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(NormalizePrice(h.Ticker, h.Price, usdRate))
}

// NormalizeLabel turns a provider category key into a display label:
// separator underscores become spaces and each word is title-cased, so
// "eating_out" becomes "Eating Out".
func NormalizeLabel(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
