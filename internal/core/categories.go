package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BreakdownEntry is one row of a provider's monthly spending-insight
// response, before normalization. NetSpend is in display currency units,
// as the insight endpoint reports it.
type BreakdownEntry struct {
	Category  string
	NetSpend  decimal.Decimal
	Direction Direction
}

// transferCategories are rollup rows that represent money moved between
// own accounts rather than spending. They are structural exclusions, not
// user configuration.
var transferCategories = map[string]struct{}{
	"Saving":      {},
	"Investments": {},
}

// AggregateCategories rolls a monthly breakdown up into display rows.
//
// Labels are normalized (underscores to spaces, title case) and transfer
// categories are dropped. Extra totals computed from other sources merge
// into an existing row of the same label by addition, or append as a new
// OUT row. Rows sort with the biggest outflows first, then the biggest
// inflows.
//
// An empty result is a valid no-activity state, not an error.
func AggregateCategories(breakdown []BreakdownEntry, extras []CategoryTotal) []CategoryTotal {
	var rows []CategoryTotal
	index := make(map[string]int)

	for _, entry := range breakdown {
		label := NormalizeLabel(entry.Category)
		if _, transfer := transferCategories[label]; transfer {
			continue
		}
		index[label] = len(rows)
		rows = append(rows, CategoryTotal{
			Category:  label,
			Total:     entry.NetSpend,
			Direction: entry.Direction,
		})
	}

	for _, extra := range extras {
		label := NormalizeLabel(extra.Category)
		if i, ok := index[label]; ok {
			rows[i].Total = rows[i].Total.Add(extra.Total)
			continue
		}
		direction := extra.Direction
		if !direction.Valid() {
			direction = Out
		}
		index[label] = len(rows)
		rows = append(rows, CategoryTotal{
			Category:  label,
			Total:     extra.Total,
			Direction: direction,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Direction != rows[j].Direction {
			// OUT sorts before IN
			return rows[i].Direction > rows[j].Direction
		}
		return rows[i].Total.GreaterThan(rows[j].Total)
	})

	return rows
}
