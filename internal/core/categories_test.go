package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAggregateCategories_MergeIntoExistingRow(t *testing.T) {
	breakdown := []BreakdownEntry{
		{Category: "GROCERIES", NetSpend: decimal.New(3000, -2), Direction: Out},
		{Category: "EATING_OUT", NetSpend: decimal.New(1200, -2), Direction: Out},
	}
	extras := []CategoryTotal{
		{Category: "groceries", Total: decimal.New(4550, -2), Direction: Out},
	}

	rows := AggregateCategories(breakdown, extras)
	if len(rows) != 2 {
		t.Fatalf("AggregateCategories() returned %d rows, want 2", len(rows))
	}

	if rows[0].Category != "Groceries" {
		t.Errorf("first row = %q, want Groceries", rows[0].Category)
	}
	if want := decimal.New(7550, -2); !rows[0].Total.Equal(want) {
		t.Errorf("merged Groceries total = %s, want %s", rows[0].Total, want)
	}
	if rows[0].Direction != Out {
		t.Errorf("merged Groceries direction = %s, want OUT", rows[0].Direction)
	}
}

func TestAggregateCategories_AppendsWhenNoMatchingRow(t *testing.T) {
	breakdown := []BreakdownEntry{
		{Category: "TRANSPORT", NetSpend: decimal.New(900, -2), Direction: Out},
	}
	extras := []CategoryTotal{
		{Category: "groceries", Total: decimal.New(4550, -2)},
	}

	rows := AggregateCategories(breakdown, extras)
	if len(rows) != 2 {
		t.Fatalf("AggregateCategories() returned %d rows, want 2", len(rows))
	}

	var groceries *CategoryTotal
	for i := range rows {
		if rows[i].Category == "Groceries" {
			groceries = &rows[i]
		}
	}
	if groceries == nil {
		t.Fatal("appended Groceries row not found")
	}
	if want := decimal.New(4550, -2); !groceries.Total.Equal(want) {
		t.Errorf("appended Groceries total = %s, want %s", groceries.Total, want)
	}
	if groceries.Direction != Out {
		t.Errorf("appended row direction = %s, want inferred OUT", groceries.Direction)
	}
}

func TestAggregateCategories_DropsTransferCategories(t *testing.T) {
	breakdown := []BreakdownEntry{
		{Category: "SAVING", NetSpend: decimal.New(50000, -2), Direction: Out},
		{Category: "INVESTMENTS", NetSpend: decimal.New(30000, -2), Direction: Out},
		{Category: "BILLS", NetSpend: decimal.New(10000, -2), Direction: Out},
	}

	rows := AggregateCategories(breakdown, nil)
	if len(rows) != 1 {
		t.Fatalf("AggregateCategories() returned %d rows, want 1", len(rows))
	}
	if rows[0].Category != "Bills" {
		t.Errorf("surviving row = %q, want Bills", rows[0].Category)
	}
}

func TestAggregateCategories_SortsOutflowsFirstByMagnitude(t *testing.T) {
	breakdown := []BreakdownEntry{
		{Category: "SALARY", NetSpend: decimal.New(250000, -2), Direction: In},
		{Category: "EATING_OUT", NetSpend: decimal.New(4000, -2), Direction: Out},
		{Category: "REFUNDS", NetSpend: decimal.New(1500, -2), Direction: In},
		{Category: "BILLS", NetSpend: decimal.New(12000, -2), Direction: Out},
	}

	rows := AggregateCategories(breakdown, nil)
	want := []string{"Bills", "Eating Out", "Salary", "Refunds"}
	if len(rows) != len(want) {
		t.Fatalf("AggregateCategories() returned %d rows, want %d", len(rows), len(want))
	}
	for i, label := range want {
		if rows[i].Category != label {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i].Category, label)
		}
	}
}

func TestAggregateCategories_NoActivity(t *testing.T) {
	rows := AggregateCategories(nil, nil)
	if len(rows) != 0 {
		t.Errorf("AggregateCategories() with no sources = %v, want empty", rows)
	}
}
