package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// In marks money received, Out money spent or sent.
	In  Direction = "IN"
	Out Direction = "OUT"

	// NotAvailable substitutes optional provider fields that were absent.
	NotAvailable = "N/A"

	// DisplayDateLayout is the dd/mm/yyyy format used by the rendering layer.
	DisplayDateLayout = "02/01/2006"
)

type (
	Direction string

	// Money is an amount in minor currency units (pence). Amounts coming
	// from providers are non-negative; sign is carried by Direction.
	Money struct {
		MinorUnits int64
	}

	// Transaction is a single feed item, immutable once observed and
	// uniquely keyed by the provider-issued ID.
	Transaction struct {
		ID           string
		Timestamp    time.Time // settlement time; zero when the provider omitted it
		Direction    Direction
		Amount       Money
		Currency     string
		Category     string
		Counterparty string
	}

	// Order is a brokerage fill. CashImpact is the cash moved by the
	// order in minor units, always non-negative; Side carries the sign.
	Order struct {
		ID         string
		Ticker     string
		Side       OrderSide
		CashImpact Money
		FilledAt   time.Time
	}

	OrderSide string

	// Holding is a brokerage position. Price is in the provider's raw
	// quote units and must go through NormalizePrice before use.
	Holding struct {
		Ticker   string
		Quantity decimal.Decimal
		Price    decimal.Decimal
	}

	// BalancePoint is one row of a reconciled balance series.
	BalancePoint struct {
		Date    time.Time
		Delta   decimal.Decimal // signed change in display units
		Balance decimal.Decimal // absolute balance after the change
	}

	// Allowance is a fixed periodic budget with categories that do not
	// count against it.
	Allowance struct {
		Amount     Money
		Exclusions []string // lowercase category names
	}

	// CategoryTotal is one row of a per-category rollup.
	CategoryTotal struct {
		Category  string
		Total     decimal.Decimal
		Direction Direction
	}

	// PortfolioSnapshot is the persisted once-per-day net-worth record.
	PortfolioSnapshot struct {
		Date           time.Time // calendar day, unique per record
		NetDeposit     decimal.Decimal
		PortfolioValue decimal.Decimal
		SavingsTotal   decimal.Decimal
		NetWorth       decimal.Decimal
		Holdings       []HoldingValue
	}

	// HoldingValue is the per-position breakdown inside a snapshot.
	HoldingValue struct {
		Ticker   string
		Quantity decimal.Decimal
		Price    decimal.Decimal // normalized to the display currency
		Value    decimal.Decimal
	}
)

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

var (
	ErrMissingID        = errors.New("missing provider id")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNegativeAmount   = errors.New("negative amount")
)

func (d Direction) Valid() bool {
	return d == In || d == Out
}

// Signed returns the amount signed by direction: positive for IN,
// negative for OUT.
func (t Transaction) Signed() int64 {
	if t.Direction == Out {
		return -t.Amount.MinorUnits
	}
	return t.Amount.MinorUnits
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if t.Amount.MinorUnits < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// DisplayDate formats the timestamp for tabular output, substituting the
// N/A sentinel when the provider omitted a settlement time.
func (t Transaction) DisplayDate() string {
	if t.Timestamp.IsZero() {
		return NotAvailable
	}
	return t.Timestamp.Format(DisplayDateLayout)
}

// DisplayCategory normalizes a provider category for tabular output,
// substituting the N/A sentinel when absent.
func (t Transaction) DisplayCategory() string {
	if strings.TrimSpace(t.Category) == "" {
		return NotAvailable
	}
	return NormalizeLabel(t.Category)
}

// DisplayCounterparty returns the counterparty name or the N/A sentinel.
func (t Transaction) DisplayCounterparty() string {
	if strings.TrimSpace(t.Counterparty) == "" {
		return NotAvailable
	}
	return t.Counterparty
}
