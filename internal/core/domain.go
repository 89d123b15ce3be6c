package core

import (
	"strconv"

	"github.com/google/uuid"
)

// RentLabel is the label carried by the rent expense template. Items
// labeled rent never expose detail rows, in addition to any item whose
// LockDetails flag is set.
const RentLabel = "Rent"

type (
	// DetailItem is a sub-row itemizing part of a LineItem's total. It
	// belongs to exactly one parent and has no lifecycle of its own.
	DetailItem struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Amount string `json:"amount"`
	}

	// LineItem is a single income or expense row. When Details is
	// non-empty the flat Amount field is only a derived cache; the sum
	// of the details is authoritative.
	LineItem struct {
		ID          string       `json:"id"`
		Label       string       `json:"label"`
		Amount      string       `json:"amount"`
		Details     []DetailItem `json:"details"`
		LockDetails bool         `json:"lockDetails"`
		ShowDetails bool         `json:"showDetails"`
	}

	// BudgetSnapshot is one month's full set of income, fixed-expense
	// and prior-credit rows for a user. MonthLabel is the natural key
	// within a user's budget list.
	BudgetSnapshot struct {
		MonthLabel     string     `json:"monthLabel"`
		Incomes        []LineItem `json:"incomes"`
		Expenses       []LineItem `json:"expenses"`
		PreviousCredit []LineItem `json:"previousCredit"`
	}
)

// NewID returns a fresh line item identifier.
func NewID() string {
	return uuid.NewString()
}

// DetailsLocked reports whether the detail sub-feature is disabled for
// this item, either explicitly or through the rent label rule.
func (it LineItem) DetailsLocked() bool {
	return it.LockDetails || it.Label == RentLabel
}

// EffectiveAmount returns the item's amount: the sum of its detail rows
// when any exist, otherwise the coerced flat amount.
func (it LineItem) EffectiveAmount() float64 {
	if len(it.Details) > 0 {
		var sum float64
		for _, d := range it.Details {
			sum += ParseAmount(d.Amount)
		}
		return sum
	}
	return ParseAmount(it.Amount)
}

// SumItems totals the effective amounts of a sequence of items.
func SumItems(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.EffectiveAmount()
	}
	return sum
}

// SumDetails totals a detail list. Used to keep the parent's flat
// Amount field in sync after detail mutations.
func SumDetails(details []DetailItem) string {
	var sum float64
	for _, d := range details {
		sum += ParseAmount(d.Amount)
	}
	return strconv.FormatFloat(sum, 'f', -1, 64)
}

// TotalIncome returns the snapshot's income total.
func (b BudgetSnapshot) TotalIncome() float64 {
	return SumItems(b.Incomes)
}

// TotalExpense returns fixed expenses plus prior-month credit charges.
func (b BudgetSnapshot) TotalExpense() float64 {
	return SumItems(b.Expenses) + SumItems(b.PreviousCredit)
}

// Remaining is what is left of the month's income after all expenses.
func (b BudgetSnapshot) Remaining() float64 {
	return b.TotalIncome() - b.TotalExpense()
}
