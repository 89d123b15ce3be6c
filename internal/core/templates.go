package core

import "strconv"

// Section templates: the rows every fresh budget starts with. The rent
// row and credit card rows keep their flat amount authoritative, so
// their templates lock the detail feature at creation time.

type itemTemplate struct {
	label       string
	lockDetails bool
}

var (
	incomeTemplates = []itemTemplate{
		{label: "Salary 1"},
		{label: "Salary 2"},
	}
	expenseTemplates = []itemTemplate{
		{label: RentLabel, lockDetails: true},
		{label: "Bills (water, electricity...)"},
		{label: "Subscriptions"},
		{label: "Tithes"},
	}
	creditTemplates = []itemTemplate{
		{label: "Credit card 1", lockDetails: true},
	}
)

func buildItems(templates []itemTemplate) []LineItem {
	items := make([]LineItem, 0, len(templates))
	for _, t := range templates {
		items = append(items, LineItem{
			ID:          NewID(),
			Label:       t.label,
			Amount:      "",
			Details:     []DetailItem{},
			LockDetails: t.lockDetails,
		})
	}
	return items
}

// DefaultIncomeItems returns the default income rows.
func DefaultIncomeItems() []LineItem { return buildItems(incomeTemplates) }

// DefaultExpenseItems returns the default fixed-expense rows.
func DefaultExpenseItems() []LineItem { return buildItems(expenseTemplates) }

// DefaultCreditItems returns the default prior-month credit rows.
func DefaultCreditItems() []LineItem { return buildItems(creditTemplates) }

// NewIncomeItem is the template for an income row added by hand.
func NewIncomeItem() LineItem {
	return LineItem{ID: NewID(), Label: "Salary", Details: []DetailItem{}}
}

// NewExpenseItem is the template for an expense row added by hand.
func NewExpenseItem() LineItem {
	return LineItem{ID: NewID(), Label: "New expense", Details: []DetailItem{}}
}

// NewCreditItem numbers new credit card rows by the current list
// length, so the second card added becomes "Credit card 2".
func NewCreditItem(existing int) LineItem {
	return LineItem{
		ID:          NewID(),
		Label:       "Credit card " + strconv.Itoa(existing+1),
		Details:     []DetailItem{},
		LockDetails: true,
	}
}
