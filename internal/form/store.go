// Package form holds the working copy of a month's budget: three
// ordered sections of line items plus the month label. It is an
// explicit state object with change notification; the TUI mutates it
// through methods and persists snapshots of it.
package form

import (
	"time"

	"github.com/elishgi/moneyPlusMinus/internal/core"
)

// Section identifies one of the three budget lists.
type Section int

const (
	Incomes Section = iota
	Expenses
	PreviousCredit
)

// Patch is a shallow merge applied to a line item or detail row. Nil
// fields leave the current value untouched.
type Patch struct {
	Label  *string
	Amount *string
}

// Store is the in-memory budget form state. All methods are intended
// for a single goroutine; the TUI event loop owns the store and hands
// immutable snapshots to anything concurrent.
type Store struct {
	monthLabel     string
	incomes        []core.LineItem
	expenses       []core.LineItem
	previousCredit []core.LineItem
	subscribers    []func()
}

// NewStore returns a store seeded with the section templates and the
// current month's label.
func NewStore() *Store {
	return &Store{
		monthLabel:     DefaultMonthLabel(time.Now()),
		incomes:        core.DefaultIncomeItems(),
		expenses:       core.DefaultExpenseItems(),
		previousCredit: core.DefaultCreditItems(),
	}
}

// DefaultMonthLabel renders the month label used for fresh budgets.
func DefaultMonthLabel(now time.Time) string {
	return now.Format("January 2006")
}

// Subscribe registers a callback invoked after every mutation.
func (s *Store) Subscribe(fn func()) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify() {
	for _, fn := range s.subscribers {
		fn()
	}
}

// MonthLabel returns the current month label.
func (s *Store) MonthLabel() string { return s.monthLabel }

// SetMonthLabel replaces the month label.
func (s *Store) SetMonthLabel(label string) {
	s.monthLabel = label
	s.notify()
}

// Items returns the live slice for a section. Callers must treat it as
// read-only; mutations go through the store methods.
func (s *Store) Items(section Section) []core.LineItem {
	switch section {
	case Incomes:
		return s.incomes
	case Expenses:
		return s.expenses
	default:
		return s.previousCredit
	}
}

func (s *Store) setItems(section Section, items []core.LineItem) {
	switch section {
	case Incomes:
		s.incomes = items
	case Expenses:
		s.expenses = items
	default:
		s.previousCredit = items
	}
}

// AddItem appends a template-derived row to the section. Credit card
// rows auto-number by the current list length.
func (s *Store) AddItem(section Section) core.LineItem {
	var item core.LineItem
	switch section {
	case Incomes:
		item = core.NewIncomeItem()
	case Expenses:
		item = core.NewExpenseItem()
	default:
		item = core.NewCreditItem(len(s.previousCredit))
	}
	s.setItems(section, append(s.Items(section), item))
	s.notify()
	return item
}

// RemoveItem deletes the row with the given id. Unknown ids are a
// no-op.
func (s *Store) RemoveItem(section Section, id string) {
	items := s.Items(section)
	next := make([]core.LineItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	s.setItems(section, next)
	s.notify()
}

// UpdateItem applies a shallow patch to the row with the given id.
func (s *Store) UpdateItem(section Section, id string, patch Patch) {
	items := s.Items(section)
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if patch.Label != nil {
			items[i].Label = *patch.Label
		}
		if patch.Amount != nil {
			items[i].Amount = *patch.Amount
		}
	}
	s.notify()
}

// ToggleDetails flips the detail visibility for a row. Locked and
// rent-labeled rows never show details, so the toggle is a no-op there.
func (s *Store) ToggleDetails(section Section, id string) {
	items := s.Items(section)
	for i := range items {
		if items[i].ID != id || items[i].DetailsLocked() {
			continue
		}
		items[i].ShowDetails = !items[i].ShowDetails
	}
	s.notify()
}

// AddDetail appends an empty detail row to the parent, opens the detail
// box and refreshes the parent's cached amount. No-op when the parent
// is locked.
func (s *Store) AddDetail(section Section, parentID string) {
	items := s.Items(section)
	for i := range items {
		if items[i].ID != parentID || items[i].DetailsLocked() {
			continue
		}
		items[i].Details = append(items[i].Details, core.DetailItem{ID: core.NewID()})
		items[i].ShowDetails = true
		items[i].Amount = core.SumDetails(items[i].Details)
	}
	s.notify()
}

// UpdateDetail patches a detail row and refreshes the parent's cached
// amount. No-op when the parent is locked.
func (s *Store) UpdateDetail(section Section, parentID, detailID string, patch Patch) {
	items := s.Items(section)
	for i := range items {
		if items[i].ID != parentID || items[i].DetailsLocked() {
			continue
		}
		for j := range items[i].Details {
			if items[i].Details[j].ID != detailID {
				continue
			}
			if patch.Label != nil {
				items[i].Details[j].Label = *patch.Label
			}
			if patch.Amount != nil {
				items[i].Details[j].Amount = *patch.Amount
			}
		}
		items[i].Amount = core.SumDetails(items[i].Details)
	}
	s.notify()
}

// RemoveDetail deletes a detail row and refreshes the parent's cached
// amount. No-op when the parent is locked.
func (s *Store) RemoveDetail(section Section, parentID, detailID string) {
	items := s.Items(section)
	for i := range items {
		if items[i].ID != parentID || items[i].DetailsLocked() {
			continue
		}
		next := make([]core.DetailItem, 0, len(items[i].Details))
		for _, d := range items[i].Details {
			if d.ID != detailID {
				next = append(next, d)
			}
		}
		items[i].Details = next
		items[i].Amount = core.SumDetails(next)
	}
	s.notify()
}

// Snapshot returns a deep copy of the current state for persistence.
func (s *Store) Snapshot() core.BudgetSnapshot {
	return core.BudgetSnapshot{
		MonthLabel:     s.monthLabel,
		Incomes:        copyItems(s.incomes),
		Expenses:       copyItems(s.expenses),
		PreviousCredit: copyItems(s.previousCredit),
	}
}

// Load replaces the state with a snapshot from the local draft or the
// server, normalizing each section and falling back to its templates
// when the normalized list comes out empty. An empty month label keeps
// the current one.
func (s *Store) Load(snapshot core.BudgetSnapshot) {
	if snapshot.MonthLabel != "" {
		s.monthLabel = snapshot.MonthLabel
	}
	s.incomes = core.NormalizeItems(snapshot.Incomes, core.DefaultIncomeItems)
	s.expenses = core.NormalizeItems(snapshot.Expenses, core.DefaultExpenseItems)
	s.previousCredit = core.NormalizeItems(snapshot.PreviousCredit, core.DefaultCreditItems)
	s.notify()
}

// Reset restores the template rows and the current month's label.
func (s *Store) Reset() {
	s.monthLabel = DefaultMonthLabel(time.Now())
	s.incomes = core.DefaultIncomeItems()
	s.expenses = core.DefaultExpenseItems()
	s.previousCredit = core.DefaultCreditItems()
	s.notify()
}

// TotalIncome returns the current income total.
func (s *Store) TotalIncome() float64 { return core.SumItems(s.incomes) }

// TotalExpense returns fixed expenses plus prior credit charges.
func (s *Store) TotalExpense() float64 {
	return core.SumItems(s.expenses) + core.SumItems(s.previousCredit)
}

// Remaining returns income minus all expenses.
func (s *Store) Remaining() float64 { return s.TotalIncome() - s.TotalExpense() }

// CombinedExpenses returns fixed expenses followed by prior credit
// items, the concatenation order the segment allocator expects.
func (s *Store) CombinedExpenses() []core.LineItem {
	combined := make([]core.LineItem, 0, len(s.expenses)+len(s.previousCredit))
	combined = append(combined, s.expenses...)
	combined = append(combined, s.previousCredit...)
	return combined
}

func copyItems(items []core.LineItem) []core.LineItem {
	out := make([]core.LineItem, len(items))
	copy(out, items)
	for i := range out {
		details := make([]core.DetailItem, len(out[i].Details))
		copy(details, out[i].Details)
		out[i].Details = details
	}
	return out
}
