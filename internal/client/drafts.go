package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elishgi/moneyPlusMinus/internal/core"
	"github.com/elishgi/moneyPlusMinus/internal/wizard"
)

// Drafts persists in-progress client state as JSON files under a data
// directory: a session file, a budget draft and a questionnaire draft
// per install. A missing or malformed file reads as the zero value:
// local drafts are best-effort and never block the UI.
type Drafts struct {
	dir string
}

func NewDrafts(dir string) *Drafts {
	return &Drafts{dir: dir}
}

// Session is the locally remembered login state.
type Session struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type budgetDraft struct {
	MonthLabel     string          `json:"monthLabel"`
	Incomes        json.RawMessage `json:"incomes"`
	Expenses       json.RawMessage `json:"expenses"`
	PreviousCredit json.RawMessage `json:"previousCredit"`
}

// LoadSession reads the remembered login, if any.
func (d *Drafts) LoadSession() Session {
	var s Session
	d.read("session.json", &s)
	return s
}

// SaveSession remembers the current login.
func (d *Drafts) SaveSession(s Session) error {
	return d.write("session.json", s)
}

// ClearSession forgets the login and any drafts tied to it.
func (d *Drafts) ClearSession() {
	os.Remove(filepath.Join(d.dir, "session.json"))
	os.Remove(filepath.Join(d.dir, "budget.json"))
	os.Remove(filepath.Join(d.dir, "awareness.json"))
}

// LoadAwareness reads the questionnaire draft, if any.
func (d *Drafts) LoadAwareness() (wizard.Profile, bool) {
	var p wizard.Profile
	if !d.read("awareness.json", &p) {
		return wizard.Profile{}, false
	}
	return p, true
}

// SaveAwareness rewrites the questionnaire draft.
func (d *Drafts) SaveAwareness(p wizard.Profile) error {
	return d.write("awareness.json", p)
}

// ClearAwareness drops the questionnaire draft once the answers have
// reached the server.
func (d *Drafts) ClearAwareness() {
	os.Remove(filepath.Join(d.dir, "awareness.json"))
}

// LoadBudget reads the budget draft, normalizing loose item JSON into
// rows and falling back to the templates where the draft is unusable.
func (d *Drafts) LoadBudget() (core.BudgetSnapshot, bool) {
	var draft budgetDraft
	if !d.read("budget.json", &draft) {
		return core.BudgetSnapshot{}, false
	}
	return core.BudgetSnapshot{
		MonthLabel:     draft.MonthLabel,
		Incomes:        core.NormalizeRawItems(draft.Incomes, core.DefaultIncomeItems),
		Expenses:       core.NormalizeRawItems(draft.Expenses, core.DefaultExpenseItems),
		PreviousCredit: core.NormalizeRawItems(draft.PreviousCredit, core.DefaultCreditItems),
	}, true
}

// SaveBudget writes the budget draft.
func (d *Drafts) SaveBudget(b core.BudgetSnapshot) error {
	return d.write("budget.json", b)
}

// read decodes the named file into out. False means the draft was
// missing or malformed and out is untouched past partial decoding.
func (d *Drafts) read(name string, out any) bool {
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (d *Drafts) write(name string, value any) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("creating draft directory: %w", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	return nil
}
