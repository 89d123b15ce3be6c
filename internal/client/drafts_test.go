package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/elishgi/moneyPlusMinus/internal/core"
	"github.com/elishgi/moneyPlusMinus/internal/wizard"
)

func TestDraftsSessionRoundTrip(t *testing.T) {
	d := NewDrafts(t.TempDir())

	if s := d.LoadSession(); s.UserID != "" {
		t.Errorf("fresh session = %+v, want zero", s)
	}

	if err := d.SaveSession(Session{UserID: "u1", UserName: "dana"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	s := d.LoadSession()
	if s.UserID != "u1" || s.UserName != "dana" {
		t.Errorf("session = %+v", s)
	}

	d.ClearSession()
	if s := d.LoadSession(); s.UserID != "" {
		t.Errorf("session after clear = %+v", s)
	}
}

func TestDraftsBudgetRoundTrip(t *testing.T) {
	d := NewDrafts(t.TempDir())

	if _, ok := d.LoadBudget(); ok {
		t.Error("missing draft should not load")
	}

	budget := core.BudgetSnapshot{
		MonthLabel: "March 2025",
		Incomes:    []core.LineItem{{ID: "1", Label: "Salary", Amount: "9000"}},
		Expenses:   []core.LineItem{{ID: "2", Label: "Rent", Amount: "3000"}},
	}
	if err := d.SaveBudget(budget); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	loaded, ok := d.LoadBudget()
	if !ok {
		t.Fatal("saved draft should load")
	}
	if loaded.MonthLabel != "March 2025" {
		t.Errorf("monthLabel = %q", loaded.MonthLabel)
	}
	if len(loaded.Incomes) != 1 || loaded.Incomes[0].Amount != "9000" {
		t.Errorf("incomes = %+v", loaded.Incomes)
	}
	// The empty previous-credit section normalizes to its template.
	if len(loaded.PreviousCredit) == 0 {
		t.Error("expected template fallback for empty section")
	}
}

func TestDraftsAwarenessRoundTrip(t *testing.T) {
	d := NewDrafts(t.TempDir())

	if _, ok := d.LoadAwareness(); ok {
		t.Error("missing draft should not load")
	}

	aware := true
	p := wizard.Profile{UserName: "dana", IsAware: &aware, IncomeEstimate: "9000"}
	if err := d.SaveAwareness(p); err != nil {
		t.Fatalf("SaveAwareness: %v", err)
	}

	loaded, ok := d.LoadAwareness()
	if !ok {
		t.Fatal("saved draft should load")
	}
	if loaded.UserName != "dana" || loaded.IncomeEstimate != "9000" {
		t.Errorf("draft = %+v", loaded)
	}
	if loaded.IsAware == nil || !*loaded.IsAware {
		t.Errorf("isAware = %v", loaded.IsAware)
	}

	d.ClearAwareness()
	if _, ok := d.LoadAwareness(); ok {
		t.Error("draft after clear should not load")
	}

	// ClearSession takes the questionnaire draft with it.
	d.SaveAwareness(p)
	d.ClearSession()
	if _, ok := d.LoadAwareness(); ok {
		t.Error("draft should not survive a cleared session")
	}
}

func TestDraftsMalformedFileReadsAsMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "budget.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDrafts(dir)
	if _, ok := d.LoadBudget(); ok {
		t.Error("malformed draft should read as missing")
	}
}

func TestDraftsCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	d := NewDrafts(dir)

	if err := d.SaveSession(Session{UserID: "u1"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); err != nil {
		t.Errorf("session file not written: %v", err)
	}
}
