package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elishgi/moneyPlusMinus/internal/client"
	"github.com/elishgi/moneyPlusMinus/internal/core"
	"github.com/elishgi/moneyPlusMinus/internal/form"
	"github.com/elishgi/moneyPlusMinus/internal/wizard"
)

func TestKeystrokeRecorderBatching(t *testing.T) {
	r := newKeystrokeRecorder()
	r.SetContext("u1", "budget")

	if _, ok := r.TakeBatch(); ok {
		t.Error("empty recorder should produce no batch")
	}

	for i := 0; i < flushThreshold-1; i++ {
		r.Record("a", "aaa", "item.amount")
		if r.Full() {
			t.Fatalf("full after %d events", i+1)
		}
	}
	r.Record("b", "aaab", "item.amount")
	if !r.Full() {
		t.Fatal("recorder should report full at the threshold")
	}

	batch, ok := r.TakeBatch()
	if !ok {
		t.Fatal("expected a batch")
	}
	if batch.UserID != "u1" || batch.Page != "budget" {
		t.Errorf("batch context = %q %q", batch.UserID, batch.Page)
	}
	if len(batch.Events) != flushThreshold {
		t.Errorf("events = %d, want %d", len(batch.Events), flushThreshold)
	}
	if !strings.HasPrefix(batch.SessionID, "tui-") {
		t.Errorf("sessionID = %q", batch.SessionID)
	}
	if batch.Events[0].EventType != "keydown" || batch.Events[0].TypedAt.IsZero() {
		t.Errorf("event = %+v", batch.Events[0])
	}

	if _, ok := r.TakeBatch(); ok {
		t.Error("buffer should be drained after TakeBatch")
	}
}

func TestBudgetRowsFollowDetailToggle(t *testing.T) {
	bs := newBudgetState()
	bs.rebuildRows()

	base := len(bs.rows)
	// Month row plus every template item.
	wantBase := 1 + len(bs.store.Items(form.Incomes)) +
		len(bs.store.Items(form.Expenses)) + len(bs.store.Items(form.PreviousCredit))
	if base != wantBase {
		t.Fatalf("rows = %d, want %d", base, wantBase)
	}

	// Expand a detail-capable expense item.
	var target core.LineItem
	for _, item := range bs.store.Items(form.Expenses) {
		if !item.DetailsLocked() {
			target = item
			break
		}
	}
	if target.ID == "" {
		t.Fatal("no unlockable expense item in templates")
	}

	bs.store.AddDetail(form.Expenses, target.ID)
	bs.store.AddDetail(form.Expenses, target.ID)
	bs.rebuildRows()
	if len(bs.rows) != base+2 {
		t.Fatalf("rows after expand = %d, want %d", len(bs.rows), base+2)
	}

	bs.store.ToggleDetails(form.Expenses, target.ID)
	bs.rebuildRows()
	if len(bs.rows) != base {
		t.Errorf("rows after collapse = %d, want %d", len(bs.rows), base)
	}
}

func TestBudgetCursorClampsAfterRemoval(t *testing.T) {
	bs := newBudgetState()
	bs.rebuildRows()

	bs.cursor = len(bs.rows) - 1
	last := bs.rows[bs.cursor]
	bs.store.RemoveItem(last.section, last.itemID)
	bs.rebuildRows()

	if bs.cursor != len(bs.rows)-1 {
		t.Errorf("cursor = %d, rows = %d", bs.cursor, len(bs.rows))
	}
}

func TestDecliningAwarenessPersistsImmediately(t *testing.T) {
	puts := 0
	var saved struct {
		AwarenessData wizard.Profile `json:"awarenessData"`
		Completed     bool           `json:"completed"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/awareness") {
			puts++
			json.NewDecoder(r.Body).Decode(&saved)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	drafts := client.NewDrafts(t.TempDir())
	a := NewApp(client.New(srv.URL), drafts, time.Millisecond)
	a.profile = client.Profile{ID: "u1", Name: "dana"}
	a.enterWizard(false)

	_, cmd := a.updateWizard(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if cmd == nil {
		t.Fatal("declining awareness should schedule a save")
	}
	msg := cmd()

	if puts != 1 {
		t.Fatalf("awareness saves = %d, want 1", puts)
	}
	if !saved.Completed {
		t.Error("declined flow should persist completed=true")
	}
	if saved.AwarenessData.IsAware == nil || *saved.AwarenessData.IsAware {
		t.Errorf("isAware = %v, want false", saved.AwarenessData.IsAware)
	}

	a.Update(msg)
	if a.view != viewWizard {
		t.Error("declining should stay on the insights screen")
	}
	if !a.profile.AwarenessCompleted {
		t.Error("local profile should be marked completed")
	}
	if _, ok := drafts.LoadAwareness(); ok {
		t.Error("questionnaire draft should be cleared once the save lands")
	}
}

func TestSaveStatusOverflowDoesNotBlockFlush(t *testing.T) {
	a := NewApp(client.New("http://127.0.0.1:1"), client.NewDrafts(t.TempDir()), time.Millisecond)

	// Fill the status channel as if the UI had stopped draining it.
	for i := 0; i < cap(a.saveSub); i++ {
		a.saveSub <- saveStatusMsg{}
	}
	for month := 1; month <= 6; month++ {
		a.saver.Schedule("u1", core.BudgetSnapshot{MonthLabel: fmt.Sprintf("2026-%02d", month)})
	}

	done := make(chan struct{})
	go func() {
		a.saver.Flush()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Flush blocked on a full status channel")
	}
}

func TestRenderSegmentBarFillsWidth(t *testing.T) {
	items := []core.LineItem{
		{ID: "1", Label: "Rent", Amount: "3000"},
		{ID: "2", Label: "Food", Amount: "1000"},
	}
	segments := core.AllocateSegments(items)
	bar := renderSegmentBar(segments, 40)

	if got := strings.Count(bar, "█"); got != 40 {
		t.Errorf("bar cells = %d, want 40", got)
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	for _, f := range []float64{-0.5, 0, 0.5, 1, 2} {
		bar := renderProgressBar(f, 10)
		filled := strings.Count(bar, "█")
		empty := strings.Count(bar, "░")
		if filled+empty != 10 {
			t.Errorf("fraction %v: cells = %d", f, filled+empty)
		}
	}
}
