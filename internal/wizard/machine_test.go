package wizard

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNotAwareCompletesImmediately(t *testing.T) {
	m := NewMachine(Profile{}, false)
	m.ChooseAware(false)

	if m.Step() != StepInsights {
		t.Fatalf("step = %q, want insights", m.Step())
	}
	p := m.Profile()
	if p.IsAware == nil || *p.IsAware {
		t.Error("isAware should be false")
	}
	if !p.Completed {
		t.Error("declining awareness must complete the flow")
	}
	if p.IncomeEstimate != "" || p.DeepAware != nil {
		t.Error("other fields must stay at defaults")
	}
	if !m.ReadOnly() {
		t.Error("completed flow must be read-only")
	}
}

func TestFullPathPopulatesEverything(t *testing.T) {
	m := NewMachine(Profile{}, false)
	m.SetUserName("Dana")
	m.ChooseAware(true)
	if m.Step() != StepPrimary {
		t.Fatalf("step = %q, want primary", m.Step())
	}

	primary := []string{"12000", "4200", "2300", "1200"}
	for _, v := range primary {
		m.SetAnswer(v)
		m.Next()
	}
	if m.Step() != StepDeepDive {
		t.Fatalf("step = %q, want deepDive", m.Step())
	}

	m.ChooseDeepAware(true)
	if m.Step() != StepDetails {
		t.Fatalf("step = %q, want details", m.Step())
	}
	for _, v := range []string{"600", "2000", "500"} {
		m.SetAnswer(v)
		m.Next()
	}
	if m.Step() != StepInsights {
		t.Fatalf("step = %q, want insights", m.Step())
	}

	p := m.Complete()
	if !p.Completed {
		t.Error("Complete must set the terminal marker")
	}
	if p.IncomeEstimate != "12000" || p.TreatsEstimate != "500" {
		t.Errorf("answers not stored: %+v", p)
	}

	in := m.Insights()
	if in.EstimatedExpenses != 4200+2300+1200+600+2000+500 {
		t.Errorf("EstimatedExpenses = %v", in.EstimatedExpenses)
	}
	if in.EstimatedBalance != 12000-10800 {
		t.Errorf("EstimatedBalance = %v", in.EstimatedBalance)
	}
	if !in.FullyAnswered {
		t.Error("all questions answered positively, FullyAnswered should hold")
	}
	if in.Tone != "High level of awareness!" {
		t.Errorf("tone = %q", in.Tone)
	}
}

func TestSkipIsNextWithoutAnswer(t *testing.T) {
	m := NewMachine(Profile{}, false)
	m.ChooseAware(true)
	m.Next() // skip income question
	p := m.Profile()
	if p.IncomeEstimate != "" {
		t.Errorf("skipped answer stored: %q", p.IncomeEstimate)
	}
	q, ok := m.CurrentQuestion()
	if !ok || q.Key != "fixedExpensesEstimate" {
		t.Fatalf("current question = %+v", q)
	}
}

func TestExplanationGatedByAcknowledgment(t *testing.T) {
	m := NewMachine(Profile{}, false)
	m.ChooseAware(true)
	for range PrimaryQuestions {
		m.Next()
	}
	m.ChooseDeepAware(false)
	if m.Step() != StepExplanation {
		t.Fatalf("step = %q, want explanation", m.Step())
	}

	m.ConfirmExplanation()
	if m.Step() != StepExplanation {
		t.Fatal("confirm without acknowledgment must not advance")
	}
	m.Acknowledge(true)
	m.ConfirmExplanation()
	if m.Step() != StepDetails {
		t.Fatalf("step = %q, want details", m.Step())
	}
}

func TestProgressIsMonotone(t *testing.T) {
	m := NewMachine(Profile{}, false)
	last := m.Progress()

	check := func() {
		t.Helper()
		p := m.Progress()
		if p < last {
			t.Fatalf("progress went backwards: %v -> %v at step %q", last, p, m.Step())
		}
		last = p
	}

	m.ChooseAware(true)
	check()
	for range PrimaryQuestions {
		m.Next()
		check()
	}
	m.ChooseDeepAware(false)
	check()
	m.Acknowledge(true)
	m.ConfirmExplanation()
	check()
	for range DetailQuestions {
		m.Next()
		check()
	}
	if m.Step() != StepInsights || m.Progress() != 1 {
		t.Fatalf("terminal progress = %v at %q", m.Progress(), m.Step())
	}
}

func TestLockedProfileStartsReadOnlyAtInsights(t *testing.T) {
	m := NewMachine(Profile{UserName: "Dana", IncomeEstimate: "9000"}, true)
	if m.Step() != StepInsights || !m.ReadOnly() {
		t.Fatalf("step = %q, readOnly = %v", m.Step(), m.ReadOnly())
	}
	m.SetUserName("changed")
	m.ChooseAware(true)
	if p := m.Profile(); p.UserName != "Dana" || p.IsAware != nil {
		t.Fatalf("read-only machine mutated: %+v", p)
	}
}

func TestResetClearsAnswersKeepsName(t *testing.T) {
	m := NewMachine(Profile{UserName: "Dana", Completed: true, IncomeEstimate: "9000"}, true)
	m.Reset()
	if m.Step() != StepIntro || m.ReadOnly() {
		t.Fatalf("after reset: step = %q, readOnly = %v", m.Step(), m.ReadOnly())
	}
	p := m.Profile()
	if p.UserName != "Dana" {
		t.Errorf("reset dropped the display name: %q", p.UserName)
	}
	if p.IncomeEstimate != "" || p.Completed {
		t.Errorf("reset kept answers: %+v", p)
	}
}

func TestBalanceMessages(t *testing.T) {
	cases := []struct {
		income, fixed string
		wantFragment  string
	}{
		{"1000", "2000", "spending exceeds income"},
		{"5000", "1000", "positive margin"},
		{"1500", "1000", "roughly balanced"},
	}
	for i, tc := range cases {
		p := Profile{IncomeEstimate: tc.income, FixedExpensesEstimate: tc.fixed}
		got := p.Insights().BalanceMessage
		if !strings.Contains(got, tc.wantFragment) {
			t.Errorf("case %d: message %q missing %q", i, got, tc.wantFragment)
		}
	}
}

func TestProfileJSONFieldNames(t *testing.T) {
	aware := true
	p := Profile{UserName: "Dana", IsAware: &aware, IncomeEstimate: "12000", Completed: true}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"userName", "isAware", "incomeEstimate", "fixedExpensesEstimate",
		"creditCardEstimate", "debitCardEstimate", "deepAware",
		"fuelEstimate", "groceriesEstimate", "treatsEstimate", "completed",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing json field %q", key)
		}
	}
	if doc["isAware"] != true {
		t.Errorf("isAware = %v", doc["isAware"])
	}
}
