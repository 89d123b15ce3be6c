package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/elishgi/moneyPlusMinus/internal/core"
	"github.com/elishgi/moneyPlusMinus/internal/wizard"
)

// wizardState wraps the flow machine with the answer input.
type wizardState struct {
	machine *wizard.Machine
	input   textinput.Model
}

func newWizardState(machine *wizard.Machine) wizardState {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 20
	ti.Focus()

	ws := wizardState{machine: machine, input: ti}
	ws.syncInput()
	return ws
}

// syncInput prefills the answer field for the active question.
func (ws *wizardState) syncInput() {
	q, ok := ws.machine.CurrentQuestion()
	if !ok {
		ws.input.SetValue("")
		return
	}
	ws.input.Placeholder = q.Placeholder
	ws.input.SetValue(ws.machine.Profile().Answer(q.Key))
	ws.input.CursorEnd()
}

func (a *App) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		a.wiz.input, cmd = a.wiz.input.Update(msg)
		return a, cmd
	}

	m := a.wiz.machine
	key := keyMsg.String()

	switch m.Step() {
	case wizard.StepIntro:
		switch key {
		case "y", "Y", "enter":
			m.ChooseAware(true)
			a.awarenessChanged()
		case "n", "N":
			// Declining completes the flow; persist right away so the
			// next login goes straight to the budget.
			m.ChooseAware(false)
			a.awarenessChanged()
			a.wiz.syncInput()
			return a, saveAwarenessCmd(a.api, a.profile.ID, m.Profile(), true)
		case "q", "esc":
			return a.quit()
		}
		a.wiz.syncInput()
		return a, nil

	case wizard.StepDeepDive:
		switch key {
		case "y", "Y", "enter":
			m.ChooseDeepAware(true)
			a.awarenessChanged()
		case "n", "N":
			m.ChooseDeepAware(false)
			a.awarenessChanged()
		}
		a.wiz.syncInput()
		return a, nil

	case wizard.StepExplanation:
		switch key {
		case " ":
			m.Acknowledge(!m.Acknowledged())
		case "enter":
			m.ConfirmExplanation()
			a.wiz.syncInput()
		}
		return a, nil

	case wizard.StepInsights:
		switch key {
		case "enter":
			if m.ReadOnly() {
				return a.enterBudget()
			}
			profile := m.Complete()
			return a, saveAwarenessCmd(a.api, a.profile.ID, profile, false)
		case "r":
			if !m.ReadOnly() {
				m.Reset()
				a.awarenessChanged()
				a.wiz.syncInput()
			}
		case "b":
			if m.ReadOnly() {
				return a.enterBudget()
			}
		}
		return a, nil
	}

	// Question screens: primary and detail estimates.
	switch key {
	case "enter":
		m.SetAnswer(strings.TrimSpace(a.wiz.input.Value()))
		a.awarenessChanged()
		m.Next()
		a.wiz.syncInput()
		return a, nil
	case "esc":
		// Skipping stores nothing and moves on.
		m.Next()
		a.wiz.syncInput()
		return a, nil
	}

	var cmd tea.Cmd
	a.wiz.input, cmd = a.wiz.input.Update(keyMsg)
	field := ""
	if q, ok := m.CurrentQuestion(); ok {
		field = q.Key
	}
	record := a.recordKey(key, a.wiz.input.Value(), field)
	return a, tea.Batch(cmd, record)
}

func (a *App) viewWizard() string {
	m := a.wiz.machine
	var b strings.Builder

	b.WriteString(titleStyle.Render("Getting to know your money"))
	b.WriteString("\n")
	b.WriteString(renderProgressBar(m.Progress(), 32))
	b.WriteString("\n\n")

	switch m.Step() {
	case wizard.StepIntro:
		name := m.Profile().UserName
		if name != "" {
			b.WriteString(sectionStyle.Render("Hi "+name+"!") + "\n\n")
		}
		b.WriteString(rowStyle.Render("Do you feel aware of where your money goes each month?"))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("y yes • n no"))

	case wizard.StepPrimary, wizard.StepDetails:
		q, _ := m.CurrentQuestion()
		b.WriteString(sectionStyle.Render(q.Title) + "\n")
		if q.Helper != "" {
			b.WriteString(helperStyle.Render(q.Helper) + "\n")
		}
		b.WriteString("\n" + a.wiz.input.View() + "\n\n")
		b.WriteString(hintStyle.Render("enter next • esc skip"))

	case wizard.StepDeepDive:
		b.WriteString(rowStyle.Render("Could you break that spending down by category from memory?"))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("y yes • n no"))

	case wizard.StepExplanation:
		b.WriteString(rowStyle.Render("That's what this tool is for: the budget form tracks every"))
		b.WriteString("\n")
		b.WriteString(rowStyle.Render("category for you, so you never have to hold it in your head."))
		b.WriteString("\n\n")
		check := "[ ]"
		if m.Acknowledged() {
			check = "[x]"
		}
		b.WriteString(sectionStyle.Render(check + " Got it, let's continue"))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("space toggle • enter continue"))

	case wizard.StepInsights:
		b.WriteString(a.viewInsights())
	}

	if a.errText != "" {
		b.WriteString("\n\n" + errorStyle.Render(a.errText))
	}

	return lipgloss.Place(a.width, a.height,
		lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()))
}

func (a *App) viewInsights() string {
	m := a.wiz.machine
	ins := m.Insights()
	var b strings.Builder

	b.WriteString(sectionStyle.Render(ins.Tone) + "\n\n")
	b.WriteString(fmt.Sprintf("%-22s %s\n", "Estimated income", amountStyle.Render(core.FormatAmount(ins.Income))))
	b.WriteString(fmt.Sprintf("%-22s %s\n", "Estimated expenses", amountStyle.Render(core.FormatAmount(ins.EstimatedExpenses))))
	b.WriteString(fmt.Sprintf("%-22s %s\n", "Estimated balance", remainderStyle(ins.EstimatedBalance).Render(core.FormatAmount(ins.EstimatedBalance))))
	b.WriteString("\n" + helperStyle.Render(ins.BalanceMessage) + "\n")
	if !ins.FullyAnswered {
		b.WriteString(helperStyle.Render("Some estimates are missing; the numbers above are partial.") + "\n")
	}

	b.WriteString("\n")
	if m.ReadOnly() {
		b.WriteString(hintStyle.Render("enter/b back to budget"))
	} else {
		b.WriteString(hintStyle.Render("enter finish • r start over"))
	}
	return b.String()
}

// renderProgressBar draws a fraction as a fixed-width block bar.
func renderProgressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(colorAccent).Render(bar) +
		helperStyle.Render(fmt.Sprintf(" %d%%", int(fraction*100+0.5)))
}
