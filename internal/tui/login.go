package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loginState holds the name prompt.
type loginState struct {
	input   textinput.Model
	pending bool
}

func newLoginState() loginState {
	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.CharLimit = 64
	ti.Width = 32
	ti.Focus()
	return loginState{input: ti}
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		a.login.input, cmd = a.login.input.Update(msg)
		return a, cmd
	}

	switch keyMsg.String() {
	case "enter":
		name := strings.TrimSpace(a.login.input.Value())
		if name == "" {
			a.errText = "Type a name to continue"
			return a, nil
		}
		if a.login.pending {
			return a, nil
		}
		a.login.pending = true
		a.errText = ""
		return a, loginCmd(a.api, name)
	case "esc":
		return a.quit()
	}

	var cmd tea.Cmd
	a.login.input, cmd = a.login.input.Update(keyMsg)
	record := a.recordKey(keyMsg.String(), a.login.input.Value(), "loginName")
	return a, tea.Batch(cmd, record)
}

func (a *App) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Money +/-"))
	b.WriteString("\n")
	b.WriteString(helperStyle.Render("Who is budgeting today?"))
	b.WriteString("\n\n")
	b.WriteString(a.login.input.View())
	b.WriteString("\n\n")
	if a.login.pending {
		b.WriteString(statusStyle.Render("Signing in..."))
	} else {
		b.WriteString(hintStyle.Render("enter sign in • esc quit"))
	}
	if a.errText != "" {
		b.WriteString("\n" + errorStyle.Render(a.errText))
	}

	return lipgloss.Place(a.width, a.height,
		lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()))
}
