// Package tui is the interactive terminal client: name login, the
// awareness wizard and the monthly budget form, talking to the REST
// backend through the API client.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elishgi/moneyPlusMinus/internal/client"
	"github.com/elishgi/moneyPlusMinus/internal/storage"
	"github.com/elishgi/moneyPlusMinus/internal/wizard"
)

type view int

const (
	viewLogin view = iota
	viewWizard
	viewBudget
)

// loginDoneMsg carries the login round trip result.
type loginDoneMsg struct {
	profile client.Profile
	err     error
}

// profileFetchedMsg carries a session-restore profile fetch.
type profileFetchedMsg struct {
	profile client.Profile
	err     error
}

// awarenessSavedMsg reports the wizard persistence round trip. stay
// keeps the wizard on screen, for the declined-awareness save that
// lands while insights is still showing.
type awarenessSavedMsg struct {
	profile wizard.Profile
	stay    bool
	err     error
}

// snapshotDoneMsg reports a totals snapshot round trip.
type snapshotDoneMsg struct {
	result client.SnapshotResult
	err    error
}

// keystrokesSentMsg closes a keystroke flush; failures are dropped.
type keystrokesSentMsg struct{ err error }

// saveStatusMsg relays Saver progress from its goroutines.
type saveStatusMsg struct {
	status client.Status
	err    error
}

// App is the root Bubble Tea model.
type App struct {
	api      *client.Client
	drafts   *client.Drafts
	saver    *client.Saver
	recorder *keystrokeRecorder
	saveSub  chan tea.Msg

	view   view
	width  int
	height int

	profile    client.Profile
	saveStatus client.Status
	errText    string

	login  loginState
	wiz    wizardState
	budget budgetState
}

// NewApp wires the root model. debounce tunes the save queue window.
func NewApp(api *client.Client, drafts *client.Drafts, debounce time.Duration) *App {
	saveSub := make(chan tea.Msg, 8)
	a := &App{
		api:      api,
		drafts:   drafts,
		recorder: newKeystrokeRecorder(),
		saveSub:  saveSub,
		view:     viewLogin,
		login:    newLoginState(),
	}
	a.saver = client.NewSaver(api, debounce, func(st client.Status, err error) {
		// Non-blocking: once the program stops draining the channel
		// (after quit), late results are dropped instead of wedging
		// the Flush that waits on their goroutines.
		select {
		case saveSub <- saveStatusMsg{status: st, err: err}:
		default:
		}
	})
	return a
}

// Run drives the program until quit.
func Run(api *client.Client, drafts *client.Drafts, debounce time.Duration) error {
	p := tea.NewProgram(NewApp(api, drafts, debounce), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.login.input.Cursor.BlinkCmd(), waitForSave(a.saveSub)}
	if session := a.drafts.LoadSession(); session.UserID != "" {
		a.login.input.SetValue(session.UserName)
		a.login.pending = true
		cmds = append(cmds, fetchProfileCmd(a.api, session.UserID))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case saveStatusMsg:
		a.saveStatus = msg.status
		if msg.err != nil {
			a.errText = "Save failed: " + msg.err.Error()
		}
		return a, waitForSave(a.saveSub)

	case keystrokesSentMsg:
		// Typing telemetry is best-effort; a failed flush is dropped.
		return a, nil

	case loginDoneMsg:
		return a.finishLogin(msg)

	case profileFetchedMsg:
		return a.finishRestore(msg)

	case awarenessSavedMsg:
		if msg.err != nil {
			a.errText = "Saving the wizard failed: " + msg.err.Error()
			return a, nil
		}
		if data, err := json.Marshal(msg.profile); err == nil {
			a.profile.AwarenessData = data
		}
		a.profile.AwarenessCompleted = msg.profile.Completed
		a.drafts.ClearAwareness()
		if msg.stay {
			return a, nil
		}
		return a.enterBudget()

	case snapshotDoneMsg:
		if msg.err != nil {
			a.errText = "Snapshot failed: " + msg.err.Error()
		} else {
			a.budget.lastSnapshotID = msg.result.ID
			a.errText = ""
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
	}

	switch a.view {
	case viewLogin:
		return a.updateLogin(msg)
	case viewWizard:
		return a.updateWizard(msg)
	default:
		return a.updateBudget(msg)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	switch a.view {
	case viewLogin:
		return a.viewLogin()
	case viewWizard:
		return a.viewWizard()
	default:
		return a.viewBudget()
	}
}

// quit flushes pending work before stopping the program.
func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.view == viewBudget {
		a.drafts.SaveBudget(a.budget.store.Snapshot())
	}
	a.saver.Flush()
	if batch, ok := a.recorder.TakeBatch(); ok {
		return a, tea.Sequence(sendKeystrokesCmd(a.api, batch), tea.Quit)
	}
	return a, tea.Quit
}

// finishLogin routes a fresh profile to the wizard or the budget form.
func (a *App) finishLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	a.login.pending = false
	if msg.err != nil {
		a.errText = msg.err.Error()
		return a, nil
	}

	a.profile = msg.profile
	a.errText = ""
	a.drafts.SaveSession(client.Session{UserID: msg.profile.ID, UserName: msg.profile.Name})

	if !a.profile.AwarenessCompleted {
		return a.enterWizard(false)
	}
	return a.enterBudget()
}

// finishRestore resumes a remembered session. A vanished profile
// invalidates the session and drops back to the login prompt.
func (a *App) finishRestore(msg profileFetchedMsg) (tea.Model, tea.Cmd) {
	a.login.pending = false
	if msg.err != nil {
		var apiErr *client.APIError
		if errors.As(msg.err, &apiErr) && apiErr.StatusCode == 404 {
			a.drafts.ClearSession()
			a.errText = "Session expired, sign in again"
		} else {
			a.errText = msg.err.Error()
		}
		return a, nil
	}

	a.profile = msg.profile
	a.errText = ""
	if !a.profile.AwarenessCompleted {
		return a.enterWizard(false)
	}
	return a.enterBudget()
}

// enterWizard builds the wizard state from the stored answers. locked
// replays a completed wizard read-only.
func (a *App) enterWizard(locked bool) (tea.Model, tea.Cmd) {
	var profile wizard.Profile
	if len(a.profile.AwarenessData) > 0 {
		// A malformed blob restarts the wizard from scratch.
		json.Unmarshal(a.profile.AwarenessData, &profile)
	} else if !locked {
		// Resume a questionnaire abandoned before it reached the
		// server.
		if draft, ok := a.drafts.LoadAwareness(); ok {
			profile = draft
		}
	}
	if profile.UserName == "" {
		profile.UserName = a.profile.Name
	}

	a.wiz = newWizardState(wizard.NewMachine(profile, locked))
	a.view = viewWizard
	a.recorder.SetContext(a.profile.ID, "wizard")
	return a, a.wiz.input.Cursor.BlinkCmd()
}

// enterBudget loads the month to edit: the server's copy of the last
// selected month when present, the local draft otherwise.
func (a *App) enterBudget() (tea.Model, tea.Cmd) {
	a.budget = newBudgetState()

	loaded := false
	if month := a.profile.LastSelectedMonth; month != "" {
		if snapshot, ok := a.profile.BudgetForMonth(month); ok {
			a.budget.store.Load(snapshot)
			loaded = true
		}
	}
	if !loaded {
		if snapshot, ok := a.drafts.LoadBudget(); ok {
			a.budget.store.Load(snapshot)
		}
	}

	a.budget.rebuildRows()
	a.view = viewBudget
	a.recorder.SetContext(a.profile.ID, "budget")
	return a, nil
}

// awarenessChanged mirrors the questionnaire answers to the local
// draft after every wizard mutation.
func (a *App) awarenessChanged() {
	a.drafts.SaveAwareness(a.wiz.machine.Profile())
}

// budgetChanged runs after every form mutation: draft to disk, save
// over the wire through the debounced queue.
func (a *App) budgetChanged() {
	snapshot := a.budget.store.Snapshot()
	a.drafts.SaveBudget(snapshot)
	a.saver.Schedule(a.profile.ID, snapshot)
}

// recordKey buffers a typing event and flushes a full batch.
func (a *App) recordKey(key, inputValue, fieldName string) tea.Cmd {
	a.recorder.Record(key, inputValue, fieldName)
	if !a.recorder.Full() {
		return nil
	}
	if batch, ok := a.recorder.TakeBatch(); ok {
		return sendKeystrokesCmd(a.api, batch)
	}
	return nil
}

func waitForSave(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-sub }
}

func loginCmd(api *client.Client, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		profile, err := api.Login(ctx, name)
		return loginDoneMsg{profile: profile, err: err}
	}
}

func fetchProfileCmd(api *client.Client, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		profile, err := api.GetProfile(ctx, userID)
		return profileFetchedMsg{profile: profile, err: err}
	}
}

func saveAwarenessCmd(api *client.Client, userID string, profile wizard.Profile, stay bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := api.SaveAwareness(ctx, userID, profile, profile.Completed)
		return awarenessSavedMsg{profile: profile, stay: stay, err: err}
	}
}

func snapshotCmd(api *client.Client, monthLabel string, income, expenses, remaining float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		result, err := api.CreateSnapshot(ctx, monthLabel, income, expenses, remaining)
		return snapshotDoneMsg{result: result, err: err}
	}
}

func sendKeystrokesCmd(api *client.Client, batch storage.KeystrokeLog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return keystrokesSentMsg{err: api.SendKeystrokes(ctx, batch)}
	}
}
