package wizard

// Step names a screen in the flow.
type Step string

const (
	StepIntro       Step = "intro"
	StepPrimary     Step = "primary"
	StepDeepDive    Step = "deepDive"
	StepExplanation Step = "explanation"
	StepDetails     Step = "details"
	StepInsights    Step = "insights"
)

const totalQuestions = 7 // 4 primary + 3 detail

// Machine drives the questionnaire. A completed or locked profile
// starts at the insights screen in read-only mode; every mutating
// method is a no-op while read-only.
type Machine struct {
	profile      Profile
	step         Step
	primaryIndex int
	detailIndex  int
	acknowledged bool
	locked       bool
}

// NewMachine builds a machine over an existing profile. locked forces
// read-only replay regardless of the completed flag.
func NewMachine(profile Profile, locked bool) *Machine {
	m := &Machine{profile: profile, step: StepIntro, locked: locked}
	if m.ReadOnly() {
		m.step = StepInsights
	}
	return m
}

// Step returns the current screen.
func (m *Machine) Step() Step { return m.step }

// Profile returns a copy of the current answers.
func (m *Machine) Profile() Profile { return m.profile }

// ReadOnly reports whether the flow is locked against edits.
func (m *Machine) ReadOnly() bool { return m.locked || m.profile.Completed }

// Acknowledged reports the explanation checkbox state.
func (m *Machine) Acknowledged() bool { return m.acknowledged }

// SetUserName stores the display name typed on the header field.
func (m *Machine) SetUserName(name string) {
	if m.ReadOnly() {
		return
	}
	m.profile.UserName = name
}

// CurrentQuestion returns the prompt for the active question screen.
func (m *Machine) CurrentQuestion() (Question, bool) {
	switch m.step {
	case StepPrimary:
		return PrimaryQuestions[m.primaryIndex], true
	case StepDetails:
		return DetailQuestions[m.detailIndex], true
	}
	return Question{}, false
}

// SetAnswer stores the value for the active question.
func (m *Machine) SetAnswer(value string) {
	if m.ReadOnly() {
		return
	}
	q, ok := m.CurrentQuestion()
	if !ok {
		return
	}
	if f := m.profile.field(q.Key); f != nil {
		*f = value
	}
}

// ChooseAware records the intro answer. Declining awareness completes
// the flow immediately with everything else left at defaults.
func (m *Machine) ChooseAware(aware bool) {
	if m.ReadOnly() || m.step != StepIntro {
		return
	}
	m.profile.IsAware = boolPtr(aware)
	if !aware {
		m.profile.Completed = true
		m.step = StepInsights
		return
	}
	m.step = StepPrimary
}

// ChooseDeepAware records the deep-dive answer. Declining routes
// through the explanation screen first.
func (m *Machine) ChooseDeepAware(aware bool) {
	if m.ReadOnly() || m.step != StepDeepDive {
		return
	}
	m.profile.DeepAware = boolPtr(aware)
	if aware {
		m.step = StepDetails
		return
	}
	m.acknowledged = false
	m.step = StepExplanation
}

// Acknowledge flips the explanation checkbox.
func (m *Machine) Acknowledge(ok bool) {
	if m.ReadOnly() || m.step != StepExplanation {
		return
	}
	m.acknowledged = ok
}

// ConfirmExplanation leaves the explanation screen; it does nothing
// until Acknowledge(true).
func (m *Machine) ConfirmExplanation() {
	if m.ReadOnly() || m.step != StepExplanation || !m.acknowledged {
		return
	}
	m.step = StepDetails
}

// Next advances past the active question. Skipping a question is the
// same call with no answer stored.
func (m *Machine) Next() {
	if m.ReadOnly() {
		return
	}
	switch m.step {
	case StepPrimary:
		if m.primaryIndex < len(PrimaryQuestions)-1 {
			m.primaryIndex++
		} else {
			m.step = StepDeepDive
		}
	case StepDetails:
		if m.detailIndex < len(DetailQuestions)-1 {
			m.detailIndex++
		} else {
			m.step = StepInsights
		}
	}
}

// Complete marks the profile finished from the insights screen and
// returns the final record for persistence.
func (m *Machine) Complete() Profile {
	if !m.ReadOnly() && m.step == StepInsights {
		m.profile.Completed = true
	}
	return m.profile
}

// Progress is a monotone fraction of the seven questions answered so
// far; the terminal screen reads 1.
func (m *Machine) Progress() float64 {
	switch m.step {
	case StepIntro:
		return 0
	case StepPrimary:
		return float64(m.primaryIndex) / totalQuestions
	case StepDeepDive, StepExplanation:
		return float64(len(PrimaryQuestions)) / totalQuestions
	case StepDetails:
		return float64(len(PrimaryQuestions)+m.detailIndex) / totalQuestions
	default:
		return 1
	}
}

// Insights derives the terminal report from the current answers.
func (m *Machine) Insights() Insights { return m.profile.Insights() }

// Reset discards all answers and restarts at the intro, clearing any
// lock. The display name survives the reset.
func (m *Machine) Reset() {
	name := m.profile.UserName
	m.profile = Profile{UserName: name}
	m.step = StepIntro
	m.primaryIndex = 0
	m.detailIndex = 0
	m.acknowledged = false
	m.locked = false
}
