// Package conversation implements the per-user search dialog: language,
// then salary band, then region. Transitions are pure functions that guard
// on the current step and either advance the session or ignore the event.
package conversation

import (
	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/vacancy/catalog"
)

// Step is the dialog position. Language selection has no step of its own:
// the language keyboard is shown from Idle and picking one starts the dialog.
type Step = state.State

const (
	StepIdle           Step = state.StateIdle
	StepAwaitingSalary Step = "awaiting_salary"
	StepAwaitingRegion Step = "awaiting_region"
)

// Selection collects the user's choices. Empty fields are unset.
type Selection struct {
	Language   string
	SalaryBand string
	Region     string
}

// Complete reports whether every field is set.
func (s Selection) Complete() bool {
	return s.Language != "" && s.SalaryBand != "" && s.Region != ""
}

// Session is one user's dialog progress.
type Session struct {
	Step      Step
	Selection Selection
}

// Idle reports whether no dialog is running.
func (s Session) Idle() bool {
	return s.Step == "" || s.Step == StepIdle
}

// Outcome tells the caller what a transition did.
type Outcome int

const (
	// Ignored means the event did not apply in the current step.
	Ignored Outcome = iota
	// Advanced means the dialog moved to its next step.
	Advanced
	// Completed means the selection is full and ready to query.
	Completed
	// Cancelled means an active dialog was dropped.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "ignored"
	}
}

// ChooseLanguage restarts the dialog from any step with a fresh selection.
func ChooseLanguage(_ Session, language string) (Session, Outcome) {
	if language == "" {
		return Session{Step: StepIdle}, Ignored
	}
	return Session{
		Step:      StepAwaitingSalary,
		Selection: Selection{Language: language},
	}, Advanced
}

// ChooseSalary records a salary band. It applies while waiting for the band
// or the region, so a repeated tap overwrites the previous band. Labels
// outside the catalog are ignored.
func ChooseSalary(s Session, cat *catalog.Catalog, label string) (Session, Outcome) {
	if s.Step != StepAwaitingSalary && s.Step != StepAwaitingRegion {
		return s, Ignored
	}
	if _, ok := cat.Band(label); !ok {
		return s, Ignored
	}
	s.Selection.SalaryBand = label
	s.Selection.Region = ""
	s.Step = StepAwaitingRegion
	return s, Advanced
}

// ChooseRegion finishes the dialog. The returned session carries the
// complete selection with the step reset to idle; the caller runs the
// query and drops the stored session.
func ChooseRegion(s Session, region string) (Session, Outcome) {
	if s.Step != StepAwaitingRegion || region == "" {
		return s, Ignored
	}
	s.Selection.Region = region
	if !s.Selection.Complete() {
		return s, Ignored
	}
	s.Step = StepIdle
	return s, Completed
}

// Cancel drops an active dialog. Cancelling while idle is a no-op.
func Cancel(s Session) (Session, Outcome) {
	if s.Idle() {
		return Session{Step: StepIdle}, Ignored
	}
	return Session{Step: StepIdle}, Cancelled
}
