// Package intake holds the five-step order configuration wizard: its typed
// actions, step-local validation and the derived account collection.
package intake

import (
	"context"
	"strconv"
)

// Step is a wizard page, numbered from 1.
type Step int

const (
	StepContact  Step = 1
	StepCompany  Step = 2
	StepDomains  Step = 3
	StepAccounts Step = 4
	StepReview   Step = 5
)

func (s Step) String() string { return strconv.Itoa(int(s)) }

// StepEvent moves the wizard between steps.
type StepEvent string

const (
	EventNext StepEvent = "next"
	EventBack StepEvent = "back"
)

// Transition describes one allowed move.
type Transition struct {
	Src   Step
	Event StepEvent
	Dst   Step
}

// Transitions is the linear step graph: forward one step, or back one step.
var Transitions = []Transition{
	{Src: StepContact, Event: EventNext, Dst: StepCompany},
	{Src: StepCompany, Event: EventNext, Dst: StepDomains},
	{Src: StepDomains, Event: EventNext, Dst: StepAccounts},
	{Src: StepAccounts, Event: EventNext, Dst: StepReview},
	{Src: StepCompany, Event: EventBack, Dst: StepContact},
	{Src: StepDomains, Event: EventBack, Dst: StepCompany},
	{Src: StepAccounts, Event: EventBack, Dst: StepDomains},
	{Src: StepReview, Event: EventBack, Dst: StepAccounts},
}

// Guard runs before a move. A non-nil error keeps the wizard where it is.
type Guard func(ctx context.Context) error

// Navigator applies step events. Implementations return a *domain.StepError
// for moves outside Transitions and the guard's error when it refuses.
type Navigator interface {
	Apply(ctx context.Context, current Step, event StepEvent, guard Guard) (Step, error)
}
