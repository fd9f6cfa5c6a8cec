package fsm

import (
	"context"
	"errors"
	"strconv"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"
)

// Compile-time check: Navigator implements intake.Navigator.
var _ intake.Navigator = (*Navigator)(nil)

// events converts intake.Transitions into looplab/fsm EventDesc format,
// grouping sources that share an event and destination.
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range intake.Transitions {
		k := key{event: string(t.Event), dst: t.Dst.String()}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], t.Src.String())
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Navigator implements intake.Navigator using looplab/fsm.
// looplab/fsm tracks its current state internally, so a short-lived machine
// is built per Apply call starting from the wizard's step.
type Navigator struct{}

// New creates a new FSM-backed wizard navigator.
func New() *Navigator {
	return &Navigator{}
}

// Apply runs event from current. The guard is installed as the machine's
// before-event callback and cancels the move when it fails.
func (n *Navigator) Apply(ctx context.Context, current intake.Step, event intake.StepEvent, guard intake.Guard) (intake.Step, error) {
	callbacks := loopfsm.Callbacks{}
	if guard != nil {
		callbacks["before_"+string(event)] = func(ctx context.Context, e *loopfsm.Event) {
			if err := guard(ctx); err != nil {
				e.Cancel(err)
			}
		}
	}
	machine := loopfsm.NewFSM(current.String(), events, callbacks)

	if err := machine.Event(ctx, string(event)); err != nil {
		var canceled loopfsm.CanceledError
		if errors.As(err, &canceled) && canceled.Err != nil {
			return current, canceled.Err
		}
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) {
			return current, &domain.StepError{
				Event:   string(event),
				Current: int(current),
			}
		}
		return current, err
	}

	return stepOf(machine.Current()), nil
}

func stepOf(state string) intake.Step {
	n, _ := strconv.Atoi(state)
	return intake.Step(n)
}
