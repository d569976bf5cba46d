package wizard

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Wizard events.
const (
	EventAdvance = "advance"
	EventBack    = "back"
)

// stepContext carries the gate callback into statekit guards.
type stepContext struct {
	Gate func(from Step) bool
}

// sid converts a wizard step to a statekit state id.
func sid(s Step) statekit.StateID {
	return statekit.StateID(s)
}

// StepStateMachine enforces the wizard's step order. The gate callback is
// consulted on forward transitions only; back navigation is always
// allowed except from the first step.
type StepStateMachine struct {
	interpreter *statekit.Interpreter[stepContext]
}

// NewStepStateMachine builds the machine positioned at the given step.
// A nil gate allows every forward transition.
func NewStepStateMachine(current Step, gate func(from Step) bool) (*StepStateMachine, error) {
	if !current.IsValid() {
		return nil, fmt.Errorf("unknown wizard step: %s", current)
	}
	if gate == nil {
		gate = func(Step) bool { return true }
	}

	// The guard reads the interpreter's live state, so a machine walked
	// several steps consults the gate with the step it is leaving, not
	// the step it was built at.
	sm := &StepStateMachine{}

	builder := statekit.NewMachine[stepContext]("import-wizard").
		WithInitial(sid(current)).
		WithContext(stepContext{Gate: gate}).
		WithGuard("stepGate", func(ctx stepContext, e statekit.Event) bool {
			return ctx.Gate(sm.Current())
		})

	builder.State(sid(StepUpload)).
		On(EventAdvance).Target(sid(StepValidate)).Guard("stepGate").
		Done()

	builder.State(sid(StepValidate)).
		On(EventAdvance).Target(sid(StepAggregate)).Guard("stepGate").
		On(EventBack).Target(sid(StepUpload)).
		Done()

	builder.State(sid(StepAggregate)).
		On(EventAdvance).Target(sid(StepResolve)).Guard("stepGate").
		On(EventBack).Target(sid(StepValidate)).
		Done()

	builder.State(sid(StepResolve)).
		On(EventAdvance).Target(sid(StepPreview)).Guard("stepGate").
		On(EventBack).Target(sid(StepAggregate)).
		Done()

	builder.State(sid(StepPreview)).
		On(EventBack).Target(sid(StepResolve)).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build wizard state machine: %w", err)
	}

	sm.interpreter = statekit.NewInterpreter(machine)
	sm.interpreter.Start()

	return sm, nil
}

// Transition attempts to apply an event and returns the resulting step.
// The step is unchanged and an error returned when the event is invalid
// for the current step or the gate refused it.
func (sm *StepStateMachine) Transition(event string) (Step, error) {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before == after {
		return before, fmt.Errorf("cannot %s from the %s step", event, before)
	}
	return after, nil
}

// Current returns the machine's current step.
func (sm *StepStateMachine) Current() Step {
	return Step(sm.interpreter.State().Value)
}

// nextStep computes the step an event would lead to from a given step,
// applying the gate. Shared by the session's pure transition functions.
func nextStep(from Step, event string, gate func(Step) bool) (Step, error) {
	sm, err := NewStepStateMachine(from, gate)
	if err != nil {
		return from, err
	}
	return sm.Transition(event)
}
