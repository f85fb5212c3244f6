package workflow

import (
	"fmt"
	"sort"
)

// Machine tracks a current state and validates transitions against a fixed
// transition table. It carries no persistence concerns; callers rebuild a
// machine from the stored status for every operation.
type Machine struct {
	current     State
	transitions map[State]map[Trigger]State
}

// Builder assembles the transition table for a Machine.
type Builder struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates an empty transition-table builder.
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger]State)}
}

// Permit allows trigger to move from state to target. Configuring an invalid
// state is a programming error and panics.
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	if b.transitions[from] == nil {
		b.transitions[from] = make(map[Trigger]State)
	}
	b.transitions[from][trigger] = to
	return b
}

// Build creates a Machine positioned at initial.
func (b *Builder) Build(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initial)
	}
	return &Machine{current: initial, transitions: b.transitions}, nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current state.
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := m.transitions[m.current][trigger]
	return ok
}

// Peek returns the state the trigger would move to, without firing it.
func (m *Machine) Peek(trigger Trigger) (State, bool) {
	to, ok := m.transitions[m.current][trigger]
	return to, ok
}

// Fire executes the trigger, transitioning to the new state if permitted.
// On a disallowed trigger the state is left untouched.
func (m *Machine) Fire(trigger Trigger) error {
	to, ok := m.transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}

// PermittedTriggers returns the triggers that can fire in the current state,
// sorted for stable output.
func (m *Machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.transitions[m.current]))
	for trigger := range m.transitions[m.current] {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
