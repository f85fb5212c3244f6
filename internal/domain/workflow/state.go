package workflow

// State is a lifecycle state of a reimbursement request.
type State string

const (
	StateDraft     State = "DRAFT"
	StatePending   State = "PENDING_FINANCIAL_APPROVAL"
	StateApproved  State = "APPROVED"
	StateRejected  State = "REJECTED"
	StatePaid      State = "PAID"
	StateCancelled State = "CANCELLED"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StatePending:   true,
	StateApproved:  true,
	StateRejected:  true,
	StatePaid:      true,
	StateCancelled: true,
}

var terminalStates = map[State]bool{
	StateRejected:  true,
	StatePaid:      true,
	StateCancelled: true,
}

// IsValid returns true if the state is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions are allowed from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the symbolic name of the state.
func (s State) String() string {
	return string(s)
}
