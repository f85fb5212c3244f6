package entity

import "time"

// StatusHistoryEntry is one row of the append-only audit trail of a
// reimbursement request. Exactly one entry is written per successful
// transition, in the same commit as the transition itself; entries are never
// mutated or deleted afterwards.
type StatusHistoryEntry struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"request_id"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	ChangedAt      time.Time `json:"changed_at"`
	ActorID        string    `json:"actor_id"`
	ActorName      string    `json:"actor_name,omitempty"`
	Note           string    `json:"note,omitempty"`
}
