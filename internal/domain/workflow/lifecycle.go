package workflow

// ForStatus builds the reimbursement lifecycle machine positioned at the
// given status. The transition table is the single source of truth for legal
// status movement:
//
//	DRAFT    --SUBMIT--> PENDING_FINANCIAL_APPROVAL
//	DRAFT    --CANCEL--> CANCELLED
//	PENDING  --APPROVE-> APPROVED
//	PENDING  --REJECT--> REJECTED
//	PENDING  --CANCEL--> CANCELLED
//	APPROVED --PAY-----> PAID
//
// REJECTED, PAID and CANCELLED are terminal.
func ForStatus(status State) (*Machine, error) {
	builder := NewBuilder().
		Permit(StateDraft, TriggerSubmit, StatePending).
		Permit(StateDraft, TriggerCancel, StateCancelled).
		Permit(StatePending, TriggerApprove, StateApproved).
		Permit(StatePending, TriggerReject, StateRejected).
		Permit(StatePending, TriggerCancel, StateCancelled).
		Permit(StateApproved, TriggerPay, StatePaid)

	return builder.Build(status)
}
