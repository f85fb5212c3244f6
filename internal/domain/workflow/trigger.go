package workflow

// Trigger is an operation that can cause a state transition.
type Trigger string

const (
	TriggerSubmit  Trigger = "SUBMIT"
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
	TriggerPay     Trigger = "PAY"
	TriggerCancel  Trigger = "CANCEL"
)

// String returns the symbolic name of the trigger.
func (t Trigger) String() string {
	return string(t)
}
