package entity

import (
	"fmt"
	"time"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
)

// Status is the lifecycle status of a reimbursement request.
// Persisted and serialized by symbolic name, never by ordinal.
type Status string

const (
	StatusDraft                    Status = "DRAFT"
	StatusPendingFinancialApproval Status = "PENDING_FINANCIAL_APPROVAL"
	StatusApproved                 Status = "APPROVED"
	StatusRejected                 Status = "REJECTED"
	StatusPaid                     Status = "PAID"
	StatusCancelled                Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusDraft:                    true,
	StatusPendingFinancialApproval: true,
	StatusApproved:                 true,
	StatusRejected:                 true,
	StatusPaid:                     true,
	StatusCancelled:                true,
}

// IsValid returns true if the status is a known lifecycle status.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the symbolic name of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus maps a persisted symbol back to a Status. An unknown symbol is
// a data-integrity error, not a silent default.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrDataIntegrity, raw)
	}
	return s, nil
}

// Category classifies a claimed expense.
type Category string

const (
	CategoryMeals          Category = "MEALS"
	CategoryTransport      Category = "TRANSPORT"
	CategoryLodging        Category = "LODGING"
	CategoryFuel           Category = "FUEL"
	CategoryOfficeSupplies Category = "OFFICE_SUPPLIES"
	CategoryOther          Category = "OTHER"
)

var validCategories = map[Category]bool{
	CategoryMeals:          true,
	CategoryTransport:      true,
	CategoryLodging:        true,
	CategoryFuel:           true,
	CategoryOfficeSupplies: true,
	CategoryOther:          true,
}

// IsValid returns true if the category is a known expense category.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// String returns the symbolic name of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory maps a persisted symbol back to a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown category %q", apperrors.ErrDataIntegrity, raw)
	}
	return c, nil
}

// ReimbursementRequest is the aggregate root of the reimbursement lifecycle.
// Status moves forward only, through the transitions configured in the
// workflow package; terminal requests are never mutated again.
type ReimbursementRequest struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        Category   `json:"category"`
	RequestedAmount float64    `json:"requested_amount"`
	ApprovedAmount  *float64   `json:"approved_amount,omitempty"`
	ExpenseDate     time.Time  `json:"expense_date"`
	Status          Status     `json:"status"`
	ApproverID      string     `json:"approver_id,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovalNote    string     `json:"approval_note,omitempty"`
	PayerID         string     `json:"payer_id,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	PaymentNote     string     `json:"payment_note,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Capability predicates are computed from the current status, never stored.

// Editable returns true while the request can still be modified by its owner.
func (r *ReimbursementRequest) Editable() bool {
	return r.Status == StatusDraft
}

// Cancellable returns true while the request has not entered a terminal or
// paid path.
func (r *ReimbursementRequest) Cancellable() bool {
	return r.Status == StatusDraft || r.Status == StatusPendingFinancialApproval
}

// Approvable returns true while the request awaits a financial decision.
func (r *ReimbursementRequest) Approvable() bool {
	return r.Status == StatusPendingFinancialApproval
}

// Payable returns true once the request has been approved.
func (r *ReimbursementRequest) Payable() bool {
	return r.Status == StatusApproved
}
