package entity

import "time"

// Report statuses. A report is created PENDING, claimed by the worker as
// PROCESSING and finished as CONCLUDED or ERROR.
const (
	ReportStatusPending    = "PENDING"
	ReportStatusProcessing = "PROCESSING"
	ReportStatusConcluded  = "CONCLUDED"
	ReportStatusError      = "ERROR"
)

// Report types.
const (
	ReportTypeRequestsExcel = "REQUESTS_EXCEL"
)

// Report is an asynchronously generated export of reimbursement requests.
// Concluded reports expire after a retention window and are removed by the
// idempotent purge operation.
type Report struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	FilterJSON   string     `json:"filter,omitempty"`
	FilePath     string     `json:"file_path,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RequestedBy  string     `json:"requested_by"`
	CreatedAt    time.Time  `json:"created_at"`
	ConcludedAt  *time.Time `json:"concluded_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Expired returns true once the report has passed its retention window.
func (r *Report) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}
