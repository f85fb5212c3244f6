package entity

import "time"

// Employee is a collaborator who may file reimbursement requests. The
// directory is consulted for display enrichment (name, registration number)
// after lifecycle operations commit.
type Employee struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	Email              string    `json:"email"`
	Department         string    `json:"department,omitempty"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
