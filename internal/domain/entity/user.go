package entity

import "time"

// User roles.
const (
	RoleEmployee = "EMPLOYEE"
	RoleFinance  = "FINANCE"
	RoleAdmin    = "ADMIN"
)

// User is an authenticated identity. Its ID is the acting actor recorded in
// the audit trail for approvals, payments and cancellations.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanDecide returns true if the user may approve, reject or pay requests.
func (u *User) CanDecide() bool {
	return u.Role == RoleFinance || u.Role == RoleAdmin
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
