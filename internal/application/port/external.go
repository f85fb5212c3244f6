package port

import "context"

// DirectoryEntry is the display projection of a collaborator.
type DirectoryEntry struct {
	Name               string
	RegistrationNumber string
}

// EmployeeDirectory resolves a collaborator id to display fields. Lookups are
// best-effort enrichment: a failed or empty lookup must never abort the
// operation that requested it.
type EmployeeDirectory interface {
	Lookup(ctx context.Context, employeeID string) (*DirectoryEntry, error)
}

// ActorDirectory resolves an acting user id to a display name for the audit
// trail. Same best-effort contract as EmployeeDirectory.
type ActorDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}
