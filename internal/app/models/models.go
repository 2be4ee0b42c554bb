package models

// Role is the role stored on a user account and carried in access tokens
type Role string

const (
	RoleStudent Role = "Student"
	RoleAdmin   Role = "Admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Remarks written by the application lifecycle
const (
	RemarksApplicationStarted   = "Application started"
	RemarksApplicationSubmitted = "Application submitted for review"
)
