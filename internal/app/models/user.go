package models

// UserAccount defines the credential record based on the 'user_account' table
type UserAccount struct {
	ID           int64  `json:"id" db:"user_id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	StudentID    *int64 `json:"studentId,omitempty" db:"student_id"`

	// Populated from the linked student row when present
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Email         *string `json:"email,omitempty"`
	StudentNumber *string `json:"studentNumber,omitempty"`
}
