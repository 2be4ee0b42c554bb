package models

import "time"

// Student defines the student model based on the 'student' table
type Student struct {
	ID            int64      `json:"id" db:"student_id" example:"1"`
	StudentNumber string     `json:"studentNumber" db:"student_number" example:"STU-2025-4821"`
	FirstName     string     `json:"firstName" db:"first_name" example:"Maria"`
	LastName      string     `json:"lastName" db:"last_name" example:"Santos"`
	Gender        *string    `json:"gender,omitempty" db:"gender" example:"Female"`
	Birthdate     *time.Time `json:"birthdate,omitempty" db:"birthdate"`
	Program       string     `json:"program" db:"program" example:"BS Information Technology"`
	YearLevel     int        `json:"yearLevel" db:"year_level" example:"2"`
	ContactNumber *string    `json:"contactNumber,omitempty" db:"contact_number" example:"09171234567"`
	Email         string     `json:"email" db:"email_address" example:"maria.santos@example.edu"`
}

// StudentUpdate carries the fields an admin may change. Nil fields are left untouched.
type StudentUpdate struct {
	FirstName     *string
	LastName      *string
	Gender        *string
	Birthdate     *time.Time
	Program       *string
	YearLevel     *int
	ContactNumber *string
	Email         *string
}

// IsEmpty reports whether the update changes nothing
func (u StudentUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Gender == nil && u.Birthdate == nil &&
		u.Program == nil && u.YearLevel == nil && u.ContactNumber == nil && u.Email == nil
}

// StudentSummary is a student row in the admin listing
type StudentSummary struct {
	Student
	ApplicationCount int64 `json:"applicationCount"`
}

// StudentDetail is a student with all of their applications
type StudentDetail struct {
	Student      *Student               `json:"student"`
	Applications []*ApplicationListItem `json:"applications"`
}
