package models

// Requirement defines a reusable document definition based on the 'requirements' table
type Requirement struct {
	ID          int64  `json:"id" db:"requirement_id" example:"1"`
	Name        string `json:"name" db:"requirement_name" example:"Form 138"`
	Description string `json:"description" db:"description"`
}

// RequirementUpdate carries a partial requirement change
type RequirementUpdate struct {
	Name        *string
	Description *string
}

// RequirementSummary is a requirement row in the admin listing
type RequirementSummary struct {
	Requirement
	ScholarshipCount int64 `json:"scholarshipCount"`
}
