package models

// Scholarship defines the aid program model based on the 'scholarship' table
type Scholarship struct {
	ID                  int64  `json:"id" db:"scholarship_id" example:"1"`
	Name                string `json:"name" db:"scholarship_name" example:"TESDA Grant"`
	Type                string `json:"type" db:"type" example:"Government"`
	Description         string `json:"description" db:"description"`
	Sponsor             string `json:"sponsor" db:"sponsor" example:"TESDA"`
	EligibilityCriteria string `json:"eligibilityCriteria" db:"eligibility_criteria"`
}

// ScholarshipUpdate carries a partial scholarship change. Nil fields keep their
// stored value. A non-nil RequirementIDs replaces the linked requirement set.
type ScholarshipUpdate struct {
	Name                *string
	Type                *string
	Description         *string
	Sponsor             *string
	EligibilityCriteria *string
	RequirementIDs      *[]int64
}

// ScholarshipSummary is a scholarship row in the admin listing
type ScholarshipSummary struct {
	Scholarship
	ApplicationCount int64 `json:"applicationCount"`
	RequirementCount int64 `json:"requirementCount"`
}

// ScholarshipDetail is a scholarship with the requirements an application must satisfy
type ScholarshipDetail struct {
	Scholarship  *Scholarship   `json:"scholarship"`
	Requirements []*Requirement `json:"requirements"`
}
