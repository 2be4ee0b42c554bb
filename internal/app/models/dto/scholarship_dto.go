package dto

import "github.com/yigit/scholarhub/internal/app/models"

// CreateScholarshipRequest represents a new scholarship with its requirement set
type CreateScholarshipRequest struct {
	Name                string  `json:"name" binding:"required,max=200" example:"TESDA Grant"`
	Type                string  `json:"type" binding:"max=100" example:"Government"`
	Description         string  `json:"description"`
	Sponsor             string  `json:"sponsor" binding:"max=200" example:"TESDA"`
	EligibilityCriteria string  `json:"eligibilityCriteria"`
	RequirementIDs      []int64 `json:"requirementIds" binding:"omitempty,dive,gt=0"`
}

// ToModel converts the request to a scholarship model
func (r CreateScholarshipRequest) ToModel() models.Scholarship {
	return models.Scholarship{
		Name:                r.Name,
		Type:                r.Type,
		Description:         r.Description,
		Sponsor:             r.Sponsor,
		EligibilityCriteria: r.EligibilityCriteria,
	}
}

// UpdateScholarshipRequest is a partial scholarship update
type UpdateScholarshipRequest struct {
	Name                *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Type                *string  `json:"type" binding:"omitempty,max=100"`
	Description         *string  `json:"description"`
	Sponsor             *string  `json:"sponsor" binding:"omitempty,max=200"`
	EligibilityCriteria *string  `json:"eligibilityCriteria"`
	RequirementIDs      *[]int64 `json:"requirementIds"`
}

// ToModel converts the request to a scholarship update
func (r UpdateScholarshipRequest) ToModel() models.ScholarshipUpdate {
	return models.ScholarshipUpdate{
		Name:                r.Name,
		Type:                r.Type,
		Description:         r.Description,
		Sponsor:             r.Sponsor,
		EligibilityCriteria: r.EligibilityCriteria,
		RequirementIDs:      r.RequirementIDs,
	}
}

// CreateRequirementRequest represents a new requirement definition
type CreateRequirementRequest struct {
	Name        string `json:"name" binding:"required,max=200" example:"Form 138"`
	Description string `json:"description"`
}

// UpdateRequirementRequest is a partial requirement update
type UpdateRequirementRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}
