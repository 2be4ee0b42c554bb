package dto

// CreateApplicationRequest starts a draft application for the calling student
type CreateApplicationRequest struct {
	ScholarshipID int64 `json:"scholarshipId" binding:"required,gt=0" example:"1"`
}

// UpdateApplicationStatusRequest is an admin decision on an application
type UpdateApplicationStatusRequest struct {
	Status  string `json:"status" binding:"required" example:"Approved"`
	Remarks string `json:"remarks" binding:"max=1000" example:"Meets criteria"`
}

// CreateEvaluationRequest appends an evaluation to an application
type CreateEvaluationRequest struct {
	ApplicationID int64    `json:"applicationId" binding:"required,gt=0" example:"7"`
	EvaluatorName string   `json:"evaluatorName" binding:"max=150" example:"Dr. Reyes"`
	Score         *float64 `json:"score" example:"92.5"`
	Comments      string   `json:"comments" binding:"max=2000"`
}

// UpdateEvaluationRequest edits the score or comments of an evaluation
type UpdateEvaluationRequest struct {
	Score    *float64 `json:"score"`
	Comments *string  `json:"comments" binding:"omitempty,max=2000"`
}
