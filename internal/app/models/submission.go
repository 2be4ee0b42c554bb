package models

import "time"

// SubmissionStatus is the state of one requirement within an application
type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "Not Submitted"
	SubmissionSubmitted    SubmissionStatus = "Submitted"
	SubmissionVerified     SubmissionStatus = "Verified"
	SubmissionRejected     SubmissionStatus = "Rejected"
)

// SubmittedRequirement defines one (application, requirement) row of the
// 'submitted_requirements' table
type SubmittedRequirement struct {
	ID            int64            `json:"id" db:"submission_id"`
	ApplicationID int64            `json:"applicationId" db:"application_id"`
	RequirementID int64            `json:"requirementId" db:"requirement_id"`
	Status        SubmissionStatus `json:"status" db:"status"`
	FileName      *string          `json:"fileName,omitempty" db:"file_name"`
	FilePath      *string          `json:"-" db:"file_path"`
	DateSubmitted *time.Time       `json:"dateSubmitted,omitempty" db:"date_submitted"`
}

// SubmissionDetail is a submission row joined with its requirement definition
type SubmissionDetail struct {
	SubmissionID    int64            `json:"submissionId"`
	RequirementID   int64            `json:"requirementId"`
	RequirementName string           `json:"requirementName"`
	Description     string           `json:"description"`
	Status          SubmissionStatus `json:"status"`
	FileName        *string          `json:"fileName,omitempty"`
	DateSubmitted   *time.Time       `json:"dateSubmitted,omitempty"`
}

// SubmissionFile locates a stored upload together with the owning student
type SubmissionFile struct {
	SubmissionID  int64
	ApplicationID int64
	StudentID     int64
	FileName      string
	FilePath      string
}

// UploadedFile is an uploaded requirement document held in memory
type UploadedFile struct {
	Name    string
	Size    int64
	Content []byte
}

// UploadResult acknowledges a stored requirement file
type UploadResult struct {
	ApplicationID int64            `json:"applicationId"`
	RequirementID int64            `json:"requirementId"`
	FileName      string           `json:"fileName"`
	MimeType      string           `json:"mimeType"`
	Status        SubmissionStatus `json:"status"`
	DateSubmitted time.Time        `json:"dateSubmitted"`
}
