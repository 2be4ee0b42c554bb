package models

import "time"

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "Draft"
	StatusPending     ApplicationStatus = "Pending"
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusApproved    ApplicationStatus = "Approved"
	StatusRejected    ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists every recognized status in lifecycle order
var ApplicationStatuses = []ApplicationStatus{
	StatusDraft, StatusPending, StatusUnderReview, StatusApproved, StatusRejected,
}

// ActiveStatuses are the states in which a student may hold only one
// application per scholarship.
var ActiveStatuses = []ApplicationStatus{StatusDraft, StatusPending}

// reviewTransitions holds the admin decisions allowed from each open state.
// Draft only leaves through submission. Approved and Rejected are terminal.
var reviewTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:     {StatusPending, StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusPending, StatusUnderReview, StatusApproved, StatusRejected},
}

// ParseApplicationStatus matches s against the recognized statuses
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	for _, status := range ApplicationStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// CanSubmit reports whether a student may submit an application in this state
func (s ApplicationStatus) CanSubmit() bool {
	return s == StatusDraft
}

// CanReviewTo reports whether an admin may move an application from s to next
func (s ApplicationStatus) CanReviewTo(next ApplicationStatus) bool {
	for _, allowed := range reviewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application defines the central workflow entity based on the 'application' table
type Application struct {
	ID            int64             `json:"id" db:"application_id" example:"7"`
	StudentID     int64             `json:"studentId" db:"student_id" example:"1"`
	ScholarshipID int64             `json:"scholarshipId" db:"scholarship_id" example:"1"`
	Status        ApplicationStatus `json:"status" db:"status" example:"Draft"`
	Remarks       string            `json:"remarks" db:"remarks" example:"Application started"`
	DateApplied   time.Time         `json:"dateApplied" db:"date_applied"`
}

// ApplicationListItem is an application joined with the names shown in listings
type ApplicationListItem struct {
	Application
	ScholarshipName string `json:"scholarshipName"`
	StudentName     string `json:"studentName,omitempty"`
	StudentNumber   string `json:"studentNumber,omitempty"`
}

// ApplicationFilter narrows the admin application listing
type ApplicationFilter struct {
	Status        *ApplicationStatus
	ScholarshipID *int64
	Offset        uint64
	Limit         int
}

// ApplicationDetail is a full application view: owner, scholarship,
// submission rows and, for reviewers, evaluations.
type ApplicationDetail struct {
	Application  *Application        `json:"application"`
	Student      *Student            `json:"student,omitempty"`
	Scholarship  *Scholarship        `json:"scholarship"`
	Requirements []*SubmissionDetail `json:"requirements"`
	Evaluations  []*Evaluation       `json:"evaluations,omitempty"`
}
