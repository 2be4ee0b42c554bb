package models

// DashboardStats holds the admin dashboard counters
type DashboardStats struct {
	TotalStudents       int64 `json:"totalStudents"`
	TotalApplications   int64 `json:"totalApplications"`
	PendingApplications int64 `json:"pendingApplications"`
	TotalScholarships   int64 `json:"totalScholarships"`
}

// RequirementProgress is one requirement of one of the student's applications
type RequirementProgress struct {
	ApplicationID   int64            `json:"applicationId"`
	ScholarshipName string           `json:"scholarshipName"`
	RequirementID   int64            `json:"requirementId"`
	RequirementName string           `json:"requirementName"`
	Status          SubmissionStatus `json:"status"`
}

// StudentDashboard summarizes a student's applications
type StudentDashboard struct {
	StatusCounts       map[ApplicationStatus]int64 `json:"statusCounts"`
	RecentApplications []*ApplicationListItem      `json:"recentApplications"`
	Requirements       []*RequirementProgress      `json:"requirements"`
}
