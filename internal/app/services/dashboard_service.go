package services

import (
	"context"

	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
)

// RecentApplicationLimit caps the applications shown on a student dashboard
const RecentApplicationLimit = 5

// DashboardService defines the interface for dashboard figures
type DashboardService interface {
	AdminStats(ctx context.Context) (*models.DashboardStats, error)
	StudentDashboard(ctx context.Context, studentID int64) (*models.StudentDashboard, error)
}

type dashboardServiceImpl struct {
	repos *repositories.Repositories
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos *repositories.Repositories) DashboardService {
	return &dashboardServiceImpl{repos: repos}
}

// AdminStats returns the headline totals of the admin dashboard
func (s *dashboardServiceImpl) AdminStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	var err error

	if stats.TotalStudents, err = s.repos.StudentRepository.CountStudents(ctx); err != nil {
		return nil, err
	}
	if stats.TotalApplications, err = s.repos.ApplicationRepository.CountApplications(ctx, nil); err != nil {
		return nil, err
	}
	pending := models.StatusPending
	if stats.PendingApplications, err = s.repos.ApplicationRepository.CountApplications(ctx, &pending); err != nil {
		return nil, err
	}
	if stats.TotalScholarships, err = s.repos.ScholarshipRepository.CountScholarships(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// StudentDashboard returns status counts, recent applications and their
// requirement progress for one student
func (s *dashboardServiceImpl) StudentDashboard(ctx context.Context, studentID int64) (*models.StudentDashboard, error) {
	dashboard := &models.StudentDashboard{}
	var err error

	if dashboard.StatusCounts, err = s.repos.ApplicationRepository.StatusCountsByStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if dashboard.RecentApplications, err = s.repos.ApplicationRepository.ListByStudent(ctx, studentID, RecentApplicationLimit); err != nil {
		return nil, err
	}
	if dashboard.Requirements, err = s.repos.SubmissionRepository.ListProgressByStudent(ctx, studentID, RecentApplicationLimit); err != nil {
		return nil, err
	}
	return dashboard, nil
}
