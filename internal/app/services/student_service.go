package services

import (
	"context"
	"fmt"

	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

// StudentService defines the interface for admin student management
type StudentService interface {
	ListStudents(ctx context.Context) ([]*models.StudentSummary, error)
	GetStudentDetails(ctx context.Context, id int64) (*models.StudentDetail, error)
	UpdateStudent(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	pool  db.Pool
	repos *repositories.Repositories
}

// NewStudentService creates a new StudentService
func NewStudentService(pool db.Pool, repos *repositories.Repositories) StudentService {
	return &studentServiceImpl{pool: pool, repos: repos}
}

// ListStudents returns all students with their application counts
func (s *studentServiceImpl) ListStudents(ctx context.Context) ([]*models.StudentSummary, error) {
	students, err := s.repos.StudentRepository.ListStudentSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// GetStudentDetails returns a student's profile and applications
func (s *studentServiceImpl) GetStudentDetails(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.repos.StudentRepository.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applications, err := s.repos.ApplicationRepository.ListByStudent(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	return &models.StudentDetail{Student: student, Applications: applications}, nil
}

// UpdateStudent applies a partial profile update
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error) {
	if upd.YearLevel != nil && (*upd.YearLevel < 1 || *upd.YearLevel > 6) {
		return nil, apperrors.NewInvalidInputError("year level must be between 1 and 6")
	}
	return s.repos.StudentRepository.UpdateStudent(ctx, id, upd)
}

// DeleteStudent removes a student who never applied, along with their login
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		count, err := tx.ApplicationRepository.CountByStudent(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrStudentHasApplications
		}

		if _, err := tx.UserRepository.DeleteByStudentID(ctx, id); err != nil {
			return err
		}
		return tx.StudentRepository.DeleteStudent(ctx, id)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}
