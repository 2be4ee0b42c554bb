package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/scholarhub/internal/app/auth"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
	"github.com/yigit/scholarhub/internal/pkg/logger"
	"github.com/yigit/scholarhub/internal/pkg/metrics"
)

// ReviewService defines the admin side of the application lifecycle
type ReviewService interface {
	ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.ApplicationListItem, int64, error)
	GetApplicationDetails(ctx context.Context, applicationID int64) (*models.ApplicationDetail, error)
	UpdateApplicationStatus(ctx context.Context, applicationID int64, status, remarks string) (*models.Application, error)
	DeleteApplication(ctx context.Context, applicationID int64) error
	CreateEvaluation(ctx context.Context, actor auth.Actor, evaluation models.Evaluation) (*models.Evaluation, error)
	ListEvaluations(ctx context.Context, applicationID int64) ([]*models.Evaluation, error)
	UpdateEvaluation(ctx context.Context, evaluationID int64, score *float64, comments *string) (*models.Evaluation, error)
}

// reviewServiceImpl implements ReviewService
type reviewServiceImpl struct {
	pool     db.Pool
	repos    *repositories.Repositories
	storage  filestorage.FileStorage
	notifier *Notifier
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	pool db.Pool,
	repos *repositories.Repositories,
	storage filestorage.FileStorage,
	notifier *Notifier,
) ReviewService {
	return &reviewServiceImpl{
		pool:     pool,
		repos:    repos,
		storage:  storage,
		notifier: notifier,
	}
}

// ListApplications returns one page of applications matching the filter
func (s *reviewServiceImpl) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.ApplicationListItem, int64, error) {
	items, total, err := s.repos.ApplicationRepository.ListApplications(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	return items, total, nil
}

// GetApplicationDetails returns the full review view of an application
func (s *reviewServiceImpl) GetApplicationDetails(ctx context.Context, applicationID int64) (*models.ApplicationDetail, error) {
	detail, err := s.repos.ApplicationRepository.GetApplicationView(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if detail.Requirements, err = s.repos.SubmissionRepository.ListDetailsByApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	if detail.Evaluations, err = s.repos.EvaluationRepository.ListByApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateApplicationStatus records a review decision. Requirements are not
// rechecked; the application row is locked while the transition is validated.
func (s *reviewServiceImpl) UpdateApplicationStatus(ctx context.Context, applicationID int64, status, remarks string) (*models.Application, error) {
	next, ok := models.ParseApplicationStatus(strings.TrimSpace(status))
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("invalid status %q", status))
	}
	if next == models.StatusDraft {
		return nil, apperrors.NewInvalidInputError("applications cannot be returned to Draft")
	}

	var previous models.ApplicationStatus
	var updated *models.Application
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		app, err := tx.ApplicationRepository.GetApplicationForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !app.Status.CanReviewTo(next) {
			return reviewConflict(app.Status, next)
		}
		previous = app.Status

		updated, err = tx.ApplicationRepository.UpdateStatus(ctx, applicationID, next, remarks)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(string(previous), string(next))
	if previous != next {
		s.notifier.StatusChanged(applicationID)
	}

	logger.Info().
		Int64("applicationID", applicationID).
		Str("from", string(previous)).
		Str("to", string(next)).
		Msg("Application status updated")
	return updated, nil
}

// DeleteApplication removes an application with its evaluations and
// submissions. Uploaded files are deleted after the rows are gone.
func (s *reviewServiceImpl) DeleteApplication(ctx context.Context, applicationID int64) error {
	var paths []string
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		if _, err := tx.EvaluationRepository.DeleteByApplication(ctx, applicationID); err != nil {
			return err
		}

		var err error
		if paths, err = tx.SubmissionRepository.ListFilePathsByApplication(ctx, applicationID); err != nil {
			return err
		}
		if _, err := tx.SubmissionRepository.DeleteByApplication(ctx, applicationID); err != nil {
			return err
		}
		return tx.ApplicationRepository.DeleteApplication(ctx, applicationID)
	})
	if err != nil {
		return err
	}

	removeStoredFiles(s.storage, paths)
	logger.Info().Int64("applicationID", applicationID).Int("files", len(paths)).Msg("Application deleted")
	return nil
}

// CreateEvaluation appends an evaluation. The evaluator defaults to the
// reviewing admin's username.
func (s *reviewServiceImpl) CreateEvaluation(ctx context.Context, actor auth.Actor, evaluation models.Evaluation) (*models.Evaluation, error) {
	if evaluation.ApplicationID <= 0 {
		return nil, apperrors.NewInvalidInputError("application is required")
	}
	evaluation.EvaluatorName = strings.TrimSpace(evaluation.EvaluatorName)
	if evaluation.EvaluatorName == "" {
		evaluation.EvaluatorName = actor.Username
	}

	if _, err := s.repos.EvaluationRepository.CreateEvaluation(ctx, &evaluation); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// ListEvaluations returns an application's evaluations, newest first
func (s *reviewServiceImpl) ListEvaluations(ctx context.Context, applicationID int64) ([]*models.Evaluation, error) {
	return s.repos.EvaluationRepository.ListByApplication(ctx, applicationID)
}

// UpdateEvaluation changes the score or comments of an evaluation
func (s *reviewServiceImpl) UpdateEvaluation(ctx context.Context, evaluationID int64, score *float64, comments *string) (*models.Evaluation, error) {
	return s.repos.EvaluationRepository.UpdateEvaluation(ctx, evaluationID, score, comments)
}

// reviewConflict explains why an admin cannot move an application from current to next
func reviewConflict(current, next models.ApplicationStatus) error {
	switch {
	case current.IsTerminal():
		return apperrors.NewConflictError(fmt.Sprintf("application is already %s and can no longer change status", current))
	case current == models.StatusDraft:
		return apperrors.NewConflictError("draft applications must be submitted before review")
	default:
		return apperrors.NewConflictError(fmt.Sprintf("cannot change status from %s to %s", current, next))
	}
}
