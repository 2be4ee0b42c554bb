package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yigit/scholarhub/internal/app/auth"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
	"github.com/yigit/scholarhub/internal/pkg/logger"
	"github.com/yigit/scholarhub/internal/pkg/metrics"
)

const maxFileNameLength = 255

// ErrRequirementNotInScholarship is returned when an upload targets a requirement
// the application's scholarship does not ask for
var ErrRequirementNotInScholarship = apperrors.NewInvalidInputError("requirement is not part of this application's scholarship")

// ApplicationService defines the student side of the application lifecycle
type ApplicationService interface {
	CreateApplication(ctx context.Context, studentID, scholarshipID int64) (*models.Application, error)
	UploadRequirementFile(ctx context.Context, actor auth.Actor, applicationID, requirementID int64, file models.UploadedFile) (*models.UploadResult, error)
	SubmitApplication(ctx context.Context, actor auth.Actor, applicationID int64) (*models.Application, error)
	GetApplicationDetails(ctx context.Context, actor auth.Actor, applicationID int64) (*models.ApplicationDetail, error)
	OpenSubmissionFile(ctx context.Context, actor auth.Actor, submissionID int64) (*models.SubmissionFile, string, error)
}

// applicationServiceImpl implements ApplicationService
type applicationServiceImpl struct {
	pool           db.Pool
	repos          *repositories.Repositories
	storage        filestorage.FileStorage
	authzService   *auth.AuthorizationService
	notifier       *Notifier
	maxUploadBytes int64
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	pool db.Pool,
	repos *repositories.Repositories,
	storage filestorage.FileStorage,
	authzService *auth.AuthorizationService,
	notifier *Notifier,
	maxUploadBytes int64,
) ApplicationService {
	return &applicationServiceImpl{
		pool:           pool,
		repos:          repos,
		storage:        storage,
		authzService:   authzService,
		notifier:       notifier,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateApplication starts a Draft application with one Not Submitted row per
// scholarship requirement. Nothing is persisted unless every step succeeds.
func (s *applicationServiceImpl) CreateApplication(ctx context.Context, studentID, scholarshipID int64) (*models.Application, error) {
	if studentID <= 0 || scholarshipID <= 0 {
		return nil, apperrors.NewInvalidInputError("student and scholarship are required")
	}

	app := &models.Application{
		StudentID:     studentID,
		ScholarshipID: scholarshipID,
		Status:        models.StatusDraft,
		Remarks:       models.RemarksApplicationStarted,
	}

	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		exists, err := tx.ScholarshipRepository.Exists(ctx, scholarshipID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrScholarshipNotFound
		}

		active, err := tx.ApplicationRepository.HasActiveApplication(ctx, studentID, scholarshipID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.ErrDuplicateActiveApplication
		}

		if _, err := tx.ApplicationRepository.CreateApplication(ctx, app); err != nil {
			return err
		}

		requirements, err := tx.RequirementRepository.ListByScholarship(ctx, scholarshipID)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(requirements))
		for _, req := range requirements {
			ids = append(ids, req.ID)
		}
		_, err = tx.SubmissionRepository.CreatePlaceholders(ctx, app.ID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("applicationID", app.ID).
		Int64("studentID", studentID).
		Int64("scholarshipID", scholarshipID).
		Msg("Application created")
	return app, nil
}

// UploadRequirementFile validates and stores a requirement document, then marks
// the requirement Submitted. The stored file is removed again if the database
// update fails, and a replaced file is removed once the update commits.
func (s *applicationServiceImpl) UploadRequirementFile(
	ctx context.Context,
	actor auth.Actor,
	applicationID, requirementID int64,
	file models.UploadedFile,
) (*models.UploadResult, error) {
	mimeType, err := filestorage.ValidateRequirementUpload(file.Content, s.maxUploadBytes)
	if err != nil {
		metrics.RecordUpload("rejected")
		return nil, err
	}

	if _, err := s.authzService.EnsureApplicationAccess(ctx, actor, applicationID); err != nil {
		return nil, err
	}

	required, err := s.repos.RequirementRepository.IsRequiredForApplication(ctx, applicationID, requirementID)
	if err != nil {
		return nil, err
	}
	if !required {
		metrics.RecordUpload("rejected")
		return nil, ErrRequirementNotInScholarship
	}

	displayName := sanitizeFileName(file.Name)
	storedPath, err := s.storage.Store(file.Content, displayName)
	if err != nil {
		metrics.RecordUpload("failed")
		return nil, fmt.Errorf("failed to store requirement file: %w", err)
	}

	submission := &models.SubmittedRequirement{
		ApplicationID: applicationID,
		RequirementID: requirementID,
		Status:        models.SubmissionSubmitted,
		FileName:      &displayName,
		FilePath:      &storedPath,
	}

	var replacedPath string
	err = runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		existing, err := tx.SubmissionRepository.GetForUpdate(ctx, applicationID, requirementID)
		switch {
		case err == nil:
			if existing.FilePath != nil {
				replacedPath = *existing.FilePath
			}
		case errors.Is(err, apperrors.ErrSubmissionNotFound):
		default:
			return err
		}

		if err := tx.SubmissionRepository.UpsertSubmission(ctx, submission); err != nil {
			return err
		}
		return tx.ApplicationRepository.TouchDateApplied(ctx, applicationID)
	})
	if err != nil {
		if delErr := s.storage.Delete(storedPath); delErr != nil {
			logger.Warn().Err(delErr).Str("path", storedPath).Msg("Failed to remove file of failed upload")
		}
		metrics.RecordUpload("failed")
		return nil, err
	}

	if replacedPath != "" && replacedPath != storedPath {
		removeStoredFiles(s.storage, []string{replacedPath})
	}
	metrics.RecordUpload("stored")

	logger.Info().
		Int64("applicationID", applicationID).
		Int64("requirementID", requirementID).
		Str("mimeType", mimeType).
		Msg("Requirement file uploaded")

	result := &models.UploadResult{
		ApplicationID: applicationID,
		RequirementID: requirementID,
		FileName:      displayName,
		MimeType:      mimeType,
		Status:        submission.Status,
	}
	if submission.DateSubmitted != nil {
		result.DateSubmitted = *submission.DateSubmitted
	}
	return result, nil
}

// SubmitApplication moves a Draft application to Pending once every required
// document has been uploaded. The application row stays locked while the
// requirements are checked so a concurrent submit cannot slip through.
func (s *applicationServiceImpl) SubmitApplication(ctx context.Context, actor auth.Actor, applicationID int64) (*models.Application, error) {
	var submitted *models.Application

	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		app, err := tx.ApplicationRepository.GetApplicationForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := s.authzService.AuthorizeApplication(actor, app); err != nil {
			return err
		}
		if !app.Status.CanSubmit() {
			return apperrors.NewConflictError(fmt.Sprintf("application is %s and cannot be submitted", app.Status))
		}

		missing, err := tx.SubmissionRepository.ListMissingRequirementNames(ctx, applicationID)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperrors.NewIncompleteSubmissionError(missing)
		}

		submitted, err = tx.ApplicationRepository.MarkSubmitted(ctx, applicationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(string(models.StatusDraft), string(submitted.Status))
	s.notifier.ApplicationSubmitted(submitted.ID)

	logger.Info().Int64("applicationID", applicationID).Msg("Application submitted")
	return submitted, nil
}

// GetApplicationDetails returns the application with its requirement checklist.
// Evaluations are only included for admins.
func (s *applicationServiceImpl) GetApplicationDetails(ctx context.Context, actor auth.Actor, applicationID int64) (*models.ApplicationDetail, error) {
	detail, err := s.repos.ApplicationRepository.GetApplicationView(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.AuthorizeApplication(actor, detail.Application); err != nil {
		return nil, err
	}

	detail.Requirements, err = s.repos.SubmissionRepository.ListDetailsByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		detail.Evaluations, err = s.repos.EvaluationRepository.ListByApplication(ctx, applicationID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// OpenSubmissionFile resolves an uploaded document to its location on disk
func (s *applicationServiceImpl) OpenSubmissionFile(ctx context.Context, actor auth.Actor, submissionID int64) (*models.SubmissionFile, string, error) {
	file, err := s.repos.SubmissionRepository.GetSubmissionFile(ctx, submissionID)
	if err != nil {
		return nil, "", err
	}
	if err := s.authzService.AuthorizeSubmissionFile(actor, file); err != nil {
		return nil, "", err
	}

	fullPath, err := s.storage.FullPath(file.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("invalid stored path for submission %d: %w", submissionID, err)
	}
	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperrors.NewResourceNotFoundError("uploaded file is no longer available")
		}
		return nil, "", fmt.Errorf("failed to stat uploaded file: %w", err)
	}
	return file, fullPath, nil
}

// sanitizeFileName keeps the base name of a client supplied file name
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	if len(name) > maxFileNameLength {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		// cut on a rune boundary so the stored name stays valid UTF-8
		cut := maxFileNameLength - len(ext)
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}
	return name
}
