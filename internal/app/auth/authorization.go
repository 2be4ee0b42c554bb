package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

// ErrNotApplicationOwner is returned when a student touches another student's application
var ErrNotApplicationOwner = apperrors.NewForbiddenError("you don't have permission to access this application")

// Actor is the authenticated caller as described by its token claims
type Actor struct {
	UserID    int64
	Username  string
	Role      models.Role
	StudentID *int64
}

// IsAdmin reports whether the actor has the Admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// OwnsStudent reports whether the actor is the given student
func (a Actor) OwnsStudent(studentID int64) bool {
	return a.Role == models.RoleStudent && a.StudentID != nil && *a.StudentID == studentID
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	applicationRepo *repositories.ApplicationRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(applicationRepo *repositories.ApplicationRepository) *AuthorizationService {
	return &AuthorizationService{
		applicationRepo: applicationRepo,
	}
}

// AuthorizeApplication checks an already loaded application against the actor.
// Admins may access any application; students only their own.
func (s *AuthorizationService) AuthorizeApplication(actor Actor, app *models.Application) error {
	if actor.IsAdmin() || actor.OwnsStudent(app.StudentID) {
		return nil
	}
	logger.Warn().
		Int64("userID", actor.UserID).
		Int64("applicationID", app.ID).
		Msg("Application access denied")
	return ErrNotApplicationOwner
}

// EnsureApplicationAccess loads the application and validates the actor may access it
func (s *AuthorizationService) EnsureApplicationAccess(ctx context.Context, actor Actor, applicationID int64) (*models.Application, error) {
	app, err := s.applicationRepo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error loading application for authorization")
		return nil, fmt.Errorf("failed to check application access: %w", err)
	}

	if err := s.AuthorizeApplication(actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// AuthorizeSubmissionFile validates the actor may download an uploaded file
func (s *AuthorizationService) AuthorizeSubmissionFile(actor Actor, file *models.SubmissionFile) error {
	if actor.IsAdmin() || actor.OwnsStudent(file.StudentID) {
		return nil
	}
	return ErrNotApplicationOwner
}
