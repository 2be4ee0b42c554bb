package services

import (
	"context"
	"strings"

	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/cache"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

// RequirementService defines the interface for requirement definition operations
type RequirementService interface {
	ListRequirements(ctx context.Context) ([]*models.RequirementSummary, error)
	CreateRequirement(ctx context.Context, req models.Requirement) (*models.Requirement, error)
	UpdateRequirement(ctx context.Context, id int64, upd models.RequirementUpdate) (*models.Requirement, error)
	DeleteRequirement(ctx context.Context, id int64) error
}

// requirementServiceImpl implements RequirementService
type requirementServiceImpl struct {
	pool    db.Pool
	repos   *repositories.Repositories
	storage filestorage.FileStorage
	cache   cache.Cache
}

// NewRequirementService creates a new RequirementService
func NewRequirementService(pool db.Pool, repos *repositories.Repositories, storage filestorage.FileStorage, c cache.Cache) RequirementService {
	return &requirementServiceImpl{
		pool:    pool,
		repos:   repos,
		storage: storage,
		cache:   c,
	}
}

// ListRequirements returns every requirement with its usage count
func (s *requirementServiceImpl) ListRequirements(ctx context.Context) ([]*models.RequirementSummary, error) {
	return s.repos.RequirementRepository.ListRequirementSummaries(ctx)
}

// CreateRequirement inserts a requirement definition
func (s *requirementServiceImpl) CreateRequirement(ctx context.Context, req models.Requirement) (*models.Requirement, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperrors.NewInvalidInputError("requirement name is required")
	}

	if _, err := s.repos.RequirementRepository.CreateRequirement(ctx, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateRequirement applies a partial update to a requirement definition
func (s *requirementServiceImpl) UpdateRequirement(ctx context.Context, id int64, upd models.RequirementUpdate) (*models.Requirement, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, apperrors.NewInvalidInputError("requirement name cannot be empty")
	}

	req, err := s.repos.RequirementRepository.UpdateRequirement(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	invalidateScholarshipCache(ctx, s.cache)
	return req, nil
}

// DeleteRequirement removes a requirement from every scholarship together with
// the submissions made for it. It is refused while an unfinished application
// still depends on the requirement.
func (s *requirementServiceImpl) DeleteRequirement(ctx context.Context, id int64) error {
	var paths []string
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		if _, err := tx.RequirementRepository.GetRequirementByID(ctx, id); err != nil {
			return err
		}

		open, err := tx.RequirementRepository.HasOpenApplications(ctx, id)
		if err != nil {
			return err
		}
		if open {
			return apperrors.ErrRequirementInUse
		}

		if _, err := tx.RequirementRepository.DeleteLinks(ctx, id); err != nil {
			return err
		}
		if paths, err = tx.SubmissionRepository.ListFilePathsByRequirement(ctx, id); err != nil {
			return err
		}
		if _, err := tx.SubmissionRepository.DeleteByRequirement(ctx, id); err != nil {
			return err
		}
		return tx.RequirementRepository.DeleteRequirement(ctx, id)
	})
	if err != nil {
		return err
	}

	removeStoredFiles(s.storage, paths)
	invalidateScholarshipCache(ctx, s.cache)
	logger.Info().Int64("requirementID", id).Int("files", len(paths)).Msg("Requirement deleted")
	return nil
}
