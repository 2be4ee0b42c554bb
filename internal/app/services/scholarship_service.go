package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/cache"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

const (
	catalogCacheKey        = "scholarships:catalog"
	scholarshipCachePrefix = "scholarships:"
)

func scholarshipDetailKey(id int64) string {
	return fmt.Sprintf("scholarships:detail:%d", id)
}

// ScholarshipService defines the interface for scholarship catalog operations
type ScholarshipService interface {
	ListCatalog(ctx context.Context) ([]*models.Scholarship, error)
	GetScholarshipDetails(ctx context.Context, id int64) (*models.ScholarshipDetail, error)
	ListSummaries(ctx context.Context) ([]*models.ScholarshipSummary, error)
	CreateScholarship(ctx context.Context, scholarship models.Scholarship, requirementIDs []int64) (*models.ScholarshipDetail, error)
	UpdateScholarship(ctx context.Context, id int64, upd models.ScholarshipUpdate) (*models.ScholarshipDetail, error)
	DeleteScholarship(ctx context.Context, id int64) error
}

// scholarshipServiceImpl implements ScholarshipService
type scholarshipServiceImpl struct {
	pool  db.Pool
	repos *repositories.Repositories
	cache cache.Cache
	ttl   time.Duration
}

// NewScholarshipService creates a new ScholarshipService. Catalog reads are
// served from c for ttl; pass cache.NoopCache to disable caching.
func NewScholarshipService(pool db.Pool, repos *repositories.Repositories, c cache.Cache, ttl time.Duration) ScholarshipService {
	return &scholarshipServiceImpl{
		pool:  pool,
		repos: repos,
		cache: c,
		ttl:   ttl,
	}
}

// ListCatalog returns every scholarship ordered by name
func (s *scholarshipServiceImpl) ListCatalog(ctx context.Context) ([]*models.Scholarship, error) {
	var catalog []*models.Scholarship
	if s.readCache(ctx, catalogCacheKey, &catalog) {
		return catalog, nil
	}

	catalog, err := s.repos.ScholarshipRepository.ListScholarships(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing scholarships: %w", err)
	}
	s.writeCache(ctx, catalogCacheKey, catalog)
	return catalog, nil
}

// GetScholarshipDetails returns a scholarship with its requirements
func (s *scholarshipServiceImpl) GetScholarshipDetails(ctx context.Context, id int64) (*models.ScholarshipDetail, error) {
	key := scholarshipDetailKey(id)
	detail := &models.ScholarshipDetail{}
	if s.readCache(ctx, key, detail) {
		return detail, nil
	}

	detail, err := s.loadDetail(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, detail)
	return detail, nil
}

// ListSummaries returns every scholarship with application and requirement counts
func (s *scholarshipServiceImpl) ListSummaries(ctx context.Context) ([]*models.ScholarshipSummary, error) {
	return s.repos.ScholarshipRepository.ListScholarshipSummaries(ctx)
}

// CreateScholarship inserts a scholarship and links its requirements
func (s *scholarshipServiceImpl) CreateScholarship(ctx context.Context, scholarship models.Scholarship, requirementIDs []int64) (*models.ScholarshipDetail, error) {
	scholarship.Name = strings.TrimSpace(scholarship.Name)
	if scholarship.Name == "" {
		return nil, apperrors.NewInvalidInputError("scholarship name is required")
	}

	var detail *models.ScholarshipDetail
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		id, err := tx.ScholarshipRepository.CreateScholarship(ctx, &scholarship)
		if err != nil {
			return err
		}
		if err := tx.ScholarshipRepository.LinkRequirements(ctx, id, requirementIDs); err != nil {
			return err
		}
		detail, err = s.loadDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, detail.Scholarship.ID)
	logger.Info().Int64("scholarshipID", detail.Scholarship.ID).Str("name", scholarship.Name).Msg("Scholarship created")
	return detail, nil
}

// UpdateScholarship applies a partial update. A non-nil RequirementIDs
// replaces the whole requirement set; existing applications keep their rows.
func (s *scholarshipServiceImpl) UpdateScholarship(ctx context.Context, id int64, upd models.ScholarshipUpdate) (*models.ScholarshipDetail, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, apperrors.NewInvalidInputError("scholarship name cannot be empty")
	}

	var detail *models.ScholarshipDetail
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		if _, err := tx.ScholarshipRepository.UpdateScholarship(ctx, id, upd); err != nil {
			return err
		}
		if upd.RequirementIDs != nil {
			if err := tx.ScholarshipRepository.ReplaceRequirements(ctx, id, *upd.RequirementIDs); err != nil {
				return err
			}
		}
		var err error
		detail, err = s.loadDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return detail, nil
}

// DeleteScholarship deletes a scholarship nobody has applied to
func (s *scholarshipServiceImpl) DeleteScholarship(ctx context.Context, id int64) error {
	err := runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		count, err := tx.ApplicationRepository.CountByScholarship(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrScholarshipHasApplications
		}
		return tx.ScholarshipRepository.DeleteScholarship(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	logger.Info().Int64("scholarshipID", id).Msg("Scholarship deleted")
	return nil
}

func (s *scholarshipServiceImpl) loadDetail(ctx context.Context, repos *repositories.Repositories, id int64) (*models.ScholarshipDetail, error) {
	scholarship, err := repos.ScholarshipRepository.GetScholarshipByID(ctx, id)
	if err != nil {
		return nil, err
	}
	requirements, err := repos.RequirementRepository.ListByScholarship(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ScholarshipDetail{Scholarship: scholarship, Requirements: requirements}, nil
}

func (s *scholarshipServiceImpl) readCache(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.GetJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrNotFound) {
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	return false
}

func (s *scholarshipServiceImpl) writeCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *scholarshipServiceImpl) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, catalogCacheKey, scholarshipDetailKey(id)); err != nil {
		logger.Warn().Err(err).Int64("scholarshipID", id).Msg("Cache invalidation failed")
	}
}

// invalidateScholarshipCache drops every cached catalog entry. Requirement
// changes can affect any scholarship detail.
func invalidateScholarshipCache(ctx context.Context, c cache.Cache) {
	if err := c.DeletePattern(ctx, scholarshipCachePrefix+"*"); err != nil {
		logger.Warn().Err(err).Msg("Cache invalidation failed")
	}
}
