package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
	"github.com/yigit/scholarhub/internal/pkg/metrics"
)

// PathLister returns every file path still referenced by the database
type PathLister interface {
	ListAllFilePaths(ctx context.Context) ([]string, error)
}

// OrphanUploadSweeper deletes stored files that no submission references.
// Files younger than the grace period are left alone so that an upload whose
// transaction has not committed yet is never removed.
type OrphanUploadSweeper struct {
	storage filestorage.FileStorage
	paths   PathLister
	grace   time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewOrphanUploadSweeper creates an OrphanUploadSweeper
func NewOrphanUploadSweeper(storage filestorage.FileStorage, paths PathLister, grace time.Duration, logger zerolog.Logger) *OrphanUploadSweeper {
	return &OrphanUploadSweeper{
		storage: storage,
		paths:   paths,
		grace:   grace,
		logger:  logger,
		now:     time.Now,
	}
}

// Name implements Job
func (s *OrphanUploadSweeper) Name() string { return "orphan_upload_sweep" }

// Run implements Job
func (s *OrphanUploadSweeper) Run(ctx context.Context) error {
	files, err := s.storage.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	referenced, err := s.paths.ListAllFilePaths(ctx)
	if err != nil {
		return fmt.Errorf("failed to load referenced file paths: %w", err)
	}
	known := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		known[p] = struct{}{}
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, f := range files {
		if _, ok := known[f.Path]; ok || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.storage.Delete(f.Path); err != nil {
			s.logger.Warn().Err(err).Str("path", f.Path).Msg("Failed to delete orphaned upload")
			continue
		}
		removed++
	}

	metrics.RecordSweep(removed)
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("scanned", len(files)).Msg("Orphaned uploads removed")
	}
	return nil
}
