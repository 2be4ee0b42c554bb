package services

// Services defined in this package:
// - AuthService: Handles student registration and login
// - ApplicationService: Handles the student side of the application lifecycle
// - ReviewService: Handles admin review, status decisions and evaluations
// - ScholarshipService: Handles the scholarship catalog
// - RequirementService: Handles requirement definitions
// - StudentService: Handles admin management of student records
// - DashboardService: Handles admin and student dashboards

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

// txFn runs against repositories bound to an open transaction
type txFn func(ctx context.Context, repos *repositories.Repositories) error

// runInTx executes fn inside one database transaction. Every repository call
// made through the repos passed to fn commits or rolls back together.
func runInTx(ctx context.Context, pool db.Pool, repos *repositories.Repositories, fn txFn) error {
	return db.WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, repos.WithTx(tx))
	})
}

// removeStoredFiles deletes files whose rows are already gone. Failures are
// logged and left for the orphan sweeper.
func removeStoredFiles(storage filestorage.FileStorage, paths []string) {
	for _, p := range paths {
		if err := storage.Delete(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to remove stored file")
		}
	}
}
