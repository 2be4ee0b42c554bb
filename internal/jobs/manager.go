// Package jobs runs scheduled maintenance work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarhub/internal/pkg/metrics"
)

// jobTimeout bounds a single run of any job
const jobTimeout = 4 * time.Minute

// Job is one unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Manager schedules jobs on a cron and records their outcome
type Manager struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewManager creates a Manager. Overlapping runs of the same job are skipped.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// Register adds a job under a cron schedule such as "@every 1h" or "0 3 * * *"
func (m *Manager) Register(schedule string, job Job) error {
	_, err := m.cron.AddFunc(schedule, func() { m.runOnce(job) })
	if err != nil {
		return err
	}
	m.logger.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("Job registered")
	return nil
}

func (m *Manager) runOnce(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(ctx)
	metrics.RecordJobRun(job.Name(), err == nil)

	if err != nil {
		m.logger.Error().Err(err).Str("job", job.Name()).Dur("took", time.Since(start)).Msg("Job failed")
		return
	}
	m.logger.Debug().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("Job completed")
}

// Start begins running scheduled jobs in the background
func (m *Manager) Start() {
	m.cron.Start()
	m.logger.Info().Int("jobs", len(m.cron.Entries())).Msg("Job scheduler started")
}

// Stop prevents new runs and waits for running jobs to finish
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	m.logger.Info().Msg("Job scheduler stopped")
}
