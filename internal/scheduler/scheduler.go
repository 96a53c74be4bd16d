// Package scheduler runs the nightly maintenance jobs and the search
// index worker.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"drake-homes/internal/cleanup"
	"drake-homes/internal/config"
	"drake-homes/internal/database"
	"drake-homes/internal/search"
	"drake-homes/internal/upload"

	"github.com/robfig/cron/v3"
)

// SessionExpirySpec is how often idle upload sessions are swept
const SessionExpirySpec = "@every 5m"

// indexJobRetention is how long finished index jobs are kept
const indexJobRetention = 7 * 24 * time.Hour

// Scheduler handles scheduled maintenance tasks
type Scheduler struct {
	cron     *cron.Cron
	gdb      *database.GormDB
	cleanup  *cleanup.Service
	engine   search.Engine
	sessions *upload.Sessions
	config   *config.Config

	nightlyID cron.EntryID
	mu        sync.Mutex
	isRunning bool
	running   sync.Mutex // one maintenance run at a time
}

// NewScheduler creates a new scheduler. sessions may be nil.
func NewScheduler(gdb *database.GormDB, engine search.Engine, sessions *upload.Sessions, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location())),
		gdb:      gdb,
		cleanup:  cleanup.NewService(gdb.DB()),
		engine:   engine,
		sessions: sessions,
		config:   cfg,
	}
}

// AddFunc registers an extra periodic job, such as pruning the rate limiter
func (s *Scheduler) AddFunc(spec string, fn func()) error {
	_, err := s.cron.AddFunc(spec, fn)
	return err
}

// Start registers the jobs and starts the cron runner
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	if s.sessions != nil {
		if _, err := s.cron.AddFunc(SessionExpirySpec, func() { s.sessions.Expire() }); err != nil {
			return err
		}
	}

	if s.config.Cleanup.DailyRunEnabled {
		cronSpec := parseDailyRunTime(s.config.Cleanup.DailyRunTime)
		id, err := s.cron.AddFunc(cronSpec, func() {
			log.Println("Scheduler: Starting nightly maintenance...")
			if err := s.RunNightly(context.Background()); err != nil {
				log.Printf("Scheduler: Nightly maintenance failed: %v", err)
			} else {
				log.Println("Scheduler: Nightly maintenance completed successfully")
			}
		})
		if err != nil {
			return err
		}
		s.nightlyID = id
		log.Printf("Scheduler: Nightly run at %s (cron: %s)", s.config.Cleanup.DailyRunTime, cronSpec)
	} else {
		log.Println("Scheduler: Nightly run is disabled in configuration")
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with %d jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron runner and waits for a running job
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// RunNightly purges stale records, prunes finished index jobs and
// rebuilds the search indexes
func (s *Scheduler) RunNightly(ctx context.Context) error {
	result, err := s.RunCleanup(ctx, false)
	if err != nil {
		return err
	}
	log.Printf("Scheduler: Cleanup deleted %d of %d records", result.DeletedCount, result.TargetCount)

	pruned, err := s.gdb.PruneIndexJobs(ctx, time.Now().Add(-indexJobRetention))
	if err != nil {
		return fmt.Errorf("failed to prune index jobs: %w", err)
	}
	if pruned > 0 {
		log.Printf("Scheduler: Pruned %d finished index jobs", pruned)
	}

	if s.config.Cleanup.ReindexEnabled {
		return s.RunReindex(ctx)
	}
	return nil
}

// RunCleanup runs the purge with the configured retention (for manual trigger)
func (s *Scheduler) RunCleanup(ctx context.Context, dryRun bool) (*cleanup.CleanupResult, error) {
	return s.RunCleanupWith(ctx, s.CleanupConfig(dryRun))
}

// RunCleanupWith runs the purge with explicit settings. Runs never overlap.
func (s *Scheduler) RunCleanupWith(ctx context.Context, cfg cleanup.CleanupConfig) (*cleanup.CleanupResult, error) {
	s.running.Lock()
	defer s.running.Unlock()
	return s.cleanup.Run(ctx, cfg)
}

// RunReindex rebuilds every search index from the database
func (s *Scheduler) RunReindex(ctx context.Context) error {
	if _, disabled := s.engine.(search.Disabled); disabled {
		return search.ErrDisabled
	}
	if err := search.ReindexAll(ctx, s.gdb, s.engine); err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}
	return nil
}

// CleanupConfig maps the YAML settings onto a cleanup run
func (s *Scheduler) CleanupConfig(dryRun bool) cleanup.CleanupConfig {
	return cleanup.CleanupConfig{
		DraftRetentionDays:  s.config.Cleanup.DraftRetentionDays,
		ClosedRetentionDays: s.config.Cleanup.ClosedRetentionDays,
		MaxDeletionCount:    s.config.Cleanup.MaxDeletionCount,
		DryRun:              dryRun,
	}
}

// Cleanup exposes the service for stats and delete logs
func (s *Scheduler) Cleanup() *cleanup.Service {
	return s.cleanup
}

// NextRun returns when the nightly job fires next, zero if not scheduled
func (s *Scheduler) NextRun() time.Time {
	if s.nightlyID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.nightlyID).Next
}

// parseDailyRunTime converts HH:MM format to a cron specification.
// Example: "03:00" -> "0 3 * * *"
func parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}
