// Package jobs runs the scheduled background work: the daily quote refresh
// that keeps every stock's history current through yesterday.
package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/stockbucket/backend/internal/config"
	"github.com/stockbucket/backend/internal/service"
)

// Scheduler owns the cron instance and its registered jobs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.JobsConfig
	backfill *service.BackfillService
}

// NewScheduler creates a Scheduler with the quote-refresh job registered
// according to the configured schedule.
func NewScheduler(cfg config.JobsConfig, backfill *service.BackfillService) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		backfill: backfill,
	}

	if cfg.QuoteRefreshEnabled {
		if _, err := s.cron.AddFunc(cfg.QuoteRefreshSchedule, s.refreshQuotes); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins running the registered jobs in their own goroutines.
func (s *Scheduler) Start() {
	if s.cfg.QuoteRefreshEnabled {
		log.Printf("Scheduled quote refresh: %s", s.cfg.QuoteRefreshSchedule)
	}
	s.cron.Start()
}

// Stop cancels the schedule and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) refreshQuotes() {
	log.Println("Starting scheduled quote refresh")

	if err := s.backfill.FillMissingDays(); err != nil {
		log.Printf("Scheduled quote refresh failed: %v", err)
		return
	}

	log.Println("Scheduled quote refresh finished")
}
