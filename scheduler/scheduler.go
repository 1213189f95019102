// Package scheduler re-imports seminar agendas on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/seminarfed/importer"
	"github.com/pevans/seminarfed/seminars"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SeminarLister lists the seminars to import.
type SeminarLister interface {
	ListSeminars() ([]seminars.Seminar, error)
}

// Importer imports one seminar from its source. *importer.Runner
// implements it.
type Importer interface {
	ImportSeminar(ctx context.Context, seminarID uuid.UUID) importer.Result
}

// Summary counts the outcome of one pass over all seminars.
type Summary struct {
	Seminars  int            `json:"seminars"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Stats     importer.Stats `json:"stats"`
}

// ImportScheduler runs RunOnce on a cron schedule. Overlapping runs are
// skipped.
type ImportScheduler struct {
	seminars SeminarLister
	importer Importer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewImportScheduler creates a scheduler for the given standard cron
// expression (or descriptor such as "@hourly").
func NewImportScheduler(lister SeminarLister, im Importer, schedule string) *ImportScheduler {
	return &ImportScheduler{
		seminars: lister,
		importer: im,
		schedule: schedule,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
	}
}

// Start registers the import job and starts the cron loop. Cancelling ctx
// stops the scheduler.
func (s *ImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	var jobCtx context.Context
	jobCtx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(jobCtx); err != nil {
			log.Error().Err(err).Msg("scheduled import failed")
		}
	})
	if err != nil {
		s.cancelFunc()
		s.cancelFunc = nil
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.schedule).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("import scheduler started")

	go func() {
		<-jobCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for a running import to finish.
func (s *ImportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	done := s.cron.Stop()
	<-done.Done()

	s.cron.Remove(s.entryID)
	s.cancelFunc()
	s.cancelFunc = nil
	s.isRunning = false

	log.Info().Msg("import scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *ImportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next import will start, or nil when the
// scheduler is not running.
func (s *ImportScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// RunOnce imports every seminar that has a source URL, one after another.
// A failed seminar does not stop the pass. It returns an error only when
// the seminars can't be listed or ctx is cancelled.
func (s *ImportScheduler) RunOnce(ctx context.Context) (Summary, error) {
	var summary Summary

	list, err := s.seminars.ListSeminars()
	if err != nil {
		return summary, fmt.Errorf("failed to list seminars: %w", err)
	}

	for _, seminar := range list {
		if seminar.SourceURL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Seminars++
		result := s.importer.ImportSeminar(ctx, seminar.ID)
		if !result.Success {
			summary.Failed++
			log.Warn().
				Err(result.Err).
				Str("seminar", seminar.ID.String()).
				Str("name", seminar.Name).
				Msg("seminar import failed")
			continue
		}

		summary.Succeeded++
		summary.Stats.SectionsCreated += result.Stats.SectionsCreated
		summary.Stats.SectionsSkipped += result.Stats.SectionsSkipped
		summary.Stats.SectionsFailed += result.Stats.SectionsFailed
		summary.Stats.TopicsCreated += result.Stats.TopicsCreated
		summary.Stats.TopicsSkipped += result.Stats.TopicsSkipped
		summary.Stats.TopicsFailed += result.Stats.TopicsFailed
	}

	log.Info().
		Int("seminars", summary.Seminars).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("import pass finished")

	return summary, nil
}
