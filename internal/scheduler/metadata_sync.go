// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Enricher fills in missing catalog data from an external source.
type Enricher interface {
	EnrichMissingPublicationDates(ctx context.Context) (int, error)
}

// MetadataSyncScheduler periodically sweeps the catalog for books missing a
// publication date and backfills them from the external catalog.
type MetadataSyncScheduler struct {
	enricher Enricher
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMetadataSyncScheduler creates a new scheduler instance.
func NewMetadataSyncScheduler(enricher Enricher, schedule string) *MetadataSyncScheduler {
	return &MetadataSyncScheduler{
		enricher: enricher,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *MetadataSyncScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to schedule metadata sync job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Metadata sync scheduler: started with schedule %q", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *MetadataSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	log.Printf("Metadata sync scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *MetadataSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active.
func (s *MetadataSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *MetadataSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *MetadataSyncScheduler) runSync() {
	log.Printf("Metadata sync: starting sweep")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	updated, err := s.enricher.EnrichMissingPublicationDates(ctx)
	if err != nil {
		log.Printf("Metadata sync: failed after updating %d books: %v", updated, err)
		return
	}

	log.Printf("Metadata sync: updated %d books in %v",
		updated, time.Since(startTime).Round(time.Millisecond))
}
