// Package scheduler runs the periodic availability audit.
package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/tasks"
)

// AvailabilityAuditScheduler enqueues an availability audit task on a cron
// schedule. The task itself runs on the queue workers, so a slow audit never
// blocks the scheduler.
type AvailabilityAuditScheduler struct {
	taskClient *tasks.Client
	config     config.Audit

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewAvailabilityAuditScheduler creates a new scheduler instance.
func NewAvailabilityAuditScheduler(taskClient *tasks.Client, cfg config.Audit) *AvailabilityAuditScheduler {
	return &AvailabilityAuditScheduler{
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the audit is enabled.
func (s *AvailabilityAuditScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Availability audit scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.Enqueue(); err != nil {
			log.Printf("Availability audit scheduler: failed to enqueue: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Availability audit scheduler: started with schedule %q", s.config.Schedule)
	return nil
}

// Stop halts the scheduler. Already enqueued audits still run.
func (s *AvailabilityAuditScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.isRunning = false
	log.Printf("Availability audit scheduler: stopped")
}

// Enqueue submits an availability audit task immediately.
func (s *AvailabilityAuditScheduler) Enqueue() error {
	_, err := s.taskClient.Add(tasks.AvailabilityAuditTask{}).Save()
	return err
}
