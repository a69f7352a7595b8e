package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AvailabilityAuditor recomputes book availability from the loan table and
// repairs any drift, returning the number of repaired books.
type AvailabilityAuditor interface {
	AuditAvailability() (int, error)
}

// AvailabilityAuditTask verifies that every book's availability flag matches
// the absence of open loans against it.
type AvailabilityAuditTask struct{}

// Config returns the queue configuration for availability audit tasks.
func (t AvailabilityAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "availability_audit",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// AvailabilityAuditProcessor creates a processor function for AvailabilityAuditTask.
func AvailabilityAuditProcessor(auditor AvailabilityAuditor) backlite.QueueProcessor[AvailabilityAuditTask] {
	return func(ctx context.Context, task AvailabilityAuditTask) error {
		if auditor == nil {
			return fmt.Errorf("availability auditor not configured")
		}

		repaired, err := auditor.AuditAvailability()
		if err != nil {
			return fmt.Errorf("availability audit: %w", err)
		}

		if repaired > 0 {
			log.Printf("[TASK] Availability audit repaired %d books", repaired)
		} else {
			log.Printf("[TASK] Availability audit found no drift")
		}
		return nil
	}
}

// NewAvailabilityAuditQueue creates a backlite queue for availability audits.
func NewAvailabilityAuditQueue(auditor AvailabilityAuditor) backlite.Queue {
	return backlite.NewQueue(AvailabilityAuditProcessor(auditor))
}
