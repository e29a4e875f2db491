// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartReconciliationSweep runs the periodic repair job: flush pending
// unlocks whose earlier store writes failed, then rebuild any stats cache row
// that disagrees with the unlock table. Evaluation itself stays event-driven;
// this sweep only retries and repairs.
func (s *EvaluationService) StartReconciliationSweep(ctx context.Context, interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			confirmed := s.Coordinator.FlushPending(ctx, time.Now().UTC())
			// A flushed unlock changes XP: rerun the pipeline for each
			// affected user so stats rows and snapshots pick it up.
			for userID, entries := range confirmed {
				log.Printf("🔁 Sweep confirmed %d pending unlock(s) for %s", len(entries), userID)
				if _, err := s.Recompute(ctx, userID); err != nil {
					log.Printf("[Sweep] recompute after flush failed for %s: %v", userID, err)
				}
			}

			if err := s.ReconcileStats(ctx); err != nil {
				log.Printf("[Sweep] stats reconciliation error: %v", err)
			}
		}),
	)

	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()
}
