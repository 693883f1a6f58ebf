// services/scheduler.go
package services

import (
	"context"
	"time"

	"review-trophy-service/models"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Review requests loaded per page during a backfill pass.
const backfillBatchSize = 500

// BackfillTrophies recomputes trophies for recent review requests that have
// none yet, repairing computations that failed part way. The window is paged
// by id so non-qualifying review requests never hide later ones. It returns
// the number of trophies created.
func (s *TrophyService) BackfillTrophies(ctx context.Context, window time.Duration) (int, error) {
	since := time.Now().Add(-window)
	lastID := int64(minNeatNumberID - 1)
	created := 0

	for {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		var page []models.ReviewRequest
		err := s.DB.WithContext(ctx).
			Preload("Submitter").
			Where("created_at >= ? AND id > ?", since, lastID).
			Where("NOT EXISTS (SELECT 1 FROM trophies WHERE trophies.review_request_id = review_requests.id)").
			Order("id ASC").
			Limit(backfillBatchSize).
			Find(&page).Error
		if err != nil {
			return created, err
		}

		for i := range page {
			rr := &page[i]
			if len(s.Registry.Qualifying(rr.ID)) == 0 {
				continue
			}
			awarded, err := s.ComputeTrophies(ctx, rr, &rr.Submitter)
			created += len(awarded)
			if err != nil {
				s.Log.Warn("[Scheduler] trophy backfill failed",
					zap.Int64("review_request_id", rr.ID), zap.Error(err))
			}
		}

		if len(page) < backfillBatchSize {
			return created, nil
		}
		lastID = page[len(page)-1].ID
	}
}

// StartBackfillScheduler runs BackfillTrophies every interval until the
// returned scheduler is shut down.
func (s *TrophyService) StartBackfillScheduler(interval, window time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			created, err := s.BackfillTrophies(ctx, window)
			if err != nil {
				s.Log.Error("[Scheduler] DB error", zap.Error(err))
				return
			}
			if created > 0 {
				s.Log.Info("✅ Backfilled trophies", zap.Int("created", created))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
