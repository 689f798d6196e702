package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Releaser frees slots whose assignment has ended.
type Releaser interface {
	ReleaseExpiredAssignments(ctx context.Context) (int, error)
}

// StartReleaseWorker schedules the release job. The returned stop function waits for a running job.
func StartReleaseWorker(schedule string, releaser Releaser, logger *zap.Logger) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := releaser.ReleaseExpiredAssignments(ctx); err != nil {
			logger.Error("release job failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("release worker scheduled", zap.String("schedule", schedule))

	return func() {
		<-c.Stop().Done()
	}, nil
}
