package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// settledSweeper evicts settled purchase attempts past their retention window.
type settledSweeper interface {
	SweepSettled() int
}

type Job struct {
	sweeper  settledSweeper
	interval time.Duration
	logger   *zap.Logger
}

func New(sweeper settledSweeper, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) Run() {
	if j.sweeper == nil {
		return
	}
	if evicted := j.sweeper.SweepSettled(); evicted > 0 {
		j.logger.Info("settled attempts evicted", zap.Int("evicted", evicted))
	}
}

// Start sweeps on the job interval until the context is cancelled.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run()
		}
	}
}
