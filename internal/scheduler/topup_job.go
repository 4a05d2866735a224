package scheduler

import (
	"context"
	"time"

	"liquidity/internal/log"
	"liquidity/internal/services"
)

// TopUpRunner is the part of the engine the maintenance job drives.
type TopUpRunner interface {
	TopUp(ctx context.Context) (*services.TopUpSummary, error)
}

// TopUpJob extends every active template's occurrences to the horizon.
type TopUpJob struct {
	engine  TopUpRunner
	timeout time.Duration
	log     *log.Logger
}

// NewTopUpJob bounds each run by timeout; zero means no bound.
func NewTopUpJob(engine TopUpRunner, timeout time.Duration, logger *log.Logger) *TopUpJob {
	return &TopUpJob{
		engine:  engine,
		timeout: timeout,
		log:     logger.WithComponent(log.ComponentWorker),
	}
}

// Name implements Job.
func (j *TopUpJob) Name() string {
	return "recurring_top_up"
}

// Run implements Job.
func (j *TopUpJob) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := j.engine.TopUp(ctx)
	if summary != nil {
		j.log.Info("Top-up finished",
			log.FieldOperation, log.OpTopUp,
			"templates", summary.Templates,
			log.FieldGenerated, summary.Generated,
			log.FieldTruncated, len(summary.Truncated),
			"failed", len(summary.Failed),
			log.FieldDuration, time.Since(start).Milliseconds())
	}
	return err
}
