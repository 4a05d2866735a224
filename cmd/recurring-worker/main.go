package main

import (
	"context"
	"os"
	"time"

	"liquidity/internal/cli"
	"liquidity/internal/log"
	"liquidity/internal/scheduler"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting recurring-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	backend := cli.InitBackend(context.Background(), logger, cfg)
	engine := cli.NewEngine(logger, cfg, backend)

	sched := scheduler.New(logger)
	topUp := scheduler.NewTopUpJob(engine, cfg.GenerationTimeout, logger)
	if err := sched.AddJob(cfg.RecurringSchedule, topUp); err != nil {
		logger.Error("Invalid recurring schedule", log.FieldError, err, log.FieldSchedule, cfg.RecurringSchedule)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		sched.Stop()
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Recurring top-up configured",
		log.FieldSchedule, cfg.RecurringSchedule,
		"horizon_months", cfg.HorizonMonths,
		"timeout", cfg.GenerationTimeout)

	if err := sched.RunNow(topUp); err != nil {
		logger.Error("Initial top-up failed", log.FieldError, err)
	}
	sched.Start()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
