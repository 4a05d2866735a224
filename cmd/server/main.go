package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"liquidity/internal/cli"
	"liquidity/internal/core"
	apphttp "liquidity/internal/http"
	"liquidity/internal/log"
	"liquidity/internal/scheduler"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting liquidity server", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	backend := cli.InitBackend(context.Background(), logger, cfg)
	engine := cli.NewEngine(logger, cfg, backend)

	// Bring every active template up to the horizon before serving.
	topUp := scheduler.NewTopUpJob(engine, cfg.GenerationTimeout, logger)
	if err := topUp.Run(context.Background()); err != nil {
		logger.Warn("Startup top-up incomplete", log.FieldError, err)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, engine, apphttp.Options{
		Logger:            logger,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		TrustedProxies:    cfg.TrustedProxies,
		GenerateRateLimit: cfg.GenerateRateLimit,
		Ready: func(ctx context.Context) error {
			_, err := backend.Store.Templates().ListByStatus(ctx, core.TemplateActive)
			return err
		},
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
