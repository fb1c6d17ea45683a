package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"NewsBrief/internal/app"
	"NewsBrief/internal/config"
	"NewsBrief/internal/logging"
)

func main() {
	schedule := flag.Bool("schedule", false, "run on the recurring morning/evening schedule instead of once")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application := app.New(cfg, logger)

	if !*schedule {
		if err := application.Run(ctx); err != nil {
			logger.Error("application stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.Start(ctx); err != nil {
		logger.Error("scheduler failed to start", "error", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if err := application.Stop(ctx); err != nil {
		logger.Error("scheduler failed to stop", "error", err)
		os.Exit(1)
	}
}
