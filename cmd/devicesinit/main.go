// Command devicesinit creates the devices database user and collections.
//
// It is run once against a fresh server. A second run fails at the user
// step with the server's duplicate-user error; use --check_only to report
// what already exists.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/devicehub/internal/app/provisioner"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		return 2
	}
	defer func() { _ = logger.Sync() }()

	coreCfg, cfg, err := provisioner.LoadConfig(logger)
	if err != nil {
		logger.Error("load config failed", zap.Error(err))
		return 2
	}
	if coreCfg.Env != "prod" {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	if err := provisioner.ValidateConfig(coreCfg, cfg, logger); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 2
	}

	timeouts.ConfigureFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := provisioner.Run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("provisioning failed", zap.Error(err))
		return 1
	}
	return 0
}
