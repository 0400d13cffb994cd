package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/dashboard"
	"github.com/abhilashdr/jobscout/internal/logger"
	"github.com/abhilashdr/jobscout/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the dashboard API until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command) {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobscout in serve mode", zap.String("version", version))

	rt, err := newRuntime(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer rt.close()

	sched := scheduler.New(rt.runner, config.Schedule.IntervalHours, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("starting the scheduler", zap.Error(err))
	}
	defer sched.Stop()

	server := dashboard.NewServer(config.Server.Addr, rt.gateway, rt.runner, rt.matcher, logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("dashboard server failed", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "shutdown signal received"))
}
