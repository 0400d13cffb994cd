package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single harvest, score and notify cycle",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the one-shot command for the cli.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if !config.SourcesEnabled() {
		logger.Warn("all source families are disabled, the run will harvest nothing")
	}

	rt, err := newRuntime(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer rt.close()

	report, err := rt.runner.Run(ctx)
	if err != nil {
		logger.Fatal("pipeline run failed", zap.Error(err))
	}

	if report.Harvested == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs harvested"))
		return
	}

	logger.Info("run complete",
		zap.Int("harvested", report.Harvested),
		zap.Int("relevant", report.Relevant),
		zap.Int("saved", report.Saved),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("high_priority", report.HighPriority),
	)
}
