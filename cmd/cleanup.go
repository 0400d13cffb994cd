package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/logger"
	"github.com/abhilashdr/jobscout/internal/store"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stale low-scoring jobs that were never applied to",
	Run: func(cmd *cobra.Command, _ []string) {
		cleanup(cmd)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().Float64("max-score", store.DefaultCleanupMaxScore, "delete jobs scoring below this value")
	cleanupCmd.Flags().Int("min-age-days", 30, "delete jobs older than this many days")
}

func cleanup(cmd *cobra.Command) {
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

	maxScore, _ := cmd.Flags().GetFloat64("max-score")
	minAgeDays, _ := cmd.Flags().GetInt("min-age-days")

	gateway, err := store.New(ctx, config.Database.URL, logger)
	if err != nil {
		logger.Fatal("setting up storage", zap.Error(err))
	}
	defer gateway.Close()

	removed, err := gateway.Cleanup(ctx, maxScore, time.Duration(minAgeDays)*24*time.Hour)
	if err != nil {
		logger.Fatal("cleanup failed", zap.Error(err))
	}

	logger.Info("cleanup complete",
		zap.Int64("removed", removed),
		zap.Float64("max_score", maxScore),
		zap.Int("min_age_days", minAgeDays),
	)
}
