package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/logger"
	"github.com/abhilashdr/jobscout/internal/store"
)

const (
	PromptBack = "back"

	reviewListLimit = 20
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively review pending matches and mark the ones you applied to",
	Run: func(cmd *cobra.Command, _ []string) {
		review(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().Float64P("min-score", "m", 0, "only show jobs with at least this relevance score")
}

func review(cmd *cobra.Command) {
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

	minScore, _ := cmd.Flags().GetFloat64("min-score")
	if minScore == 0 {
		minScore = config.Scoring.MinRelevanceScore
	}

	gateway, err := store.New(ctx, config.Database.URL, logger)
	if err != nil {
		logger.Fatal("setting up storage", zap.Error(err))
	}
	defer gateway.Close()

	for {
		jobs, err := gateway.Query(ctx, store.Filters{
			MinScore:   minScore,
			NotApplied: true,
		}, reviewListLimit)
		if err != nil {
			logger.Fatal("querying pending jobs", zap.Error(err))
		}

		if len(jobs) == 0 {
			logger.Info("exiting", zap.String("reason", "no pending jobs to review"))
			return
		}

		items := make([]string, 0, len(jobs)+1)
		for _, p := range jobs {
			items = append(items, fmt.Sprintf("%d %s / %s / %.2f%% / %s",
				p.ID, p.Title, p.Company, p.RelevanceScore, p.Location,
			))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job you applied to and press ENTER",
			Items: append(items, PromptBack),
			Size:  reviewListLimit,
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if selected == PromptBack {
			return
		}

		id, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
		if err != nil {
			logger.Fatal("parsing selected job id", zap.Error(err))
		}

		resumePrompt := promptui.Prompt{
			Label:   "Resume version used",
			Default: "default",
		}
		resumeVersion, err := resumePrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := gateway.MarkApplied(ctx, id, resumeVersion); err != nil {
			logger.Fatal("marking job applied", zap.Error(err))
		}

		logger.Info("marked job as applied",
			zap.Int64("job_id", id),
			zap.String("resume_version", resumeVersion),
		)
	}
}
