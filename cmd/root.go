package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhilashdr/jobscout/internal/config"
)

const (
	app = "jobscout"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout harvests job postings from multiple sources, scores them against your profile and keeps the best matches",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database.url", "JOBSCOUT_DATABASE_URL"); err != nil {
		log.Fatalf("binding JOBSCOUT_DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("redis.url", "JOBSCOUT_REDIS_URL"); err != nil {
		log.Fatalf("binding JOBSCOUT_REDIS_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("email.password-file", "SMTP_PASSWORD_FILE"); err != nil {
		log.Fatalf("binding SMTP_PASSWORD_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// A missing config file is fine since every section has a default. A
	// present but unparseable one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
