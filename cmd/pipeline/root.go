package main

import (
	"log"
	"os"

	"resume-pathways/internal/app"
	"resume-pathways/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = log.New(os.Stdout, "", log.LstdFlags)

var rootCmd = &cobra.Command{
	Use:           "pipeline",
	Short:         "Operator batch pipeline for job posting ingestion, enrichment and embedding",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		viper.AutomaticEnv()
		return viper.BindPFlags(rootCmd.PersistentFlags())
	}

	rootCmd.PersistentFlags().Int64("thread", 0, "Hacker News thread id (defaults to HN_THREAD_ID)")
	rootCmd.PersistentFlags().Int("limit", 0, "batch size limit (defaults to PIPELINE_BATCH_LIMIT)")

	rootCmd.AddCommand(ingestCmd, enrichCmd, embedCmd, resetFailedCmd, runCmd)
}

// newContainer loads config and wires the full dependency container. The
// CLI shares the server's container so both run the identical pipeline.
func newContainer() (*app.Container, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return c, cfg, nil
}

func threadID(cfg config.Config) int64 {
	if v := viper.GetInt64("thread"); v > 0 {
		return v
	}
	return cfg.HackerNews.ThreadID
}

func batchLimit(cfg config.Config) int {
	if v := viper.GetInt("limit"); v > 0 {
		return v
	}
	return cfg.Pipeline.BatchLimit
}
