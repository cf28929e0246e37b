package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-pathways/internal/app"
	"resume-pathways/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const runLockKey = "pipeline:run:lock"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ingest, enrich, embed sequence",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := viper.BindPFlag("schedule", cmd.Flags().Lookup("schedule")); err != nil {
			return err
		}

		c, cfg, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		thread := threadID(cfg)
		if thread <= 0 {
			return errors.New("no thread id: pass --thread or set HN_THREAD_ID")
		}

		runner := c.PipelineRunner()
		limit := batchLimit(cfg)

		schedule := viper.GetString("schedule")
		if schedule == "" {
			return runLocked(cmd.Context(), c, runner, thread, limit)
		}

		// Daemon mode: the sequence fires on the cron schedule until
		// interrupted.
		cr := cron.New()
		_, err = cr.AddFunc(schedule, func() {
			if err := runLocked(cmd.Context(), c, runner, thread, limit); err != nil {
				logger.Printf("pipeline=run status=failed error=%v", err)
			}
		})
		if err != nil {
			return err
		}

		logger.Printf("pipeline=run mode=scheduled schedule=%q", schedule)
		cr.Start()
		defer cr.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

// runLocked guards the full sequence with a redis lock so an operator run
// and a scheduled run cannot interleave writes to the same postings.
func runLocked(ctx context.Context, c *app.Container, runner *pipeline.Runner, thread int64, limit int) error {
	acquired, err := c.Cache.SetIfNotExists(ctx, runLockKey, "1", 30*time.Minute)
	if err != nil {
		return err
	}
	if !acquired {
		return errors.New("another pipeline run holds the lock")
	}
	defer func() { _ = c.Cache.Delete(ctx, runLockKey) }()

	_, err = runner.Run(ctx, thread, limit)
	return err
}

func init() {
	runCmd.Flags().String("schedule", "", "cron expression for daemon mode (for example \"0 3 * * *\")")
}
