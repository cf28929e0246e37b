package main

import (
	"errors"
	"time"

	"resume-pathways/internal/pipeline"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch a hiring thread and store new postings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, cfg, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		thread := threadID(cfg)
		if thread <= 0 {
			return errors.New("no thread id: pass --thread or set HN_THREAD_ID")
		}

		_, err = c.Ingestion(nil).Run(cmd.Context(), thread)
		return err
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich pending postings into structured content",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, cfg, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Enrichment(nil).Run(cmd.Context(), batchLimit(cfg))
		return err
	},
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for postings and resumes missing one",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, cfg, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.EmbeddingBackfill(nil).Run(cmd.Context(), batchLimit(cfg))
		return err
	},
}

var resetFailedCmd = &cobra.Command{
	Use:   "reset-failed",
	Short: "Clear failure sentinels for recently failed postings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, cfg, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		window := time.Duration(cfg.Pipeline.ResetWindowDays) * 24 * time.Hour
		_, err = pipeline.ResetFailed(cmd.Context(), c.Postings, window, c.Logger)
		return err
	},
}
