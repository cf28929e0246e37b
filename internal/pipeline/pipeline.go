package pipeline

import (
	"context"
	"errors"
	"log"
	"time"
)

// Stage names published with progress events and log lines.
const (
	StageIngest = "ingest"
	StageEnrich = "enrich"
	StageEmbed  = "embed"
)

// ProgressNotifier receives stage progress as the pipeline works through a
// batch. Implementations must be non-blocking.
type ProgressNotifier interface {
	Notify(stage string, processed, total int)
}

func notifyProgress(n ProgressNotifier, stage string, processed, total int) {
	if n == nil {
		return
	}
	n.Notify(stage, processed, total)
}

// CacheInvalidator drops cached query responses after a run changes the
// posting set.
type CacheInvalidator interface {
	InvalidateJobCaches(ctx context.Context) error
}

type RunSummary struct {
	Ingest   IngestSummary
	Enrich   EnrichSummary
	Embed    EmbedSummary
	Duration time.Duration
}

// Runner sequences the full ingest, enrich, embed run.
type Runner struct {
	ingestion *Ingestion
	enricher  *Enrichment
	backfill  *EmbeddingBackfill
	cache     CacheInvalidator
	logger    *log.Logger
}

func NewRunner(ingestion *Ingestion, enricher *Enrichment, backfill *EmbeddingBackfill, cache CacheInvalidator, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		ingestion: ingestion,
		enricher:  enricher,
		backfill:  backfill,
		cache:     cache,
		logger:    logger,
	}
}

// Run executes the stages in order. Enrichment and embedding still run when
// ingestion found nothing new, so backlogs from earlier partial runs drain.
func (r *Runner) Run(ctx context.Context, threadID int64, batchLimit int) (RunSummary, error) {
	if r == nil || r.ingestion == nil || r.enricher == nil || r.backfill == nil {
		return RunSummary{}, errors.New("pipeline runner is not configured")
	}

	start := time.Now()
	var summary RunSummary

	ingest, err := r.ingestion.Run(ctx, threadID)
	if err != nil {
		return summary, err
	}
	summary.Ingest = ingest

	enrich, err := r.enricher.Run(ctx, batchLimit)
	if err != nil {
		return summary, err
	}
	summary.Enrich = enrich

	embed, err := r.backfill.Run(ctx, batchLimit)
	if err != nil {
		return summary, err
	}
	summary.Embed = embed
	summary.Duration = time.Since(start)

	if r.cache != nil && (ingest.Inserted > 0 || enrich.Enriched > 0 || embed.Embedded > 0) {
		if err := r.cache.InvalidateJobCaches(ctx); err != nil {
			r.logger.Printf("pipeline=run status=cache_invalidate_failed error=%v", err)
		}
	}

	r.logger.Printf("pipeline=run status=done duration=%s inserted=%d enriched=%d embedded=%d",
		summary.Duration.Round(time.Millisecond), ingest.Inserted, enrich.Enriched, embed.Embedded)
	return summary, nil
}
