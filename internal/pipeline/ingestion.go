package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"resume-pathways/internal/infrastructure/hackernews"
	"resume-pathways/internal/repository"
)

const sourceHackerNews = "hackernews"

// ItemFetcher is the slice of the Hacker News client ingestion needs.
type ItemFetcher interface {
	GetItem(ctx context.Context, id int64) (hackernews.Item, error)
}

// IngestSummary tallies one ingestion run. Skipped counts duplicates and
// deleted/dead comments, Failed counts fetch or insert errors.
type IngestSummary struct {
	Thread   int64
	Total    int
	Inserted int64
	Skipped  int64
	Failed   int64
}

// Ingestion pulls every top-level comment of a hiring thread and stores the
// new ones. Re-running over the same thread is a no-op for already-seen
// postings.
type Ingestion struct {
	fetcher  ItemFetcher
	postings repository.JobPostingRepository
	logger   *log.Logger
	workers  int
	progress ProgressNotifier
}

func NewIngestion(fetcher ItemFetcher, postings repository.JobPostingRepository, logger *log.Logger, workers int, progress ProgressNotifier) *Ingestion {
	if logger == nil {
		logger = log.Default()
	}
	if workers <= 0 {
		workers = 5
	}
	return &Ingestion{
		fetcher:  fetcher,
		postings: postings,
		logger:   logger,
		workers:  workers,
		progress: progress,
	}
}

// Run ingests the thread identified by threadID. Individual posting
// failures are counted, not fatal; the run only errors when the thread
// itself cannot be fetched.
func (in *Ingestion) Run(ctx context.Context, threadID int64) (IngestSummary, error) {
	if in == nil || in.fetcher == nil || in.postings == nil {
		return IngestSummary{}, errors.New("ingestion is not configured")
	}
	if threadID <= 0 {
		return IngestSummary{}, errors.New("thread id must be positive")
	}

	thread, err := in.fetcher.GetItem(ctx, threadID)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("fetch thread %d: %w", threadID, err)
	}

	summary := IngestSummary{Thread: threadID, Total: len(thread.Kids)}
	in.logger.Printf("pipeline=ingest status=start thread=%d postings=%d", threadID, summary.Total)

	var inserted, skipped, failed atomic.Int64
	var processed atomic.Int64

	pool := NewWorkerPool(in.workers, len(thread.Kids))
	pool.Run(ctx)

	go func() {
		defer pool.Close()
		for _, kid := range thread.Kids {
			id := kid
			pool.Submit(func(ctx context.Context) Result {
				res := in.ingestOne(ctx, id, &inserted, &skipped, &failed)
				done := processed.Add(1)
				notifyProgress(in.progress, StageIngest, int(done), summary.Total)
				return res
			})
		}
	}()

	for range pool.Results() {
	}

	summary.Inserted = inserted.Load()
	summary.Skipped = skipped.Load()
	summary.Failed = failed.Load()
	in.logger.Printf("pipeline=ingest status=done thread=%d inserted=%d skipped=%d failed=%d",
		threadID, summary.Inserted, summary.Skipped, summary.Failed)
	return summary, nil
}

func (in *Ingestion) ingestOne(ctx context.Context, id int64, inserted, skipped, failed *atomic.Int64) Result {
	item, err := in.fetcher.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, hackernews.ErrItemNotFound) {
			skipped.Add(1)
			return Result{Skipped: true}
		}
		failed.Add(1)
		in.logger.Printf("pipeline=ingest status=fetch_failed item=%d error=%v", id, err)
		return Result{Err: err}
	}
	if item.Deleted || item.Dead || strings.TrimSpace(item.Text) == "" {
		skipped.Add(1)
		return Result{Skipped: true}
	}

	postedAt := item.PostedAt()
	insert := repository.JobPostingInsert{
		Source:     sourceHackerNews,
		SourceID:   item.SourceID(),
		URL:        item.FirstLink(),
		RawContent: item.PlainText(),
	}
	if !postedAt.IsZero() {
		insert.PostedAt = &postedAt
	}
	if payload, err := item.MarshalPayload(); err == nil {
		insert.RawPayload = payload
	}

	isNew, err := in.postings.InsertIfNew(ctx, insert)
	if err != nil {
		failed.Add(1)
		in.logger.Printf("pipeline=ingest status=insert_failed item=%d error=%v", id, err)
		return Result{Err: err}
	}
	if !isNew {
		skipped.Add(1)
		return Result{Skipped: true}
	}
	inserted.Add(1)
	return Result{}
}
