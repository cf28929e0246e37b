package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"resume-pathways/internal/domain/job"
	"resume-pathways/internal/domain/resume"
	"resume-pathways/internal/embedding"
	"resume-pathways/internal/repository"
)

type EmbedSummary struct {
	Jobs       int
	Resumes    int
	Embedded   int64
	Failed     int64
	SkippedBad int64
}

// EmbeddingBackfill computes vectors for enriched postings and saved
// resumes that do not have one yet. Both sides go through the same
// generator so every stored vector shares the canonical dimensionality.
type EmbeddingBackfill struct {
	generator *embedding.Generator
	postings  repository.JobPostingRepository
	resumes   repository.ResumeRepository
	logger    *log.Logger
	workers   int
	progress  ProgressNotifier
}

func NewEmbeddingBackfill(generator *embedding.Generator, postings repository.JobPostingRepository, resumes repository.ResumeRepository, logger *log.Logger, workers int, progress ProgressNotifier) *EmbeddingBackfill {
	if logger == nil {
		logger = log.Default()
	}
	if workers <= 0 {
		workers = 3
	}
	return &EmbeddingBackfill{
		generator: generator,
		postings:  postings,
		resumes:   resumes,
		logger:    logger,
		workers:   workers,
		progress:  progress,
	}
}

// Run embeds up to limit postings and limit resumes.
func (b *EmbeddingBackfill) Run(ctx context.Context, limit int) (EmbedSummary, error) {
	if b == nil || b.generator == nil || b.postings == nil || b.resumes == nil {
		return EmbedSummary{}, errors.New("embedding backfill is not configured")
	}

	jobs, err := b.postings.ListMissingEmbedding(ctx, limit)
	if err != nil {
		return EmbedSummary{}, fmt.Errorf("list postings missing embedding: %w", err)
	}
	resumes, err := b.resumes.ListMissingEmbedding(ctx, limit)
	if err != nil {
		return EmbedSummary{}, fmt.Errorf("list resumes missing embedding: %w", err)
	}

	summary := EmbedSummary{Jobs: len(jobs), Resumes: len(resumes)}
	total := summary.Jobs + summary.Resumes
	b.logger.Printf("pipeline=embed status=start jobs=%d resumes=%d", summary.Jobs, summary.Resumes)

	var embedded, failed, skippedBad atomic.Int64
	var processed atomic.Int64

	pool := NewWorkerPool(b.workers, total)
	pool.Run(ctx)

	go func() {
		defer pool.Close()
		for _, p := range jobs {
			posting := p
			pool.Submit(func(ctx context.Context) Result {
				res := b.embedPosting(ctx, posting, &embedded, &failed, &skippedBad)
				done := processed.Add(1)
				notifyProgress(b.progress, StageEmbed, int(done), total)
				return res
			})
		}
		for _, r := range resumes {
			rec := r
			pool.Submit(func(ctx context.Context) Result {
				res := b.embedResume(ctx, rec, &embedded, &failed, &skippedBad)
				done := processed.Add(1)
				notifyProgress(b.progress, StageEmbed, int(done), total)
				return res
			})
		}
	}()

	for range pool.Results() {
	}

	summary.Embedded = embedded.Load()
	summary.Failed = failed.Load()
	summary.SkippedBad = skippedBad.Load()
	b.logger.Printf("pipeline=embed status=done embedded=%d failed=%d skipped=%d",
		summary.Embedded, summary.Failed, summary.SkippedBad)
	return summary, nil
}

func (b *EmbeddingBackfill) embedPosting(ctx context.Context, p repository.JobPosting, embedded, failed, skippedBad *atomic.Int64) Result {
	if p.Content == nil {
		skippedBad.Add(1)
		return Result{Skipped: true}
	}
	content, err := job.ParseContent(*p.Content)
	if err != nil {
		skippedBad.Add(1)
		b.logger.Printf("pipeline=embed status=bad_content id=%d error=%v", p.ID, err)
		return Result{Skipped: true}
	}

	vec, err := b.generator.Generate(ctx, content.Text())
	if err != nil {
		failed.Add(1)
		b.logger.Printf("pipeline=embed status=generate_failed kind=job id=%d error=%v", p.ID, err)
		return Result{Err: err}
	}
	if err := b.postings.SetEmbedding(ctx, p.ID, vec, b.generator.Model()); err != nil {
		failed.Add(1)
		return Result{Err: err}
	}
	embedded.Add(1)
	return Result{}
}

func (b *EmbeddingBackfill) embedResume(ctx context.Context, r repository.Resume, embedded, failed, skippedBad *atomic.Int64) Result {
	doc, err := resume.Parse(r.Resume)
	if err != nil {
		skippedBad.Add(1)
		b.logger.Printf("pipeline=embed status=bad_resume username=%s error=%v", r.Username, err)
		return Result{Skipped: true}
	}

	vec, err := b.generator.Generate(ctx, doc.Text())
	if err != nil {
		failed.Add(1)
		b.logger.Printf("pipeline=embed status=generate_failed kind=resume username=%s error=%v", r.Username, err)
		return Result{Err: err}
	}
	if err := b.resumes.SetEmbedding(ctx, r.ID, vec, b.generator.Model()); err != nil {
		failed.Add(1)
		return Result{Err: err}
	}
	embedded.Add(1)
	return Result{}
}
