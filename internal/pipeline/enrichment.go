package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"resume-pathways/internal/domain/job"
	"resume-pathways/internal/pkg/retry"
	"resume-pathways/internal/repository"

	"github.com/tidwall/gjson"
)

// ContentGenerator is the slice of the LLM client enrichment needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// PageFetcher augments short postings with the text behind their first
// link. Optional; enrichment works from the raw comment alone.
type PageFetcher interface {
	FetchText(url string) (string, error)
}

// ErrNotAPosting marks raw text the model judged to not be a job posting
// at all. There is no point retrying those.
var ErrNotAPosting = errors.New("text is not a job posting")

type EnrichSummary struct {
	Total    int
	Enriched int64
	Failed   int64
	GaveUp   int64
}

// minRawLenForSolo is the raw-text length under which enrichment tries to
// pull the linked page for more context before prompting.
const minRawLenForSolo = 280

// Enrichment turns raw posting text into structured content via the LLM.
// Transient model failures are retried within a run; a posting that keeps
// failing across runs is eventually marked with the failure sentinel and
// left alone until an operator reset.
type Enrichment struct {
	generator ContentGenerator
	pages     PageFetcher
	postings  repository.JobPostingRepository
	logger    *log.Logger
	workers   int
	maxRetry  int
	progress  ProgressNotifier
	policy    retry.Policy
}

func NewEnrichment(generator ContentGenerator, pages PageFetcher, postings repository.JobPostingRepository, logger *log.Logger, workers, maxRetries int, progress ProgressNotifier) *Enrichment {
	if logger == nil {
		logger = log.Default()
	}
	if workers <= 0 {
		workers = 3
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Enrichment{
		generator: generator,
		pages:     pages,
		postings:  postings,
		logger:    logger,
		workers:   workers,
		maxRetry:  maxRetries,
		progress:  progress,
		policy:    retry.DefaultPolicy(),
	}
}

// Run enriches up to limit pending postings.
func (e *Enrichment) Run(ctx context.Context, limit int) (EnrichSummary, error) {
	if e == nil || e.generator == nil || e.postings == nil {
		return EnrichSummary{}, errors.New("enrichment is not configured")
	}

	pending, err := e.postings.ListPendingEnrichment(ctx, limit, e.maxRetry)
	if err != nil {
		return EnrichSummary{}, fmt.Errorf("list pending postings: %w", err)
	}

	summary := EnrichSummary{Total: len(pending)}
	e.logger.Printf("pipeline=enrich status=start pending=%d", summary.Total)

	var enriched, failed, gaveUp atomic.Int64
	var processed atomic.Int64

	pool := NewWorkerPool(e.workers, len(pending))
	pool.Run(ctx)

	go func() {
		defer pool.Close()
		for _, p := range pending {
			posting := p
			pool.Submit(func(ctx context.Context) Result {
				res := e.enrichOne(ctx, posting, &enriched, &failed, &gaveUp)
				done := processed.Add(1)
				notifyProgress(e.progress, StageEnrich, int(done), summary.Total)
				return res
			})
		}
	}()

	for range pool.Results() {
	}

	summary.Enriched = enriched.Load()
	summary.Failed = failed.Load()
	summary.GaveUp = gaveUp.Load()
	e.logger.Printf("pipeline=enrich status=done enriched=%d failed=%d gave_up=%d",
		summary.Enriched, summary.Failed, summary.GaveUp)
	return summary, nil
}

func (e *Enrichment) enrichOne(ctx context.Context, p repository.JobPosting, enriched, failed, gaveUp *atomic.Int64) Result {
	content, err := e.extract(ctx, p)
	if err == nil {
		serialized, serr := job.SerializeContent(content)
		if serr == nil {
			if werr := e.postings.SetEnriched(ctx, p.ID, serialized); werr != nil {
				failed.Add(1)
				return Result{Err: werr}
			}
			enriched.Add(1)
			return Result{}
		}
		err = retry.Permanent(serr)
	}

	if errors.Is(err, ErrNotAPosting) {
		// Not retryable in any universe; sentinel it immediately.
		if werr := e.postings.MarkFailed(ctx, p.ID, err.Error()); werr != nil {
			failed.Add(1)
			return Result{Err: werr}
		}
		gaveUp.Add(1)
		e.logger.Printf("pipeline=enrich status=not_a_posting id=%d source_id=%s", p.ID, p.SourceID)
		return Result{Skipped: true}
	}

	permanent, werr := e.postings.RecordEnrichmentFailure(ctx, p.ID, err.Error(), e.maxRetry)
	if werr != nil {
		failed.Add(1)
		return Result{Err: werr}
	}
	if permanent {
		gaveUp.Add(1)
		e.logger.Printf("pipeline=enrich status=gave_up id=%d source_id=%s error=%v", p.ID, p.SourceID, err)
	} else {
		failed.Add(1)
		e.logger.Printf("pipeline=enrich status=retry_later id=%d source_id=%s retries=%d error=%v",
			p.ID, p.SourceID, p.RetryCount+1, err)
	}
	return Result{Err: err}
}

// extract prompts the model and parses its answer into structured content.
func (e *Enrichment) extract(ctx context.Context, p repository.JobPosting) (job.Content, error) {
	text := p.RawContent
	if len([]rune(text)) < minRawLenForSolo && p.URL != "" && e.pages != nil {
		if pageText, err := e.pages.FetchText(p.URL); err == nil && pageText != "" {
			text = text + "\n\nLinked page:\n" + pageText
		}
	}

	prompt := buildExtractionPrompt(text)

	var content job.Content
	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		raw, err := e.generator.GenerateContent(ctx, prompt)
		if err != nil {
			return err
		}
		c, err := parseModelOutput(raw)
		if err != nil {
			return err
		}
		content = c
		return nil
	})
	if err != nil {
		return job.Content{}, err
	}
	return content, nil
}

func buildExtractionPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You extract structured data from job postings.\n")
	b.WriteString("Given the posting below, respond with a single JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"title":"","company":"","location":{"city":"","region":"","countryCode":""},"remote":false,"type":"","salary":{"min":0,"max":0,"currency":""},"experience":"","skills":[],"bonusSkills":[],"description":"","apply":""}`)
	b.WriteString("\n")
	b.WriteString("Rules: experience is one of junior, mid, senior, lead, or empty when unstated. ")
	b.WriteString("skills lists hard requirements, bonusSkills nice-to-haves. ")
	b.WriteString("countryCode is ISO 3166-1 alpha-2. Omit nothing; use empty values for unknowns. ")
	b.WriteString("If the text is not a job posting, respond with exactly NOT_A_JOB_POSTING.\n\n")
	b.WriteString("Posting:\n")
	b.WriteString(text)
	return b.String()
}

// parseModelOutput tolerates fenced or chatty model answers: it locates the
// JSON object, validates it, then decodes strictly.
func parseModelOutput(raw string) (job.Content, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "NOT_A_JOB_POSTING") {
		return job.Content{}, ErrNotAPosting
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return job.Content{}, retry.Permanent(fmt.Errorf("%w: no JSON object in model output", job.ErrInvalidContent))
	}
	blob := raw[start : end+1]

	if !gjson.Valid(blob) {
		return job.Content{}, retry.Permanent(fmt.Errorf("%w: model output is not valid JSON", job.ErrInvalidContent))
	}
	if gjson.Get(blob, "title").String() == "" {
		return job.Content{}, retry.Permanent(fmt.Errorf("%w: missing title", job.ErrInvalidContent))
	}

	content, err := job.ParseContent(blob)
	if err != nil {
		return job.Content{}, retry.Permanent(err)
	}
	return content, nil
}
