package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"resume-pathways/internal/domain/job"
	"resume-pathways/internal/repository"
)

const jobListCacheTTL = 5 * time.Minute

// JobSummary is the list-view shape of an enriched posting.
type JobSummary struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company,omitempty"`
	Location    string     `json:"location,omitempty"`
	Remote      bool       `json:"remote"`
	Type        string     `json:"type,omitempty"`
	Experience  string     `json:"experience,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
	BonusSkills []string   `json:"bonusSkills,omitempty"`
	SalaryMin   float64    `json:"salaryMin,omitempty"`
	SalaryMax   float64    `json:"salaryMax,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Description string     `json:"description,omitempty"`
	Apply       string     `json:"apply,omitempty"`
	URL         string     `json:"url,omitempty"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`
}

type ListJobsInput struct {
	Username       string
	ExcludeDecided bool
	Limit          int
	Offset         int
}

type DecideInput struct {
	Username string
	JobID    int64
	Decision string
}

type JobUsecase interface {
	ListJobs(ctx context.Context, in ListJobsInput) ([]JobSummary, error)
	Decide(ctx context.Context, in DecideInput) error
}

type jobUsecase struct {
	postings  repository.JobPostingRepository
	decisions repository.JobDecisionRepository
	cache     Cache
	logger    *log.Logger
}

func NewJobUsecase(postings repository.JobPostingRepository, decisions repository.JobDecisionRepository, cache Cache, logger *log.Logger) JobUsecase {
	if logger == nil {
		logger = log.Default()
	}
	return &jobUsecase{postings: postings, decisions: decisions, cache: cache, logger: logger}
}

// ListJobs returns recent enriched postings. The anonymous list is cached;
// per-user filtered lists are cheap enough to always read through.
func (u *jobUsecase) ListJobs(ctx context.Context, in ListJobsInput) ([]JobSummary, error) {
	if in.Limit <= 0 {
		in.Limit = 20
	}
	if in.Limit > 100 {
		in.Limit = 100
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	cacheable := !in.ExcludeDecided
	cacheKey := fmt.Sprintf("jobs:recent:%d:%d", in.Limit, in.Offset)
	if cacheable && u.cache != nil {
		var cached []JobSummary
		if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	postings, err := u.postings.ListRecentEnriched(ctx, in.Limit, in.Offset)
	if err != nil {
		u.logger.Printf("usecase=jobs op=list error=%v", err)
		return nil, ErrInternal
	}

	excluded := map[int64]struct{}{}
	if in.ExcludeDecided && in.Username != "" {
		ids, err := u.decisions.ListDecidedJobIDs(ctx, in.Username)
		if err != nil {
			u.logger.Printf("usecase=jobs op=list_decisions error=%v", err)
			return nil, ErrInternal
		}
		for _, id := range ids {
			excluded[id] = struct{}{}
		}
	}

	out := make([]JobSummary, 0, len(postings))
	for _, p := range postings {
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		summary, ok := summarize(p)
		if !ok {
			continue
		}
		out = append(out, summary)
	}

	if cacheable && u.cache != nil {
		_ = u.cache.SetJSON(ctx, cacheKey, out, jobListCacheTTL)
	}
	return out, nil
}

// Decide upserts the user's interested/pass call on a posting. Re-deciding
// overwrites.
func (u *jobUsecase) Decide(ctx context.Context, in DecideInput) error {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return ErrUnauthorized
	}
	decision := strings.ToLower(strings.TrimSpace(in.Decision))
	if decision != repository.DecisionInterested && decision != repository.DecisionPass {
		return fmt.Errorf("%w: decision must be %q or %q", ErrInvalidInput, repository.DecisionInterested, repository.DecisionPass)
	}
	if in.JobID <= 0 {
		return fmt.Errorf("%w: job id must be positive", ErrInvalidInput)
	}

	if _, err := u.postings.FindByID(ctx, in.JobID); err != nil {
		if errors.Is(err, repository.ErrPostingNotFound) {
			return ErrJobNotFound
		}
		u.logger.Printf("usecase=jobs op=decide_lookup error=%v", err)
		return ErrInternal
	}

	err := u.decisions.Upsert(ctx, repository.JobDecision{
		Username: username,
		JobID:    in.JobID,
		Decision: decision,
	})
	if err != nil {
		u.logger.Printf("usecase=jobs op=decide error=%v", err)
		return ErrInternal
	}
	return nil
}

// summarize converts a stored posting to its list shape. Postings whose
// content does not parse are dropped from listings rather than erroring the
// whole page.
func summarize(p repository.JobPosting) (JobSummary, bool) {
	if p.Content == nil {
		return JobSummary{}, false
	}
	c, err := job.ParseContent(*p.Content)
	if err != nil {
		return JobSummary{}, false
	}

	location := strings.TrimSpace(strings.Join(nonEmpty(c.Location.City, c.Location.Region, c.Location.CountryCode), ", "))
	return JobSummary{
		ID:          p.ID,
		Title:       c.Title,
		Company:     c.Company,
		Location:    location,
		Remote:      c.Remote,
		Type:        c.Type,
		Experience:  c.Experience,
		Skills:      c.Skills,
		BonusSkills: c.BonusSkills,
		SalaryMin:   c.Salary.Min,
		SalaryMax:   c.Salary.Max,
		Currency:    c.Salary.Currency,
		Description: c.Description,
		Apply:       c.Apply,
		URL:         p.URL,
		PostedAt:    p.PostedAt,
	}, true
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
