package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"resume-pathways/internal/domain/job"
	"resume-pathways/internal/domain/resume"
	"resume-pathways/internal/domain/scoring"
	"resume-pathways/internal/embedding"
	"resume-pathways/internal/repository"
)

// ContentGenerator is the LLM slice pathways usecases need for profile
// descriptions and match narratives.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type EmbeddingResult struct {
	Description string `json:"description"`
	Dimensions  int    `json:"dimensions"`
	Model       string `json:"model"`
}

type Match struct {
	JobID     int64              `json:"jobId"`
	Title     string             `json:"title"`
	Company   string             `json:"company,omitempty"`
	Score     int                `json:"score"`
	Outcome   string             `json:"outcome"`
	Breakdown map[string]float64 `json:"breakdown"`
	Matched   []string           `json:"matched,omitempty"`
	Missing   []string           `json:"missing,omitempty"`
}

type Insight struct {
	JobID     int64              `json:"jobId"`
	Title     string             `json:"title"`
	Score     int                `json:"score"`
	Outcome   string             `json:"outcome"`
	Breakdown map[string]float64 `json:"breakdown"`
	Matched   []string           `json:"matched,omitempty"`
	Missing   []string           `json:"missing,omitempty"`
	Narrative string             `json:"narrative"`
}

type GenerateEmbeddingInput struct {
	Username   string
	ResumeJSON string
}

type MatchesInput struct {
	Username          string
	ResumeJSON        string
	SalaryExpectation float64
	Limit             int
}

type InsightInput struct {
	Username          string
	ResumeJSON        string
	JobID             int64
	SalaryExpectation float64
}

type PathwaysUsecase interface {
	GenerateEmbedding(ctx context.Context, in GenerateEmbeddingInput) (EmbeddingResult, error)
	Matches(ctx context.Context, in MatchesInput) ([]Match, error)
	MatchInsights(ctx context.Context, in InsightInput) (Insight, error)
}

type pathwaysUsecase struct {
	resumes   repository.ResumeRepository
	postings  repository.JobPostingRepository
	generator ContentGenerator
	embedder  *embedding.Generator
	logger    *log.Logger
	now       func() time.Time
}

func NewPathwaysUsecase(resumes repository.ResumeRepository, postings repository.JobPostingRepository, generator ContentGenerator, embedder *embedding.Generator, logger *log.Logger) PathwaysUsecase {
	if logger == nil {
		logger = log.Default()
	}
	return &pathwaysUsecase{
		resumes:   resumes,
		postings:  postings,
		generator: generator,
		embedder:  embedder,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateEmbedding saves the resume, produces a one-paragraph professional
// description via the LLM, and persists the document's embedding.
func (u *pathwaysUsecase) GenerateEmbedding(ctx context.Context, in GenerateEmbeddingInput) (EmbeddingResult, error) {
	if u.generator == nil || u.embedder == nil {
		return EmbeddingResult{}, ErrUnavailable
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return EmbeddingResult{}, ErrUnauthorized
	}

	doc, err := resume.Parse(in.ResumeJSON)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	text := doc.Text()
	if text == "" {
		return EmbeddingResult{}, fmt.Errorf("%w: resume document is empty", ErrInvalidInput)
	}

	if err := u.resumes.Upsert(ctx, username, in.ResumeJSON); err != nil {
		u.logger.Printf("usecase=pathways op=upsert_resume username=%s error=%v", username, err)
		return EmbeddingResult{}, ErrInternal
	}

	description, err := u.generator.GenerateContent(ctx, buildDescriptionPrompt(text))
	if err != nil {
		u.logger.Printf("usecase=pathways op=describe username=%s error=%v", username, err)
		return EmbeddingResult{}, ErrUnavailable
	}

	vec, err := u.embedder.Generate(ctx, text)
	if err != nil {
		u.logger.Printf("usecase=pathways op=embed username=%s error=%v", username, err)
		return EmbeddingResult{}, ErrUnavailable
	}

	stored, err := u.resumes.FindByUsername(ctx, username)
	if err != nil {
		u.logger.Printf("usecase=pathways op=reload_resume username=%s error=%v", username, err)
		return EmbeddingResult{}, ErrInternal
	}
	if err := u.resumes.SetEmbedding(ctx, stored.ID, vec, u.embedder.Model()); err != nil {
		u.logger.Printf("usecase=pathways op=store_embedding username=%s error=%v", username, err)
		return EmbeddingResult{}, ErrInternal
	}

	return EmbeddingResult{
		Description: description,
		Dimensions:  len(vec),
		Model:       u.embedder.Model(),
	}, nil
}

// Matches scores recent enriched postings against the resume and returns
// them ranked. Results are computed per request and never persisted.
func (u *pathwaysUsecase) Matches(ctx context.Context, in MatchesInput) ([]Match, error) {
	candidate, err := u.loadCandidate(ctx, in.Username, in.ResumeJSON, in.SalaryExpectation)
	if err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	postings, err := u.postings.ListRecentEnriched(ctx, limit, 0)
	if err != nil {
		u.logger.Printf("usecase=pathways op=list_jobs error=%v", err)
		return nil, ErrInternal
	}

	jobs := make([]scoring.Job, 0, len(postings))
	contents := make([]job.Content, 0, len(postings))
	ids := make([]int64, 0, len(postings))
	for _, p := range postings {
		if p.Content == nil {
			continue
		}
		c, err := job.ParseContent(*p.Content)
		if err != nil {
			continue
		}
		jobs = append(jobs, jobForScoring(c))
		contents = append(contents, c)
		ids = append(ids, p.ID)
	}

	ranked := scoring.Rank(candidate, jobs)
	out := make([]Match, 0, len(ranked))
	for _, r := range ranked {
		c := contents[r.OriginalIndex]
		out = append(out, Match{
			JobID:     ids[r.OriginalIndex],
			Title:     c.Title,
			Company:   c.Company,
			Score:     r.Result.Score,
			Outcome:   string(r.Result.Outcome),
			Breakdown: r.Result.Breakdown,
			Matched:   r.Result.Matched,
			Missing:   r.Result.Missing,
		})
	}
	return out, nil
}

// MatchInsights pairs the deterministic score with an LLM narrative for a
// single posting. The score never depends on the model; the narrative only
// explains it.
func (u *pathwaysUsecase) MatchInsights(ctx context.Context, in InsightInput) (Insight, error) {
	if u.generator == nil {
		return Insight{}, ErrUnavailable
	}
	candidate, err := u.loadCandidate(ctx, in.Username, in.ResumeJSON, in.SalaryExpectation)
	if err != nil {
		return Insight{}, err
	}

	posting, err := u.postings.FindByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrPostingNotFound) {
			return Insight{}, ErrJobNotFound
		}
		u.logger.Printf("usecase=pathways op=find_job id=%d error=%v", in.JobID, err)
		return Insight{}, ErrInternal
	}
	if posting.Content == nil {
		return Insight{}, ErrJobNotEnriched
	}
	content, err := job.ParseContent(*posting.Content)
	if err != nil {
		return Insight{}, ErrJobNotEnriched
	}

	result := scoring.Score(candidate, jobForScoring(content))

	narrative, err := u.generator.GenerateContent(ctx, buildInsightPrompt(content, result))
	if err != nil {
		u.logger.Printf("usecase=pathways op=narrative id=%d error=%v", in.JobID, err)
		return Insight{}, ErrUnavailable
	}

	return Insight{
		JobID:     posting.ID,
		Title:     content.Title,
		Score:     result.Score,
		Outcome:   string(result.Outcome),
		Breakdown: result.Breakdown,
		Matched:   result.Matched,
		Missing:   result.Missing,
		Narrative: narrative,
	}, nil
}

// loadCandidate builds the scorer's candidate view, from the request body
// when a document is supplied and from storage otherwise.
func (u *pathwaysUsecase) loadCandidate(ctx context.Context, username, resumeJSON string, salaryExpectation float64) (scoring.Candidate, error) {
	raw := strings.TrimSpace(resumeJSON)
	if raw == "" {
		username = strings.TrimSpace(username)
		if username == "" {
			return scoring.Candidate{}, fmt.Errorf("%w: resume or username required", ErrInvalidInput)
		}
		stored, err := u.resumes.FindByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, repository.ErrResumeNotFound) {
				return scoring.Candidate{}, ErrResumeNotFound
			}
			u.logger.Printf("usecase=pathways op=load_resume username=%s error=%v", username, err)
			return scoring.Candidate{}, ErrInternal
		}
		raw = stored.Resume
	}

	doc, err := resume.Parse(raw)
	if err != nil {
		return scoring.Candidate{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return candidateForScoring(doc, salaryExpectation, u.now()), nil
}

func candidateForScoring(doc resume.Document, salaryExpectation float64, asOf time.Time) scoring.Candidate {
	work := make([]scoring.WorkSpan, 0, len(doc.Work))
	for _, w := range doc.Work {
		work = append(work, scoring.WorkSpan{StartDate: w.StartDate, EndDate: w.EndDate})
	}
	return scoring.Candidate{
		SkillKeywords:     doc.SkillKeywords(),
		Work:              work,
		City:              doc.Basics.Location.City,
		Region:            doc.Basics.Location.Region,
		CountryCode:       doc.Basics.Location.CountryCode,
		SalaryExpectation: salaryExpectation,
		AsOf:              asOf,
	}
}

func jobForScoring(c job.Content) scoring.Job {
	return scoring.Job{
		RequiredSkills:  c.Skills,
		BonusSkills:     c.BonusSkills,
		ExperienceLevel: c.Experience,
		City:            c.Location.City,
		Region:          c.Location.Region,
		CountryCode:     c.Location.CountryCode,
		Remote:          c.Remote,
		SalaryMin:       c.Salary.Min,
		SalaryMax:       c.Salary.Max,
	}
}

func buildDescriptionPrompt(resumeText string) string {
	var b strings.Builder
	b.WriteString("Write a single-paragraph professional summary of this profile, third person, no preamble:\n\n")
	b.WriteString(resumeText)
	return b.String()
}

func buildInsightPrompt(c job.Content, r scoring.Result) string {
	var b strings.Builder
	b.WriteString("A candidate was scored against the job below by a deterministic rubric.\n")
	fmt.Fprintf(&b, "Job: %s at %s\n", c.Title, c.Company)
	fmt.Fprintf(&b, "Score: %d/100 (%s)\n", r.Score, r.Outcome)
	for criterion, points := range r.Breakdown {
		fmt.Fprintf(&b, "- %s: %.1f\n", criterion, points)
	}
	if len(r.Matched) > 0 {
		fmt.Fprintf(&b, "Matched skills: %s\n", strings.Join(r.Matched, ", "))
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "Missing skills: %s\n", strings.Join(r.Missing, ", "))
	}
	b.WriteString("\nExplain the fit in two or three sentences for the candidate. Do not invent facts or change the score.")
	return b.String()
}
