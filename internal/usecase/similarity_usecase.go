package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"resume-pathways/internal/repository"
)

const similarityCacheTTL = 10 * time.Minute

type ResumePoint struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Vector   []float32 `json:"vector"`
}

type JobPoint struct {
	ID       int64      `json:"id"`
	Content  string     `json:"content"`
	URL      string     `json:"url,omitempty"`
	PostedAt *time.Time `json:"postedAt,omitempty"`
	Vector   []float32  `json:"vector"`
}

type SimilarResume struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Similarity float64 `json:"similarity"`
}

type SimilarJob struct {
	ID         int64      `json:"id"`
	Content    string     `json:"content"`
	URL        string     `json:"url,omitempty"`
	PostedAt   *time.Time `json:"postedAt,omitempty"`
	Similarity float64    `json:"similarity"`
}

type SimilarityQuery struct {
	Username  string
	Threshold float64
	Count     int
}

type SimilarityUsecase interface {
	ResumeDataset(ctx context.Context, limit int) ([]ResumePoint, error)
	JobDataset(ctx context.Context, limit int) ([]JobPoint, error)
	SimilarResumes(ctx context.Context, q SimilarityQuery) ([]SimilarResume, error)
	SimilarJobs(ctx context.Context, q SimilarityQuery) ([]SimilarJob, error)
}

type similarityUsecase struct {
	resumes  repository.ResumeRepository
	postings repository.JobPostingRepository
	cache    Cache
	logger   *log.Logger
}

func NewSimilarityUsecase(resumes repository.ResumeRepository, postings repository.JobPostingRepository, cache Cache, logger *log.Logger) SimilarityUsecase {
	if logger == nil {
		logger = log.Default()
	}
	return &similarityUsecase{resumes: resumes, postings: postings, cache: cache, logger: logger}
}

func (u *similarityUsecase) ResumeDataset(ctx context.Context, limit int) ([]ResumePoint, error) {
	records, err := u.resumes.ListEmbeddingDataset(ctx, limit)
	if err != nil {
		u.logger.Printf("usecase=similarity op=resume_dataset error=%v", err)
		return nil, ErrInternal
	}
	out := make([]ResumePoint, 0, len(records))
	for _, r := range records {
		out = append(out, ResumePoint{ID: r.ID, Username: r.Username, Vector: r.Vector})
	}
	return out, nil
}

func (u *similarityUsecase) JobDataset(ctx context.Context, limit int) ([]JobPoint, error) {
	records, err := u.postings.ListEmbeddingDataset(ctx, limit)
	if err != nil {
		u.logger.Printf("usecase=similarity op=job_dataset error=%v", err)
		return nil, ErrInternal
	}
	out := make([]JobPoint, 0, len(records))
	for _, r := range records {
		out = append(out, JobPoint{ID: r.ID, Content: r.Content, URL: r.URL, PostedAt: r.PostedAt, Vector: r.Vector})
	}
	return out, nil
}

// SimilarResumes finds profiles near the user's stored embedding. A user
// whose resume has not been embedded yet gets a not-found, not an empty
// list, so the UI can prompt for embedding generation.
func (u *similarityUsecase) SimilarResumes(ctx context.Context, q SimilarityQuery) ([]SimilarResume, error) {
	vec, err := u.queryVector(ctx, q)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("similarity:resumes:%s:%.2f:%d", q.Username, q.Threshold, q.Count)
	if u.cache != nil {
		var cached []SimilarResume
		if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	matches, err := u.resumes.MatchByEmbedding(ctx, vec, q.Threshold, q.Count)
	if err != nil {
		u.logger.Printf("usecase=similarity op=match_resumes error=%v", err)
		return nil, ErrInternal
	}

	out := make([]SimilarResume, 0, len(matches))
	for _, m := range matches {
		if m.Username == q.Username {
			continue
		}
		out = append(out, SimilarResume{ID: m.ID, Username: m.Username, Similarity: m.Similarity})
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, cacheKey, out, similarityCacheTTL)
	}
	return out, nil
}

// SimilarJobs finds postings near the user's stored embedding.
func (u *similarityUsecase) SimilarJobs(ctx context.Context, q SimilarityQuery) ([]SimilarJob, error) {
	vec, err := u.queryVector(ctx, q)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("similarity:jobs:%s:%.2f:%d", q.Username, q.Threshold, q.Count)
	if u.cache != nil {
		var cached []SimilarJob
		if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	matches, err := u.postings.MatchByEmbedding(ctx, vec, q.Threshold, q.Count)
	if err != nil {
		u.logger.Printf("usecase=similarity op=match_jobs error=%v", err)
		return nil, ErrInternal
	}

	out := make([]SimilarJob, 0, len(matches))
	for _, m := range matches {
		out = append(out, SimilarJob{ID: m.ID, Content: m.Content, URL: m.URL, PostedAt: m.PostedAt, Similarity: m.Similarity})
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, cacheKey, out, similarityCacheTTL)
	}
	return out, nil
}

func (u *similarityUsecase) queryVector(ctx context.Context, q SimilarityQuery) ([]float32, error) {
	if q.Username == "" {
		return nil, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	if q.Threshold < 0 || q.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0,1]", ErrInvalidInput)
	}

	vec, err := u.resumes.GetEmbedding(ctx, q.Username)
	if err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return nil, ErrResumeNotFound
		}
		u.logger.Printf("usecase=similarity op=query_vector username=%s error=%v", q.Username, err)
		return nil, ErrInternal
	}
	return vec, nil
}
