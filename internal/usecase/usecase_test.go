package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"resume-pathways/internal/embedding"
	"resume-pathways/internal/repository"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type mockPostingRepo struct {
	findByID           func(ctx context.Context, id int64) (repository.JobPosting, error)
	listRecentEnriched func(ctx context.Context, limit, offset int) ([]repository.JobPosting, error)
	matchByEmbedding   func(ctx context.Context, vec []float32, threshold float64, count int) ([]repository.JobSimilarityMatch, error)
	listDataset        func(ctx context.Context, limit int) ([]repository.JobEmbeddingRecord, error)
}

func (m *mockPostingRepo) InsertIfNew(context.Context, repository.JobPostingInsert) (bool, error) {
	return false, errors.New("not implemented")
}

func (m *mockPostingRepo) FindByID(ctx context.Context, id int64) (repository.JobPosting, error) {
	if m.findByID == nil {
		return repository.JobPosting{}, repository.ErrPostingNotFound
	}
	return m.findByID(ctx, id)
}

func (m *mockPostingRepo) ListPendingEnrichment(context.Context, int, int) ([]repository.JobPosting, error) {
	return nil, nil
}
func (m *mockPostingRepo) SetEnriched(context.Context, int64, string) error { return nil }
func (m *mockPostingRepo) MarkFailed(context.Context, int64, string) error  { return nil }
func (m *mockPostingRepo) RecordEnrichmentFailure(context.Context, int64, string, int) (bool, error) {
	return false, nil
}
func (m *mockPostingRepo) ResetFailed(context.Context, time.Duration) (int64, error) { return 0, nil }
func (m *mockPostingRepo) ListMissingEmbedding(context.Context, int) ([]repository.JobPosting, error) {
	return nil, nil
}
func (m *mockPostingRepo) SetEmbedding(context.Context, int64, []float32, string) error { return nil }

func (m *mockPostingRepo) ListRecentEnriched(ctx context.Context, limit, offset int) ([]repository.JobPosting, error) {
	if m.listRecentEnriched == nil {
		return nil, nil
	}
	return m.listRecentEnriched(ctx, limit, offset)
}

func (m *mockPostingRepo) MatchByEmbedding(ctx context.Context, vec []float32, threshold float64, count int) ([]repository.JobSimilarityMatch, error) {
	if m.matchByEmbedding == nil {
		return nil, nil
	}
	return m.matchByEmbedding(ctx, vec, threshold, count)
}

func (m *mockPostingRepo) ListEmbeddingDataset(ctx context.Context, limit int) ([]repository.JobEmbeddingRecord, error) {
	if m.listDataset == nil {
		return nil, nil
	}
	return m.listDataset(ctx, limit)
}

func (m *mockPostingRepo) CountPostings(context.Context) (int64, error) { return 0, nil }

type mockDecisionRepo struct {
	upserted []repository.JobDecision
	decided  []int64
	err      error
}

func (m *mockDecisionRepo) Upsert(_ context.Context, d repository.JobDecision) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, d)
	return nil
}

func (m *mockDecisionRepo) ListDecidedJobIDs(context.Context, string) ([]int64, error) {
	return m.decided, m.err
}

type mockResumeRepo struct {
	stored       map[string]repository.Resume
	embeddings   map[int64][]float32
	getEmbedding func(ctx context.Context, username string) ([]float32, error)
	matchResumes func(ctx context.Context, vec []float32, threshold float64, count int) ([]repository.ResumeSimilarityMatch, error)
}

func newMockResumeRepo() *mockResumeRepo {
	return &mockResumeRepo{stored: map[string]repository.Resume{}, embeddings: map[int64][]float32{}}
}

func (m *mockResumeRepo) FindByUsername(_ context.Context, username string) (repository.Resume, error) {
	r, ok := m.stored[username]
	if !ok {
		return repository.Resume{}, repository.ErrResumeNotFound
	}
	return r, nil
}

func (m *mockResumeRepo) Upsert(_ context.Context, username, resumeJSON string) error {
	id := int64(len(m.stored) + 1)
	if existing, ok := m.stored[username]; ok {
		id = existing.ID
	}
	m.stored[username] = repository.Resume{ID: id, Username: username, Resume: resumeJSON}
	return nil
}

func (m *mockResumeRepo) ListMissingEmbedding(context.Context, int) ([]repository.Resume, error) {
	return nil, nil
}

func (m *mockResumeRepo) SetEmbedding(_ context.Context, id int64, vec []float32, _ string) error {
	m.embeddings[id] = vec
	return nil
}

func (m *mockResumeRepo) GetEmbedding(ctx context.Context, username string) ([]float32, error) {
	if m.getEmbedding != nil {
		return m.getEmbedding(ctx, username)
	}
	return nil, repository.ErrResumeNotFound
}

func (m *mockResumeRepo) MatchByEmbedding(ctx context.Context, vec []float32, threshold float64, count int) ([]repository.ResumeSimilarityMatch, error) {
	if m.matchResumes == nil {
		return nil, nil
	}
	return m.matchResumes(ctx, vec, threshold, count)
}

func (m *mockResumeRepo) ListEmbeddingDataset(context.Context, int) ([]repository.ResumeEmbeddingRecord, error) {
	return nil, nil
}

type mockGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type mockProvider struct{ dim int }

func (m *mockProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, m.dim), nil
}
func (m *mockProvider) Model() string { return "mock-embed" }

func enrichedPosting(id int64, content string) repository.JobPosting {
	return repository.JobPosting{ID: id, Content: &content}
}

const goJob = `{"title":"Go Engineer","company":"Acme","location":{"city":"Berlin","countryCode":"DE"},"experience":"senior","skills":["go","postgresql"],"bonusSkills":["kubernetes"]}`
const pyJob = `{"title":"Python Engineer","company":"Globex","remote":true,"experience":"mid","skills":["python","django"]}`

const sampleResume = `{
	"basics":{"name":"J Doe","label":"Backend Engineer","location":{"city":"Berlin","countryCode":"DE"}},
	"work":[{"name":"Acme","position":"Engineer","startDate":"2016-01","endDate":"2024-01"}],
	"skills":[{"name":"Go","keywords":["PostgreSQL","Kubernetes"]}]
}`

func TestListJobs_ExcludesDecided(t *testing.T) {
	postings := &mockPostingRepo{
		listRecentEnriched: func(context.Context, int, int) ([]repository.JobPosting, error) {
			return []repository.JobPosting{enrichedPosting(1, goJob), enrichedPosting(2, pyJob)}, nil
		},
	}
	decisions := &mockDecisionRepo{decided: []int64{2}}
	uc := NewJobUsecase(postings, decisions, nil, testLogger())

	jobs, err := uc.ListJobs(context.Background(), ListJobsInput{Username: "jdoe", ExcludeDecided: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 1 {
		t.Fatalf("expected only undecided job 1, got %+v", jobs)
	}
}

func TestListJobs_DropsUnparsableContent(t *testing.T) {
	postings := &mockPostingRepo{
		listRecentEnriched: func(context.Context, int, int) ([]repository.JobPosting, error) {
			return []repository.JobPosting{enrichedPosting(1, goJob), enrichedPosting(2, "not json")}, nil
		},
	}
	uc := NewJobUsecase(postings, &mockDecisionRepo{}, nil, testLogger())

	jobs, err := uc.ListJobs(context.Background(), ListJobsInput{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected unparsable posting dropped, got %+v", jobs)
	}
}

func TestDecide_Validation(t *testing.T) {
	postings := &mockPostingRepo{
		findByID: func(_ context.Context, id int64) (repository.JobPosting, error) {
			if id == 1 {
				return enrichedPosting(1, goJob), nil
			}
			return repository.JobPosting{}, repository.ErrPostingNotFound
		},
	}
	decisions := &mockDecisionRepo{}
	uc := NewJobUsecase(postings, decisions, nil, testLogger())

	cases := []struct {
		name string
		in   DecideInput
		want error
	}{
		{"missing user", DecideInput{JobID: 1, Decision: "pass"}, ErrUnauthorized},
		{"bad decision", DecideInput{Username: "jdoe", JobID: 1, Decision: "maybe"}, ErrInvalidInput},
		{"bad id", DecideInput{Username: "jdoe", JobID: 0, Decision: "pass"}, ErrInvalidInput},
		{"unknown job", DecideInput{Username: "jdoe", JobID: 9, Decision: "pass"}, ErrJobNotFound},
	}
	for _, tc := range cases {
		if err := uc.Decide(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := uc.Decide(context.Background(), DecideInput{Username: "jdoe", JobID: 1, Decision: "Interested"}); err != nil {
		t.Fatalf("valid decision rejected: %v", err)
	}
	if len(decisions.upserted) != 1 || decisions.upserted[0].Decision != repository.DecisionInterested {
		t.Fatalf("decision not normalized and stored: %+v", decisions.upserted)
	}
}

func TestGenerateEmbedding_UnavailableWithoutProvider(t *testing.T) {
	uc := NewPathwaysUsecase(newMockResumeRepo(), &mockPostingRepo{}, nil, nil, testLogger())
	_, err := uc.GenerateEmbedding(context.Background(), GenerateEmbeddingInput{Username: "jdoe", ResumeJSON: sampleResume})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateEmbedding_PersistsVector(t *testing.T) {
	resumes := newMockResumeRepo()
	gen := &mockGenerator{response: "Backend engineer with eight years of Go."}
	embedder := embedding.NewGenerator(&mockProvider{dim: 768})
	uc := NewPathwaysUsecase(resumes, &mockPostingRepo{}, gen, embedder, testLogger())

	res, err := uc.GenerateEmbedding(context.Background(), GenerateEmbeddingInput{Username: "jdoe", ResumeJSON: sampleResume})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Description == "" || res.Model != "mock-embed" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Dimensions != embedding.CanonicalDim {
		t.Fatalf("expected canonical dimensions, got %d", res.Dimensions)
	}
	stored := resumes.stored["jdoe"]
	vec, ok := resumes.embeddings[stored.ID]
	if !ok || len(vec) != embedding.CanonicalDim {
		t.Fatalf("embedding not persisted at canonical length")
	}
}

func TestGenerateEmbedding_RejectsInvalidDocument(t *testing.T) {
	gen := &mockGenerator{response: "x"}
	embedder := embedding.NewGenerator(&mockProvider{dim: 768})
	uc := NewPathwaysUsecase(newMockResumeRepo(), &mockPostingRepo{}, gen, embedder, testLogger())

	_, err := uc.GenerateEmbedding(context.Background(), GenerateEmbeddingInput{Username: "jdoe", ResumeJSON: "{broken"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatches_RanksByScore(t *testing.T) {
	postings := &mockPostingRepo{
		listRecentEnriched: func(context.Context, int, int) ([]repository.JobPosting, error) {
			return []repository.JobPosting{enrichedPosting(1, pyJob), enrichedPosting(2, goJob)}, nil
		},
	}
	uc := NewPathwaysUsecase(newMockResumeRepo(), postings, &mockGenerator{response: "x"}, nil, testLogger())

	matches, err := uc.Matches(context.Background(), MatchesInput{ResumeJSON: sampleResume})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].JobID != 2 {
		t.Fatalf("expected Go job ranked first, got %+v", matches)
	}
	if matches[0].Score <= matches[1].Score {
		t.Fatalf("ranking not descending: %d vs %d", matches[0].Score, matches[1].Score)
	}
	if len(matches[0].Breakdown) == 0 {
		t.Fatalf("breakdown missing")
	}
}

func TestMatchInsights_CombinesScoreAndNarrative(t *testing.T) {
	postings := &mockPostingRepo{
		findByID: func(context.Context, int64) (repository.JobPosting, error) {
			return enrichedPosting(7, goJob), nil
		},
	}
	gen := &mockGenerator{response: "Strong overlap on Go and PostgreSQL."}
	uc := NewPathwaysUsecase(newMockResumeRepo(), postings, gen, nil, testLogger())

	insight, err := uc.MatchInsights(context.Background(), InsightInput{ResumeJSON: sampleResume, JobID: 7})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if insight.Narrative == "" || insight.Score <= 0 {
		t.Fatalf("unexpected insight: %+v", insight)
	}
	if insight.JobID != 7 || insight.Title != "Go Engineer" {
		t.Fatalf("unexpected job identity: %+v", insight)
	}
}

func TestMatchInsights_NotEnriched(t *testing.T) {
	postings := &mockPostingRepo{
		findByID: func(context.Context, int64) (repository.JobPosting, error) {
			return repository.JobPosting{ID: 7}, nil
		},
	}
	uc := NewPathwaysUsecase(newMockResumeRepo(), postings, &mockGenerator{response: "x"}, nil, testLogger())

	_, err := uc.MatchInsights(context.Background(), InsightInput{ResumeJSON: sampleResume, JobID: 7})
	if !errors.Is(err, ErrJobNotEnriched) {
		t.Fatalf("expected ErrJobNotEnriched, got %v", err)
	}
}

func TestSimilarResumes_ExcludesSelfAndRequiresEmbedding(t *testing.T) {
	resumes := newMockResumeRepo()
	uc := NewSimilarityUsecase(resumes, &mockPostingRepo{}, nil, testLogger())

	_, err := uc.SimilarResumes(context.Background(), SimilarityQuery{Username: "jdoe", Threshold: 0.5, Count: 5})
	if !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound without stored embedding, got %v", err)
	}

	resumes.getEmbedding = func(context.Context, string) ([]float32, error) {
		return make([]float32, 8), nil
	}
	resumes.matchResumes = func(context.Context, []float32, float64, int) ([]repository.ResumeSimilarityMatch, error) {
		return []repository.ResumeSimilarityMatch{
			{ID: 1, Username: "jdoe", Similarity: 1},
			{ID: 2, Username: "other", Similarity: 0.9},
		}, nil
	}

	got, err := uc.SimilarResumes(context.Background(), SimilarityQuery{Username: "jdoe", Threshold: 0.5, Count: 5})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].Username != "other" {
		t.Fatalf("expected self excluded, got %+v", got)
	}
}

func TestSimilarity_ValidatesThreshold(t *testing.T) {
	uc := NewSimilarityUsecase(newMockResumeRepo(), &mockPostingRepo{}, nil, testLogger())
	_, err := uc.SimilarJobs(context.Background(), SimilarityQuery{Username: "jdoe", Threshold: 1.5, Count: 5})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
