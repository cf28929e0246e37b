package repository

import (
	"context"
	"errors"
	"time"

	"resume-pathways/internal/database"
	"resume-pathways/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

var ErrPostingNotFound = errors.New("job posting not found")

type JobPosting struct {
	ID         int64
	UUID       uuid.UUID
	Source     string
	SourceID   string
	URL        string
	RawContent string
	Content    *string
	RetryCount int
	LastError  *string
	FailedAt   *time.Time
	PostedAt   *time.Time
	CreatedAt  time.Time
}

type JobPostingInsert struct {
	Source     string
	SourceID   string
	URL        string
	RawContent string
	RawPayload []byte
	PostedAt   *time.Time
}

type JobSimilarityMatch struct {
	ID         int64
	Content    string
	URL        string
	PostedAt   *time.Time
	Similarity float64
}

type JobEmbeddingRecord struct {
	ID       int64
	Content  string
	URL      string
	PostedAt *time.Time
	Vector   []float32
}

type JobPostingRepository interface {
	InsertIfNew(ctx context.Context, in JobPostingInsert) (bool, error)
	FindByID(ctx context.Context, id int64) (JobPosting, error)
	ListPendingEnrichment(ctx context.Context, limit, maxRetries int) ([]JobPosting, error)
	SetEnriched(ctx context.Context, id int64, content string) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
	RecordEnrichmentFailure(ctx context.Context, id int64, lastError string, maxRetries int) (bool, error)
	ResetFailed(ctx context.Context, window time.Duration) (int64, error)
	ListMissingEmbedding(ctx context.Context, limit int) ([]JobPosting, error)
	SetEmbedding(ctx context.Context, id int64, vec []float32, model string) error
	ListRecentEnriched(ctx context.Context, limit, offset int) ([]JobPosting, error)
	MatchByEmbedding(ctx context.Context, vec []float32, threshold float64, count int) ([]JobSimilarityMatch, error)
	ListEmbeddingDataset(ctx context.Context, limit int) ([]JobEmbeddingRecord, error)
	CountPostings(ctx context.Context) (int64, error)
}

type PostgresJobPostingRepository struct {
	db database.DB
}

func NewPostgresJobPostingRepository(db database.DB) *PostgresJobPostingRepository {
	return &PostgresJobPostingRepository{db: db}
}

// InsertIfNew inserts a posting keyed on (source, source_id). Conflicts are
// duplicate ingests, reported as skipped rather than failed, which keeps
// ingestion idempotent and safely re-runnable.
func (r *PostgresJobPostingRepository) InsertIfNew(ctx context.Context, in JobPostingInsert) (bool, error) {
	affected, err := r.db.Exec(ctx,
		`INSERT INTO job_postings (source, source_id, url, raw_content, raw_payload, posted_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		 ON CONFLICT (source, source_id) DO NOTHING`,
		in.Source, in.SourceID, in.URL, in.RawContent, in.RawPayload, in.PostedAt,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresJobPostingRepository) FindByID(ctx context.Context, id int64) (JobPosting, error) {
	var p JobPosting
	row := r.db.QueryRow(ctx,
		`SELECT id, uuid, source, source_id, COALESCE(url, ''), raw_content, content, retry_count, last_error, failed_at, posted_at, created_at
		 FROM job_postings
		 WHERE id = $1`,
		id,
	)
	if err := row.Scan(&p.ID, &p.UUID, &p.Source, &p.SourceID, &p.URL, &p.RawContent, &p.Content, &p.RetryCount, &p.LastError, &p.FailedAt, &p.PostedAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JobPosting{}, ErrPostingNotFound
		}
		return JobPosting{}, err
	}
	return p, nil
}

func (r *PostgresJobPostingRepository) ListPendingEnrichment(ctx context.Context, limit, maxRetries int) ([]JobPosting, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, uuid, source, source_id, COALESCE(url, ''), raw_content, retry_count, posted_at, created_at
		 FROM job_postings
		 WHERE content IS NULL AND retry_count < $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		maxRetries, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobPosting, 0)
	for rows.Next() {
		var p JobPosting
		if err := rows.Scan(&p.ID, &p.UUID, &p.Source, &p.SourceID, &p.URL, &p.RawContent, &p.RetryCount, &p.PostedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresJobPostingRepository) SetEnriched(ctx context.Context, id int64, content string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE job_postings SET content = $2, last_error = NULL WHERE id = $1`,
		id, content,
	)
	return err
}

// MarkFailed writes the failure sentinel immediately: permanent content
// errors get no retries.
func (r *PostgresJobPostingRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE job_postings SET content = $2, last_error = $3, failed_at = now() WHERE id = $1`,
		id, job.FailedSentinel, lastError,
	)
	return err
}

// RecordEnrichmentFailure increments the retry counter. The run that
// reaches the budget writes the sentinel in the same update, so the count
// freezes at the ceiling and the sentinel is set exactly once. Returns
// whether the posting is now permanently failed.
func (r *PostgresJobPostingRepository) RecordEnrichmentFailure(ctx context.Context, id int64, lastError string, maxRetries int) (bool, error) {
	var failed bool
	row := r.db.QueryRow(ctx,
		`UPDATE job_postings SET
			retry_count = retry_count + 1,
			last_error = $2,
			content = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE content END,
			failed_at = CASE WHEN retry_count + 1 >= $3 THEN now() ELSE failed_at END
		 WHERE id = $1
		 RETURNING content IS NOT DISTINCT FROM $4`,
		id, lastError, maxRetries, job.FailedSentinel,
	)
	if err := row.Scan(&failed); err != nil {
		return false, err
	}
	return failed, nil
}

// ResetFailed clears the sentinel and retry state for postings that failed
// within the trailing window, re-queuing them for enrichment. Older
// failures stay untouched.
func (r *PostgresJobPostingRepository) ResetFailed(ctx context.Context, window time.Duration) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE job_postings SET
			content = NULL,
			retry_count = 0,
			last_error = NULL,
			failed_at = NULL
		 WHERE content = $1 AND failed_at >= now() - make_interval(secs => $2)`,
		job.FailedSentinel, window.Seconds(),
	)
}

func (r *PostgresJobPostingRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]JobPosting, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, uuid, source, source_id, COALESCE(url, ''), raw_content, content, retry_count, posted_at, created_at
		 FROM job_postings
		 WHERE embedding IS NULL AND content IS NOT NULL AND content <> $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		job.FailedSentinel, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobPosting, 0)
	for rows.Next() {
		var p JobPosting
		if err := rows.Scan(&p.ID, &p.UUID, &p.Source, &p.SourceID, &p.URL, &p.RawContent, &p.Content, &p.RetryCount, &p.PostedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresJobPostingRepository) SetEmbedding(ctx context.Context, id int64, vec []float32, model string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE job_postings SET embedding = $2, embedding_model = $3 WHERE id = $1`,
		id, pgvector.NewVector(vec), model,
	)
	return err
}

func (r *PostgresJobPostingRepository) ListRecentEnriched(ctx context.Context, limit, offset int) ([]JobPosting, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, uuid, source, source_id, COALESCE(url, ''), raw_content, content, retry_count, posted_at, created_at
		 FROM job_postings
		 WHERE content IS NOT NULL AND content <> $1
		 ORDER BY posted_at DESC NULLS LAST, created_at DESC
		 LIMIT $2 OFFSET $3`,
		job.FailedSentinel, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobPosting, 0)
	for rows.Next() {
		var p JobPosting
		if err := rows.Scan(&p.ID, &p.UUID, &p.Source, &p.SourceID, &p.URL, &p.RawContent, &p.Content, &p.RetryCount, &p.PostedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MatchByEmbedding delegates nearest-neighbor ranking to the database-side
// similarity function.
func (r *PostgresJobPostingRepository) MatchByEmbedding(ctx context.Context, vec []float32, threshold float64, count int) ([]JobSimilarityMatch, error) {
	if count <= 0 {
		count = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, content, COALESCE(url, ''), posted_at, similarity
		 FROM match_job_postings($1, $2, $3)`,
		pgvector.NewVector(vec), threshold, count,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobSimilarityMatch, 0, count)
	for rows.Next() {
		var m JobSimilarityMatch
		if err := rows.Scan(&m.ID, &m.Content, &m.URL, &m.PostedAt, &m.Similarity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListEmbeddingDataset returns a bounded, recency-ordered set of records
// with embeddings present, carrying only the fields the visualization
// needs.
func (r *PostgresJobPostingRepository) ListEmbeddingDataset(ctx context.Context, limit int) ([]JobEmbeddingRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, content, COALESCE(url, ''), posted_at, embedding::text
		 FROM job_postings
		 WHERE embedding IS NOT NULL AND content IS NOT NULL AND content <> $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		job.FailedSentinel, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobEmbeddingRecord, 0, limit)
	for rows.Next() {
		var rec JobEmbeddingRecord
		var vecText string
		if err := rows.Scan(&rec.ID, &rec.Content, &rec.URL, &rec.PostedAt, &vecText); err != nil {
			return nil, err
		}
		vec, err := ParseVectorText(vecText)
		if err != nil {
			continue
		}
		rec.Vector = vec
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresJobPostingRepository) CountPostings(ctx context.Context) (int64, error) {
	var n int64
	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
