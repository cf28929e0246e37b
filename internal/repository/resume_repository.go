package repository

import (
	"context"
	"errors"
	"time"

	"resume-pathways/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

var ErrResumeNotFound = errors.New("resume not found")

type Resume struct {
	ID        int64
	Username  string
	Resume    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ResumeSimilarityMatch struct {
	ID         int64
	Username   string
	Similarity float64
}

type ResumeEmbeddingRecord struct {
	ID       int64
	Username string
	Vector   []float32
}

type ResumeRepository interface {
	FindByUsername(ctx context.Context, username string) (Resume, error)
	Upsert(ctx context.Context, username, resumeJSON string) error
	ListMissingEmbedding(ctx context.Context, limit int) ([]Resume, error)
	SetEmbedding(ctx context.Context, id int64, vec []float32, model string) error
	GetEmbedding(ctx context.Context, username string) ([]float32, error)
	MatchByEmbedding(ctx context.Context, vec []float32, threshold float64, count int) ([]ResumeSimilarityMatch, error)
	ListEmbeddingDataset(ctx context.Context, limit int) ([]ResumeEmbeddingRecord, error)
}

type PostgresResumeRepository struct {
	db database.DB
}

func NewPostgresResumeRepository(db database.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{db: db}
}

func (r *PostgresResumeRepository) FindByUsername(ctx context.Context, username string) (Resume, error) {
	var res Resume
	row := r.db.QueryRow(ctx,
		`SELECT id, username, resume, created_at, updated_at
		 FROM resumes
		 WHERE username = $1`,
		username,
	)
	if err := row.Scan(&res.ID, &res.Username, &res.Resume, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resume{}, ErrResumeNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// Upsert saves the document and drops any stored embedding: an edited
// resume must not keep matching against its pre-edit vector. The backfill
// picks it up on the next run.
func (r *PostgresResumeRepository) Upsert(ctx context.Context, username, resumeJSON string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO resumes (username, resume)
		 VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET
			resume = EXCLUDED.resume,
			embedding = NULL,
			embedding_model = NULL,
			updated_at = now()`,
		username, resumeJSON,
	)
	return err
}

func (r *PostgresResumeRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]Resume, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, username, resume, created_at, updated_at
		 FROM resumes
		 WHERE embedding IS NULL
		 ORDER BY updated_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		var res Resume
		if err := rows.Scan(&res.ID, &res.Username, &res.Resume, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PostgresResumeRepository) SetEmbedding(ctx context.Context, id int64, vec []float32, model string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE resumes SET embedding = $2, embedding_model = $3, updated_at = now() WHERE id = $1`,
		id, pgvector.NewVector(vec), model,
	)
	return err
}

// GetEmbedding returns the stored vector for a user, or ErrResumeNotFound
// when no embedded resume exists yet.
func (r *PostgresResumeRepository) GetEmbedding(ctx context.Context, username string) ([]float32, error) {
	var vecText *string
	row := r.db.QueryRow(ctx,
		`SELECT embedding::text FROM resumes WHERE username = $1`,
		username,
	)
	if err := row.Scan(&vecText); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResumeNotFound
		}
		return nil, err
	}
	if vecText == nil {
		return nil, ErrResumeNotFound
	}
	return ParseVectorText(*vecText)
}

func (r *PostgresResumeRepository) MatchByEmbedding(ctx context.Context, vec []float32, threshold float64, count int) ([]ResumeSimilarityMatch, error) {
	if count <= 0 {
		count = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, username, similarity
		 FROM match_resumes($1, $2, $3)`,
		pgvector.NewVector(vec), threshold, count,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ResumeSimilarityMatch, 0, count)
	for rows.Next() {
		var m ResumeSimilarityMatch
		if err := rows.Scan(&m.ID, &m.Username, &m.Similarity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresResumeRepository) ListEmbeddingDataset(ctx context.Context, limit int) ([]ResumeEmbeddingRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, username, embedding::text
		 FROM resumes
		 WHERE embedding IS NOT NULL
		 ORDER BY updated_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ResumeEmbeddingRecord, 0, limit)
	for rows.Next() {
		var rec ResumeEmbeddingRecord
		var vecText string
		if err := rows.Scan(&rec.ID, &rec.Username, &vecText); err != nil {
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
