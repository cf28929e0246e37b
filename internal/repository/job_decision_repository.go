package repository

import (
	"context"

	"resume-pathways/internal/database"
)

const (
	DecisionInterested = "interested"
	DecisionPass       = "pass"
)

type JobDecision struct {
	Username string
	JobID    int64
	Decision string
}

type JobDecisionRepository interface {
	Upsert(ctx context.Context, d JobDecision) error
	ListDecidedJobIDs(ctx context.Context, username string) ([]int64, error)
}

type PostgresJobDecisionRepository struct {
	db database.DB
}

func NewPostgresJobDecisionRepository(db database.DB) *PostgresJobDecisionRepository {
	return &PostgresJobDecisionRepository{db: db}
}

// Upsert records a user's call on a posting. Re-deciding overwrites the
// previous decision, last write wins.
func (r *PostgresJobDecisionRepository) Upsert(ctx context.Context, d JobDecision) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_decisions (username, job_id, decision)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username, job_id) DO UPDATE SET
			decision = EXCLUDED.decision,
			updated_at = now()`,
		d.Username, d.JobID, d.Decision,
	)
	return err
}

func (r *PostgresJobDecisionRepository) ListDecidedJobIDs(ctx context.Context, username string) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT job_id FROM job_decisions WHERE username = $1`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
