package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"resume-pathways/internal/repository"
)

// ResetFailed clears the failure sentinel for postings that failed within
// the trailing window, putting them back in the enrichment queue with a
// fresh retry budget. An operator action, not part of the scheduled run.
func ResetFailed(ctx context.Context, postings repository.JobPostingRepository, window time.Duration, logger *log.Logger) (int64, error) {
	if postings == nil {
		return 0, errors.New("posting repository is required")
	}
	if window <= 0 {
		return 0, errors.New("reset window must be positive")
	}
	if logger == nil {
		logger = log.Default()
	}

	n, err := postings.ResetFailed(ctx, window)
	if err != nil {
		return 0, err
	}
	logger.Printf("pipeline=reset status=done window=%s reset=%d", window, n)
	return n, nil
}
