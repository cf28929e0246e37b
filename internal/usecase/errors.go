package usecase

import "errors"

// Sentinel errors shared across usecases. Handlers map these onto HTTP
// statuses; anything unrecognized becomes a generic 500 with detail only in
// server logs.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrJobNotFound    = errors.New("job not found")
	ErrJobNotEnriched = errors.New("job has no structured content")
	ErrResumeNotFound = errors.New("resume not found")
	ErrUnavailable    = errors.New("service unavailable")
	ErrInternal       = errors.New("internal error")
)
