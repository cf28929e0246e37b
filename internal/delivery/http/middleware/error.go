package middleware

import (
	"errors"
	"log"

	"resume-pathways/internal/pkg/response"
	"resume-pathways/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

// Middleware converts every error reaching the edge into the response
// envelope. 5xx detail stays in server logs and never reaches clients.
func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("panic recovered: %v", r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := m.normalizeError(err)
		return response.Error(c, status, msg, data)
	}
}

func (m *ErrorMiddleware) normalizeError(err error) (int, string, any) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 || status >= 500 {
			m.logger.Printf("http error status=%d error=%v", status, appErr)
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, appErr.Data
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error(), nil
	case errors.Is(err, usecase.ErrUnauthorized):
		return fiber.StatusUnauthorized, response.MessageUnauthorized, nil
	case errors.Is(err, usecase.ErrJobNotFound), errors.Is(err, usecase.ErrResumeNotFound):
		return fiber.StatusNotFound, err.Error(), nil
	case errors.Is(err, usecase.ErrJobNotEnriched):
		return fiber.StatusUnprocessableEntity, err.Error(), nil
	case errors.Is(err, usecase.ErrUnavailable):
		return fiber.StatusServiceUnavailable, response.MessageUnavailable, nil
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code > 0 && fiberErr.Code < 500 {
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessage(fiberErr.Code)
		}
		return fiberErr.Code, msg, nil
	}

	m.logger.Printf("http error status=500 error=%v", err)
	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
