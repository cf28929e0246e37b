package handler

import (
	"resume-pathways/internal/delivery/http/middleware"
	"resume-pathways/internal/pkg/response"
	"resume-pathways/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	uc usecase.JobUsecase
}

type listJobsRequest struct {
	Limit          int  `json:"limit"`
	Offset         int  `json:"offset"`
	ExcludeDecided bool `json:"excludeDecided"`
}

type decisionRequest struct {
	JobID    int64  `json:"jobId"`
	Decision string `json:"decision"`
}

func NewJobsHandler(uc usecase.JobUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

// RegisterRoutes mounts the list route; the decision route is mounted
// separately behind mandatory auth.
func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/jobs", h.ListJobs)
}

func (h *JobsHandler) RegisterProtectedRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/jobs/decision", h.Decide)
}

func (h *JobsHandler) ListJobs(c fiber.Ctx) error {
	var req listJobsRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	username := middleware.Username(c)
	if req.ExcludeDecided && username == "" {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Authentication required to exclude decided jobs", nil, nil)
	}

	jobs, err := h.uc.ListJobs(c.Context(), usecase.ListJobsInput{
		Username:       username,
		ExcludeDecided: req.ExcludeDecided,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", jobs)
}

func (h *JobsHandler) Decide(c fiber.Ctx) error {
	var req decisionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	err := h.uc.Decide(c.Context(), usecase.DecideInput{
		Username: middleware.Username(c),
		JobID:    req.JobID,
		Decision: req.Decision,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", map[string]any{
		"jobId":    req.JobID,
		"decision": req.Decision,
	})
}
