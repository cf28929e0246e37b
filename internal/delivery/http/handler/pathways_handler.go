package handler

import (
	"encoding/json"

	"resume-pathways/internal/delivery/http/middleware"
	"resume-pathways/internal/pkg/response"
	"resume-pathways/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PathwaysHandler struct {
	uc usecase.PathwaysUsecase
}

type embeddingRequest struct {
	Resume json.RawMessage `json:"resume"`
}

type matchesRequest struct {
	Resume            json.RawMessage `json:"resume"`
	SalaryExpectation float64         `json:"salaryExpectation"`
	Limit             int             `json:"limit"`
}

type insightRequest struct {
	Resume            json.RawMessage `json:"resume"`
	JobID             int64           `json:"jobId"`
	SalaryExpectation float64         `json:"salaryExpectation"`
}

func NewPathwaysHandler(uc usecase.PathwaysUsecase) *PathwaysHandler {
	return &PathwaysHandler{uc: uc}
}

func (h *PathwaysHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/pathways/matches", h.Matches)
	r.Post("/pathways/match-insights", h.MatchInsights)
}

func (h *PathwaysHandler) RegisterProtectedRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/pathways/embedding", h.GenerateEmbedding)
}

func (h *PathwaysHandler) GenerateEmbedding(c fiber.Ctx) error {
	var req embeddingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	result, err := h.uc.GenerateEmbedding(c.Context(), usecase.GenerateEmbeddingInput{
		Username:   middleware.Username(c),
		ResumeJSON: string(req.Resume),
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", result)
}

func (h *PathwaysHandler) Matches(c fiber.Ctx) error {
	var req matchesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	matches, err := h.uc.Matches(c.Context(), usecase.MatchesInput{
		Username:          middleware.Username(c),
		ResumeJSON:        string(req.Resume),
		SalaryExpectation: req.SalaryExpectation,
		Limit:             req.Limit,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", matches)
}

func (h *PathwaysHandler) MatchInsights(c fiber.Ctx) error {
	var req insightRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	insight, err := h.uc.MatchInsights(c.Context(), usecase.InsightInput{
		Username:          middleware.Username(c),
		ResumeJSON:        string(req.Resume),
		JobID:             req.JobID,
		SalaryExpectation: req.SalaryExpectation,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", insight)
}
