package handler

import (
	"strconv"

	"resume-pathways/internal/delivery/http/middleware"
	"resume-pathways/internal/pkg/response"
	"resume-pathways/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SimilarityHandler struct {
	uc usecase.SimilarityUsecase
}

type similarityQueryRequest struct {
	Username  string  `json:"username"`
	Threshold float64 `json:"threshold"`
	Count     int     `json:"count"`
}

func NewSimilarityHandler(uc usecase.SimilarityUsecase) *SimilarityHandler {
	return &SimilarityHandler{uc: uc}
}

func (h *SimilarityHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/similarity", h.ResumeDataset)
	r.Post("/similarity", h.SimilarResumes)
	r.Get("/job-similarity", h.JobDataset)
	r.Post("/job-similarity", h.SimilarJobs)
}

func (h *SimilarityHandler) ResumeDataset(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 200)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	points, err := h.uc.ResumeDataset(c.Context(), limit)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", points)
}

func (h *SimilarityHandler) JobDataset(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 200)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	points, err := h.uc.JobDataset(c.Context(), limit)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", points)
}

func (h *SimilarityHandler) SimilarResumes(c fiber.Ctx) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return err
	}
	matches, err := h.uc.SimilarResumes(c.Context(), q)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", matches)
}

func (h *SimilarityHandler) SimilarJobs(c fiber.Ctx) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return err
	}
	matches, err := h.uc.SimilarJobs(c.Context(), q)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", matches)
}

func (h *SimilarityHandler) bindQuery(c fiber.Ctx) (usecase.SimilarityQuery, error) {
	var req similarityQueryRequest
	if err := c.Bind().Body(&req); err != nil {
		return usecase.SimilarityQuery{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.Username == "" {
		req.Username = middleware.Username(c)
	}
	if req.Threshold == 0 {
		req.Threshold = 0.5
	}
	if req.Count <= 0 {
		req.Count = 10
	}
	return usecase.SimilarityQuery{Username: req.Username, Threshold: req.Threshold, Count: req.Count}, nil
}

func queryInt(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
