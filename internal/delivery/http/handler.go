package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/competitorlens/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName    = "competitorlens-backend"
	serviceVersion = "1.0.0"
)

// ResearchService answers competitor research queries
type ResearchService interface {
	Research(ctx context.Context, query string) (*domain.SearchResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	researchService ResearchService
	logger          *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes research
// endpoints answer 501.
func NewHandler(researchService ResearchService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		researchService: researchService,
		logger:          logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Research handles GET /api/v1/research?query=...
func (h *Handler) Research(c *gin.Context) {
	h.research(c, c.Query("query"))
}

// ResearchJSON handles POST /api/v1/research with a {"query": "..."} body
func (h *Handler) ResearchJSON(c *gin.Context) {
	var req domain.ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.SearchResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}
	h.research(c, req.Query)
}

func (h *Handler) research(c *gin.Context, query string) {
	if h.researchService == nil {
		c.JSON(http.StatusNotImplemented, domain.SearchResponse{
			Success: false,
			Error:   "research service not configured",
		})
		return
	}

	resp, err := h.researchService.Research(c.Request.Context(), query)
	if err != nil {
		h.logger.Warn("research request failed",
			zap.String("query", query),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
	}
	c.JSON(statusFor(err), resp)
}

// statusFor maps a classified pipeline error to an HTTP status
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSearchProviderFailure), errors.Is(err, domain.ErrLLMFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
