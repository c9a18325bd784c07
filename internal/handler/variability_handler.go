package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/middleware"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/response"
	"github.com/stemsi/exstem-variability/internal/service"
	"github.com/stemsi/exstem-variability/internal/validator"
)

// VariabilityHandler serves generation variability reports.
type VariabilityHandler struct {
	variabilityService *service.VariabilityService
	log                zerolog.Logger
}

// NewVariabilityHandler creates a new VariabilityHandler.
func NewVariabilityHandler(variabilityService *service.VariabilityService, log zerolog.Logger) *VariabilityHandler {
	return &VariabilityHandler{
		variabilityService: variabilityService,
		log:                log.With().Str("component", "variability_handler").Logger(),
	}
}

// GetReport godoc
// GET /api/v1/exams/:exam_id/variability
// Returns the Staging and Production variability of an exam, cached. The
// client may keep it for whatever remains of the server-side TTL.
func (h *VariabilityHandler) GetReport(c *gin.Context) {
	var uri model.ExamURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.variabilityService.Report(c.Request.Context(), uri.ExamID)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	middleware.PrivateUntil(c, report.ExpiresAt)
	response.Success(c, http.StatusOK, report)
}

// RefreshReport godoc
// POST /api/v1/exams/:exam_id/variability/refresh
// Drops the cached report and recomputes it.
func (h *VariabilityHandler) RefreshReport(c *gin.Context) {
	var uri model.ExamURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.variabilityService.Refresh(c.Request.Context(), uri.ExamID)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	h.log.Info().Str("exam_id", uri.ExamID).Msg("Variability report refreshed")
	response.Success(c, http.StatusOK, report)
}

// Analyze godoc
// POST /api/v1/variability
// Computes metrics over wire-format generations supplied in the body.
func (h *VariabilityHandler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	metrics, err := h.variabilityService.Analyze(req.Generations)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, metrics)
}
