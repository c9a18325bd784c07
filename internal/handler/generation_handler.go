package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/response"
	"github.com/stemsi/exstem-variability/internal/service"
	"github.com/stemsi/exstem-variability/internal/validator"
)

// GenerationHandler serves generated exams per environment.
type GenerationHandler struct {
	generationService *service.GenerationService
	log               zerolog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService *service.GenerationService, log zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		log:               log.With().Str("component", "generation_handler").Logger(),
	}
}

// ListGenerations godoc
// GET /api/v1/exams/:exam_id/generations/:environment
// Lists generated exams in wire format, or application format with
// ?format=application. page/per_page paginate the list.
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	var uri model.GenerationURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var query model.GenerationQuery
	if fields := validator.BindQuery(c, &query); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	env, err := model.ParseEnvironment(uri.Environment)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownEnvironment)
		return
	}

	format := service.FormatWire
	if query.Format != "" {
		format = service.Format(query.Format)
	}

	generations, err := h.generationService.List(c.Request.Context(), env, uri.ExamID, format)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	if generations == nil {
		generations = []any{}
	}

	if query.Page == 0 && query.PerPage == 0 {
		response.Success(c, http.StatusOK, gin.H{"generations": generations})
		return
	}

	page := max(query.Page, 1)
	pagination := response.NewPagination(page, query.PerPage, len(generations))
	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"generations": service.Page(generations, page, pagination.PerPage)},
		pagination,
	)
}
