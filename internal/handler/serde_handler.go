package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/response"
	"github.com/stemsi/exstem-variability/internal/serde"
	"github.com/stemsi/exstem-variability/internal/validator"
)

// SerdeHandler exposes the wire/application normalizer.
type SerdeHandler struct{}

// NewSerdeHandler creates a new SerdeHandler.
func NewSerdeHandler() *SerdeHandler {
	return &SerdeHandler{}
}

// ToApplication godoc
// POST /api/v1/serde/application
func (h *SerdeHandler) ToApplication(c *gin.Context) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, validator.TranslateErrors(err))
		return
	}

	response.Success(c, http.StatusOK, serde.ToApplication(body))
}

// ToWire godoc
// POST /api/v1/serde/wire?root_depth=0|-1
func (h *SerdeHandler) ToWire(c *gin.Context) {
	var query model.WireQuery
	if fields := validator.BindQuery(c, &query); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var body any
	if err := c.ShouldBindJSON(&body); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, validator.TranslateErrors(err))
		return
	}

	response.Success(c, http.StatusOK, serde.ToWire(body, query.RootDepth))
}
