package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/repository"
	"github.com/stemsi/exstem-variability/internal/response"
	"github.com/stemsi/exstem-variability/internal/service"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// failFromError maps service and repository errors onto API error codes.
func failFromError(c *gin.Context, log zerolog.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", response.GetRequestID(c)).
			Msg("Request failed")
	}
	response.Fail(c, status, code)
}

func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, model.ErrUnknownEnvironment):
		return http.StatusBadRequest, response.ErrUnknownEnvironment
	case errors.Is(err, repository.ErrInvalidExamID):
		return http.StatusBadRequest, response.ErrInvalidID
	case errors.Is(err, service.ErrMalformedGenerations):
		return http.StatusBadRequest, response.ErrInvalidPayload
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, response.ErrTimeout
	case errors.Is(err, repository.ErrEnvironmentNotConfigured),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsNetworkError(err),
		mongo.IsTimeout(err):
		return http.StatusServiceUnavailable, response.ErrDatabaseUnavailable
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}
