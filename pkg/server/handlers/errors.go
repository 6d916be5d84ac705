package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/rembed/pkg/server/dto"
	"github.com/soundprediction/rembed/pkg/types"
)

// statusForError maps the error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch types.ErrorKind(err) {
	case types.KindMalformedConfig, types.KindEmptyInput, types.KindEmptyBatch:
		return http.StatusBadRequest
	case types.KindClientNotRegistered:
		return http.StatusNotFound
	case types.KindMalformedImage:
		return http.StatusUnprocessableEntity
	case types.KindProviderError:
		var perr *types.ProviderError
		if errors.As(err, &perr) && perr.Kind == types.ProviderUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse
func writeError(c *gin.Context, err error) {
	status := statusForError(err)
	c.JSON(status, dto.ErrorResponse{
		Error:   types.ErrorKind(err),
		Message: err.Error(),
		Code:    status,
	})
}

// writeBadRequest writes a request validation failure
func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
