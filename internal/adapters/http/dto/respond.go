package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdclab/mdc-service/internal/domain"
	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		// Unknown errors get a generic message to avoid leaking internals
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// HandleError writes an error response to the gin.Context.
// It maps domain errors to HTTP responses and includes the request id
// from the diagnostic context when present.
func HandleError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status, errResp := MapDomainError(err)

	if requestID, ok := mdc.Get(ctx, mdc.KeyRequestID); ok {
		errResp.RequestID = requestID
	}

	// Log internal errors with full details
	if status == http.StatusInternalServerError {
		logger := logging.FromContext(ctx)
		logger.ErrorContext(ctx, "internal error", "error", err.Error())
	}

	c.JSON(status, errResp)
}

// HandleErrorCode writes an error response with a specific error code.
// Use this for adapter-level errors (e.g., missing parameters) that
// don't originate from domain errors.
func HandleErrorCode(c *gin.Context, code, message string) {
	errResp := NewErrorResponse(code, message)

	if requestID, ok := mdc.Get(c.Request.Context(), mdc.KeyRequestID); ok {
		errResp.RequestID = requestID
	}

	c.JSON(HTTPStatusFromCode(code), errResp)
}
