package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/http/middleware"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      apperrors.ErrorCode `json:"code"`
	Message   string              `json:"message"`
	Details   string              `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// RespondError maps err to its HTTP status and writes the error body.
// Details of server-side failures stay in the logs.
func RespondError(c *gin.Context, err error) {
	se := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(se.Code)

	_ = c.Error(err)

	resp := ErrorResponse{
		Code:      se.Code,
		Message:   se.Message,
		RequestID: middleware.GetRequestID(c),
	}
	if status < http.StatusInternalServerError {
		resp.Details = se.Details
	}
	c.AbortWithStatusJSON(status, resp)
}

// NoRoute answers requests that match no route.
func NoRoute(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
		Code:      apperrors.ErrCodeResourceNotFound,
		Message:   "route not found",
		Details:   c.Request.Method + " " + c.Request.URL.Path,
		RequestID: middleware.GetRequestID(c),
	})
}
