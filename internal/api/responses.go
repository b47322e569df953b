package api

import (
	"github.com/gin-gonic/gin"

	"gymflow/internal/apperr"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Fail writes err as a JSON error response using the apperr kind mapping.
// Unclassified failures are masked behind a generic message; their detail
// belongs in logs, not user-facing responses.
func Fail(c *gin.Context, err error) {
	msg := err.Error()
	if apperr.KindOf(err) == apperr.KindUnknown {
		msg = "internal error"
	}
	c.JSON(apperr.HTTPStatus(err), ErrorResponse{Error: msg})
}
