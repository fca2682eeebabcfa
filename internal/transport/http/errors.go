package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "pyconsole/internal/domain/console"
	"pyconsole/internal/domain/execution"
)

var (
	errBadRequest = errors.New("bad request")
	// errScriptTooLarge is reported for uploads above the configured limit.
	errScriptTooLarge = errors.New("script too large")
)

// statusFromError maps service errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, execution.ErrInvalidPackage), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errScriptTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The session slot could not be taken before the request ended.
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func writeServiceError(c *gin.Context, err error) {
	writeError(c, statusFromError(err), err)
}
