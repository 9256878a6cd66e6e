package handler

import (
	"errors"
	"net/http"

	"animeschedule/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statusFor maps the error taxonomy to HTTP. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConflict), errors.Is(err, shared.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrUnknownTimeZone),
		errors.Is(err, shared.ErrInvalidLocalTime):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError never leaks the cause of a 500 to the client.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
