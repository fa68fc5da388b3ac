package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/logger"
)

// StatusFromError maps an error kind to its HTTP status code
func StatusFromError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidCredentials, apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError writes a JSON error. Client errors carry {message}; server
// faults are logged in full and answered with internalBody only.
func HandleAPIError(c *gin.Context, err error, internalBody any) {
	status := StatusFromError(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.AbortWithStatusJSON(status, internalBody)
		return
	}

	c.AbortWithStatusJSON(status, dto.MessageResponse{
		Message: apperrors.MessageOf(err, http.StatusText(status)),
	})
}

// HandlePlainError writes a text/plain error for download routes
func HandlePlainError(c *gin.Context, err error, notFoundText, internalText string) {
	status := StatusFromError(err)
	switch status {
	case http.StatusNotFound:
		c.String(status, notFoundText)
	case http.StatusInternalServerError:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Download failed")
		c.String(status, internalText)
	default:
		c.String(status, apperrors.MessageOf(err, http.StatusText(status)))
	}
	c.Abort()
}
