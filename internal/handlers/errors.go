package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Owhab/nexacms-sub003/internal/middleware"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/internal/service"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
)

// respondError maps service and section errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var schemaErr *sections.SchemaError
	var validationErr *sections.ValidationError

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": schemaErr.Errors})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": validationErr.Errors})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "runtime section type registration is disabled"})
	case errors.Is(err, service.ErrAlreadyMigrated):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotLegacyHero):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFactoryUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, sections.ErrUnknownType),
		errors.Is(err, sections.ErrUnknownVariant):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(err, "Section request failed", map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"request_id": middleware.RequestID(c),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parsePageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("pageId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page id"})
		return 0, false
	}
	return uint(id), true
}

func parseMode(c *gin.Context, fallback sections.Mode) (sections.Mode, bool) {
	raw := c.Query("mode")
	if raw == "" {
		return fallback, true
	}
	mode, ok := sections.ParseMode(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid render mode"})
		return "", false
	}
	return mode, true
}
