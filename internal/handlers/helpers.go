package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
	"github.com/platefull/platefull-api/internal/service"
	"github.com/platefull/platefull-api/internal/util"
)

// parseUintParam parses a string into a uint.
func parseUintParam(param string) (uint, error) {
	parsed, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed > uint64(^uint(0)) {
		return 0, fmt.Errorf("value out of range for uint: %d", parsed)
	}
	return uint(parsed), nil
}

// parseTriStateQuery reads a query parameter as an optional boolean. An
// absent or unrecognized value means "don't filter", which is distinct from
// an explicit false.
func parseTriStateQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	switch raw {
	case "1", "true", "True":
		v := true
		return &v
	case "0", "false", "False":
		v := false
		return &v
	}
	return nil
}

// parsePositiveIntQuery reads a positive integer query parameter, falling
// back when absent or invalid.
func parsePositiveIntQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

// optionalUser returns the authenticated user from the context, or nil for
// anonymous requests on endpoints with optional auth.
func optionalUser(c *gin.Context) *models.User {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return user
}

// respondServiceError maps service and repository errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch e := err.(type) {
	case service.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Message})
	case service.PermissionError:
		c.JSON(http.StatusForbidden, gin.H{"error": e.Message})
	case repository.NotFoundError:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case repository.ConflictError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": e.Error()})
	}
}
