package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/service"
	"go.uber.org/zap"
)

// TagHandler is the handler for tag catalog requests.
type TagHandler struct {
	Service *service.TagService
}

// NewTagHandler is the constructor function for initializing a new TagHandler.
func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{Service: tagService}
}

// ListTags returns every tag in the catalog.
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.Service.ListTags()
	if err != nil {
		logger.Get().Error("failed to list tags", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tags"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// GetTag returns a tag by ID.
func (h *TagHandler) GetTag(c *gin.Context) {
	tagID, err := parseUintParam(c.Param("tag_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag ID"})
		return
	}

	tag, err := h.Service.GetTagByID(tagID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}
