package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/service"
	"go.uber.org/zap"
)

// IngredientHandler is the handler for ingredient catalog requests.
type IngredientHandler struct {
	Service *service.IngredientService
}

// NewIngredientHandler is the constructor function for initializing a new IngredientHandler.
func NewIngredientHandler(ingredientService *service.IngredientService) *IngredientHandler {
	return &IngredientHandler{Service: ingredientService}
}

// ListIngredients returns catalog ingredients, optionally narrowed with the
// ?name= prefix filter.
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.Service.ListIngredients(c.Query("name"))
	if err != nil {
		logger.Get().Error("failed to list ingredients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list ingredients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

// GetIngredient returns an ingredient by ID.
func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	ingredientID, err := parseUintParam(c.Param("ingredient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredient ID"})
		return
	}

	ingredient, err := h.Service.GetIngredientByID(ingredientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}
