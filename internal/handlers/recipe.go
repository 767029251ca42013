package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
	"github.com/platefull/platefull-api/internal/service"
	"github.com/platefull/platefull-api/internal/util"
	"go.uber.org/zap"
)

// RecipeHandler is the handler for recipe-related requests.
type RecipeHandler struct {
	Service      *service.RecipeService
	ShoppingList *service.ShoppingListService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService, shoppingListService *service.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		Service:      recipeService,
		ShoppingList: shoppingListService,
	}
}

// ListRecipes returns a paginated list of recipes matching the query
// filters, newest first. Auth is optional; anonymous viewers see no
// viewer-relative flags.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := repository.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: parseTriStateQuery(c, "is_favorited"),
		InCart:    parseTriStateQuery(c, "is_in_shopping_cart"),
	}

	if authorStr := c.Query("author"); authorStr != "" {
		authorID, err := parseUintParam(authorStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
			return
		}
		filter.AuthorID = &authorID
	}

	pagination := h.Service.Cfg.PaginationDefaults()
	page := parsePositiveIntQuery(c, "page", 1)
	pageSize := parsePositiveIntQuery(c, "limit", pagination.RecipePageSize)
	if pageSize > pagination.MaxPageSize {
		pageSize = pagination.MaxPageSize
	}

	recipes, total, err := h.Service.ListRecipes(optionalUser(c), filter, page, pageSize)
	if err != nil {
		logger.Get().Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     total,
		"page":      page,
		"page_size": pageSize,
		"results":   recipes,
	})
}

// GetRecipe returns a recipe by ID. Auth is optional.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := parseUintParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	recipeResponse, err := h.Service.GetRecipe(optionalUser(c), recipeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipeResponse})
}

// CreateRecipe creates a new recipe authored by the authenticated user.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	recipeResponse, err := h.Service.CreateRecipe(c.Request.Context(), user, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipeResponse})
}

// UpdateRecipe replaces a recipe's fields, tags and ingredients. Only the
// author or staff may update.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recipeID, err := parseUintParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	recipeResponse, err := h.Service.UpdateRecipe(c.Request.Context(), user, recipeID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipeResponse})
}

// DeleteRecipe deletes a recipe. Only the author or staff may delete.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recipeID, err := parseUintParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	if err := h.Service.DeleteRecipe(c.Request.Context(), user, recipeID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FavoriteRecipe adds a recipe to the authenticated user's favorites.
func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addRelation(c, models.RelationFavorite)
}

// UnfavoriteRecipe removes a recipe from the authenticated user's favorites.
func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeRelation(c, models.RelationFavorite)
}

// AddToShoppingCart adds a recipe to the authenticated user's shopping cart.
func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addRelation(c, models.RelationShoppingCart)
}

// RemoveFromShoppingCart removes a recipe from the authenticated user's
// shopping cart.
func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeRelation(c, models.RelationShoppingCart)
}

func (h *RecipeHandler) addRelation(c *gin.Context, kind models.RelationKind) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recipeID, err := parseUintParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	short, err := h.Service.AddRecipeToList(user, kind, recipeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": short})
}

func (h *RecipeHandler) removeRelation(c *gin.Context, kind models.RelationKind) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recipeID, err := parseUintParam(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	if err := h.Service.RemoveRecipeFromList(user, kind, recipeID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart renders the authenticated user's aggregated shopping
// list as a plain text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	text, err := h.ShoppingList.BuildShoppingListText(user)
	if err != nil {
		logger.Get().Error("failed to build shopping list", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build shopping list"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_shopping_list.txt", user.Username))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
