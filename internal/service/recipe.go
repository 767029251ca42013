package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
	"github.com/platefull/platefull-api/internal/s3"
	"github.com/platefull/platefull-api/internal/util"
	"go.uber.org/zap"
)

// ImageStore stores recipe images and serves them by URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, imgBytes []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// RecipeService is the business logic layer for recipe-related operations.
type RecipeService struct {
	Cfg         *config.Config
	Repo        repository.RecipeRepo
	Tags        repository.TagRepo
	Ingredients repository.IngredientRepo
	Users       repository.UserRepo
	Images      ImageStore
}

// NewRecipeService is the constructor function for initializing a new RecipeService
func NewRecipeService(cfg *config.Config, repo repository.RecipeRepo, tags repository.TagRepo, ingredients repository.IngredientRepo, users repository.UserRepo, images ImageStore) *RecipeService {
	return &RecipeService{
		Cfg:         cfg,
		Repo:        repo,
		Tags:        tags,
		Ingredients: ingredients,
		Users:       users,
		Images:      images,
	}
}

// RecipeIngredientInput references a catalog ingredient by ID with the
// amount used in the recipe.
type RecipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput is the request object for creating or updating a recipe.
// Image is a base64 payload; on update an empty Image keeps the current one.
type RecipeInput struct {
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time"`
	Tags        []uint                  `json:"tags"`
	Ingredients []RecipeIngredientInput `json:"ingredients"`
}

// TagResponse is the response object for a tag.
type TagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// RecipeIngredientResponse is an ingredient line of a recipe response.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full read projection of a recipe. The is_favorited,
// is_in_shopping_cart and author.is_subscribed flags are relative to the
// viewer making the request.
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse is a lightweight recipe projection used inside
// relation and subscription responses.
type RecipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// CreateRecipe validates the input, stores the image, creates the recipe and
// returns its read projection.
func (s *RecipeService) CreateRecipe(ctx context.Context, author *models.User, input RecipeInput) (*RecipeResponse, error) {
	tags, items, err := s.validateRecipeInput(input, true)
	if err != nil {
		return nil, err
	}

	imgBytes, ext, err := util.ParseBase64Image(input.Image)
	if err != nil {
		return nil, ErrInvalidImage
	}

	key := s3.GenerateRecipeImageKey(ext)
	imageURL, err := s.Images.Upload(ctx, key, imgBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to upload recipe image: %w", err)
	}

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		ImageURL:    imageURL,
		ImageKey:    key,
		PubDate:     time.Now().UTC(),
	}

	if err := s.Repo.CreateRecipe(recipe, tags, items); err != nil {
		if delErr := s.Images.Delete(ctx, key); delErr != nil {
			logger.Get().Warn("failed to delete orphaned recipe image",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	return s.GetRecipe(author, recipe.ID)
}

// UpdateRecipe validates the input and replaces the recipe's fields, tags
// and ingredient lines wholesale. Only the author or staff may update;
// the publication date never changes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, user *models.User, recipeID uint, input RecipeInput) (*RecipeResponse, error) {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != user.ID && !user.IsStaff {
		return nil, ErrNotRecipeAuthor
	}

	tags, items, err := s.validateRecipeInput(input, false)
	if err != nil {
		return nil, err
	}

	oldKey := ""
	if strings.TrimSpace(input.Image) != "" {
		imgBytes, ext, err := util.ParseBase64Image(input.Image)
		if err != nil {
			return nil, ErrInvalidImage
		}

		key := s3.GenerateRecipeImageKey(ext)
		imageURL, err := s.Images.Upload(ctx, key, imgBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to upload recipe image: %w", err)
		}

		oldKey = recipe.ImageKey
		recipe.ImageURL = imageURL
		recipe.ImageKey = key
	}

	recipe.Name = input.Name
	recipe.Text = input.Text
	recipe.CookingTime = input.CookingTime

	if err := s.Repo.UpdateRecipe(recipe, tags, items); err != nil {
		return nil, err
	}

	// The row now points at the new image; the old object is unreferenced.
	if oldKey != "" {
		if delErr := s.Images.Delete(ctx, oldKey); delErr != nil {
			logger.Get().Warn("failed to delete replaced recipe image",
				zap.String("key", oldKey), zap.Error(delErr))
		}
	}

	return s.GetRecipe(user, recipeID)
}

// DeleteRecipe deletes a recipe and its image. Only the author or staff may
// delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, user *models.User, recipeID uint) error {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != user.ID && !user.IsStaff {
		return ErrNotRecipeAuthor
	}

	if err := s.Repo.DeleteRecipe(recipeID); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	// The row is gone either way; an undeleted object is only logged.
	if recipe.ImageKey != "" {
		if delErr := s.Images.Delete(ctx, recipe.ImageKey); delErr != nil {
			logger.Get().Warn("failed to delete recipe image",
				zap.String("key", recipe.ImageKey), zap.Error(delErr))
		}
	}

	return nil
}

// GetRecipe fetches a recipe by its ID and builds the read projection for
// the viewer. A nil viewer is anonymous.
func (s *RecipeService) GetRecipe(viewer *models.User, recipeID uint) (*RecipeResponse, error) {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return nil, err
	}

	favorited := false
	inCart := false
	if viewer != nil {
		if favorited, err = s.Repo.HasRecipeRelation(models.RelationFavorite, viewer.ID, recipeID); err != nil {
			return nil, fmt.Errorf("failed to check favorite: %w", err)
		}
		if inCart, err = s.Repo.HasRecipeRelation(models.RelationShoppingCart, viewer.ID, recipeID); err != nil {
			return nil, fmt.Errorf("failed to check shopping cart: %w", err)
		}
	}

	author, err := s.buildAuthorResponse(viewer, recipe.Author, nil)
	if err != nil {
		return nil, err
	}

	resp := toRecipeResponse(recipe, author, favorited, inCart)
	return &resp, nil
}

// ListRecipes returns a page of recipes matching the filter, newest first,
// with viewer-relative flags resolved, and the total match count.
func (s *RecipeService) ListRecipes(viewer *models.User, filter repository.RecipeFilter, page, pageSize int) ([]RecipeResponse, int64, error) {
	if viewer != nil {
		filter.ViewerID = viewer.ID
	} else {
		// An anonymous viewer has empty relation sets: asking for members of
		// an empty set yields nothing, asking for the complement excludes
		// nothing.
		if (filter.Favorited != nil && *filter.Favorited) || (filter.InCart != nil && *filter.InCart) {
			return []RecipeResponse{}, 0, nil
		}
		filter.Favorited = nil
		filter.InCart = nil
	}

	recipes, total, err := s.Repo.ListRecipes(filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	favSet := map[uint]bool{}
	cartSet := map[uint]bool{}
	if viewer != nil {
		favIDs, err := s.Repo.GetRelatedRecipeIDs(models.RelationFavorite, viewer.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load favorites: %w", err)
		}
		for _, id := range favIDs {
			favSet[id] = true
		}
		cartIDs, err := s.Repo.GetRelatedRecipeIDs(models.RelationShoppingCart, viewer.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load shopping cart: %w", err)
		}
		for _, id := range cartIDs {
			cartSet[id] = true
		}
	}

	subCache := map[uint]bool{}
	responses := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		author, err := s.buildAuthorResponse(viewer, r.Author, subCache)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, toRecipeResponse(r, author, favSet[r.ID], cartSet[r.ID]))
	}

	return responses, total, nil
}

// AddRecipeToList adds a recipe to the viewer's favorite or shopping cart
// set and returns its short projection. Adding twice is a conflict.
func (s *RecipeService) AddRecipeToList(user *models.User, kind models.RelationKind, recipeID uint) (*RecipeShortResponse, error) {
	recipe, err := s.Repo.GetRecipeByID(recipeID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.AddRecipeRelation(kind, user.ID, recipeID); err != nil {
		return nil, err
	}

	short := toRecipeShortResponse(recipe)
	return &short, nil
}

// RemoveRecipeFromList removes a recipe from the viewer's favorite or
// shopping cart set. Removing a recipe that is not in the set is an error.
func (s *RecipeService) RemoveRecipeFromList(user *models.User, kind models.RelationKind, recipeID uint) error {
	if _, err := s.Repo.GetRecipeByID(recipeID); err != nil {
		return err
	}

	if err := s.Repo.RemoveRecipeRelation(kind, user.ID, recipeID); err != nil {
		// The recipe exists, so a missing row can only mean it was never in
		// the viewer's set.
		var notFound repository.NotFoundError
		if errors.As(err, &notFound) {
			return ErrRecipeNotInList
		}
		return err
	}

	return nil
}

// validateRecipeInput checks a recipe write payload and resolves the
// referenced tags and ingredients. The checks run in a fixed order so a
// payload with several problems always reports the same one.
func (s *RecipeService) validateRecipeInput(input RecipeInput, requireImage bool) ([]models.Tag, []models.RecipeIngredient, error) {
	if requireImage && strings.TrimSpace(input.Image) == "" {
		return nil, nil, ErrMissingImage
	}

	if len(input.Ingredients) == 0 {
		return nil, nil, ErrNoIngredients
	}

	ingredientIDs := make([]uint, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	found, err := s.Ingredients.GetIngredientsByIDs(ingredientIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve ingredients: %w", err)
	}
	byID := make(map[uint]bool, len(found))
	for _, ing := range found {
		byID[ing.ID] = true
	}
	for _, item := range input.Ingredients {
		if !byID[item.ID] {
			return nil, nil, ErrUnknownIngredient
		}
	}

	seenIngredients := make(map[uint]bool, len(input.Ingredients))
	for _, item := range input.Ingredients {
		if seenIngredients[item.ID] {
			return nil, nil, ErrDuplicateIngredient
		}
		seenIngredients[item.ID] = true
	}

	for _, item := range input.Ingredients {
		if item.Amount < models.AmountMin || item.Amount > models.AmountMax {
			return nil, nil, ErrInvalidAmount
		}
	}

	if len(input.Tags) == 0 {
		return nil, nil, ErrNoTags
	}
	seenTags := make(map[uint]bool, len(input.Tags))
	for _, tagID := range input.Tags {
		if seenTags[tagID] {
			return nil, nil, ErrDuplicateTag
		}
		seenTags[tagID] = true
	}
	tags, err := s.Tags.GetTagsByIDs(input.Tags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(tags) != len(input.Tags) {
		return nil, nil, ErrUnknownTag
	}

	if input.CookingTime < models.CookingTimeMin || input.CookingTime > models.CookingTimeMax {
		return nil, nil, ErrInvalidCookingTime
	}

	items := make([]models.RecipeIngredient, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		items = append(items, models.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	return tags, items, nil
}

// buildAuthorResponse builds the author projection with the viewer-relative
// subscription flag. subCache, when non-nil, memoizes lookups across a page
// of recipes.
func (s *RecipeService) buildAuthorResponse(viewer *models.User, author *models.User, subCache map[uint]bool) (UserResponse, error) {
	if author == nil {
		return UserResponse{}, fmt.Errorf("recipe author not loaded")
	}

	resp := UserResponse{
		ID:        author.ID,
		Email:     author.Email,
		Username:  author.Username,
		FirstName: author.FirstName,
		LastName:  author.LastName,
	}

	if viewer == nil || viewer.ID == author.ID {
		return resp, nil
	}

	if subCache != nil {
		if subscribed, ok := subCache[author.ID]; ok {
			resp.IsSubscribed = subscribed
			return resp, nil
		}
	}

	subscribed, err := s.Users.IsSubscribed(viewer.ID, author.ID)
	if err != nil {
		return UserResponse{}, fmt.Errorf("failed to check subscription: %w", err)
	}
	if subCache != nil {
		subCache[author.ID] = subscribed
	}
	resp.IsSubscribed = subscribed

	return resp, nil
}

// toRecipeResponse converts a Recipe to a RecipeResponse.
func toRecipeResponse(recipe *models.Recipe, author UserResponse, favorited, inCart bool) RecipeResponse {
	tags := make([]TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
	}

	ingredients := make([]RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		item := RecipeIngredientResponse{
			ID:     line.IngredientID,
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, item)
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

// toRecipeShortResponse converts a Recipe to a RecipeShortResponse.
func toRecipeShortResponse(recipe *models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
