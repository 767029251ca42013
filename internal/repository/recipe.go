package repository

import (
	"errors"
	"fmt"

	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeFilter is the filter specification for recipe listings.
// Favorited and InCart are tri-state: nil means no filtering on that
// dimension, true restricts to the viewer's relation set, false restricts to
// the complement of the set within the base collection. ViewerID is zero for
// unauthenticated callers.
type RecipeFilter struct {
	TagSlugs  []string
	AuthorID  *uint
	Favorited *bool
	InCart    *bool
	ViewerID  uint
}

// ShoppingListItem is one aggregated line of a user's shopping list: the
// summed amount of one (ingredient name, measurement unit) group across
// every recipe in the cart.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// RecipeRepository is a repository for interacting with recipes, the
// per-user relation sets, and the shopping-list aggregation.
type RecipeRepository struct {
	DB *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

// withRecipePreloads attaches the associations needed by the read
// projection: tags, author, and ingredient rows with their catalog entries.
func withRecipePreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags").
		Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient")
}

// GetRecipeByID retrieves a recipe by its ID with all read-projection
// associations loaded.
func (r *RecipeRepository) GetRecipeByID(recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe

	err := withRecipePreloads(r.DB).
		Where("id = ?", recipeID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("recipe not found")
		}
		return nil, err
	}

	return &recipe, nil
}

// ListRecipes returns the filtered, paginated recipe collection ordered by
// publication date, newest first, with the total count before pagination.
func (r *RecipeRepository) ListRecipes(filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error) {
	base := r.applyFilter(r.DB.Model(&models.Recipe{}), filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := withRecipePreloads(base).
		Order("pub_date DESC, id DESC").
		Scopes(paginate(page, pageSize)).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// applyFilter translates a RecipeFilter into query conditions. Tag slugs
// OR-match: a recipe qualifies when at least one of its tags is in the
// requested set. Relation filters restrict to the viewer's set or to its
// exact complement within the base collection.
func (r *RecipeRepository) applyFilter(query *gorm.DB, filter RecipeFilter) *gorm.DB {
	if len(filter.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			r.DB.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}

	if filter.Favorited != nil && filter.ViewerID != 0 {
		sub := r.DB.Model(&models.FavoriteRecipe{}).
			Select("recipe_id").
			Where("user_id = ?", filter.ViewerID)
		if *filter.Favorited {
			query = query.Where("recipes.id IN (?)", sub)
		} else {
			query = query.Where("recipes.id NOT IN (?)", sub)
		}
	}

	if filter.InCart != nil && filter.ViewerID != 0 {
		sub := r.DB.Model(&models.ShoppingCartEntry{}).
			Select("recipe_id").
			Where("user_id = ?", filter.ViewerID)
		if *filter.InCart {
			query = query.Where("recipes.id IN (?)", sub)
		} else {
			query = query.Where("recipes.id NOT IN (?)", sub)
		}
	}

	return query
}

// GetAuthorRecipes returns an author's recipes, newest first, optionally
// truncated to limit. A limit of zero or less means no truncation.
func (r *RecipeRepository) GetAuthorRecipes(authorID uint, limit int) ([]models.Recipe, error) {
	query := r.DB.Where("author_id = ?", authorID).
		Order("pub_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountAuthorRecipes returns the number of recipes owned by an author.
func (r *RecipeRepository) CountAuthorRecipes(authorID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// CreateRecipe persists a new recipe with its tag set and ingredient rows in
// a single transaction.
func (r *RecipeRepository) CreateRecipe(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}

		if err := tx.Model(recipe).Association("Tags").Replace(tagPointers(tags)); err != nil {
			return fmt.Errorf("failed to set recipe tags: %w", err)
		}

		for i := range items {
			items[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			if isUniqueViolation(err) {
				return NewConflictError("duplicate ingredient in recipe")
			}
			return fmt.Errorf("failed to create recipe ingredients: %w", err)
		}

		return nil
	})
}

// UpdateRecipe updates a recipe's own fields and replaces its tag set and
// its full ingredient row set in a single transaction. Replacement is
// wholesale, never an incremental merge, so no orphaned join rows can
// survive a partial update.
func (r *RecipeRepository) UpdateRecipe(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
				"image_url":    recipe.ImageURL,
				"image_key":    recipe.ImageKey,
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Model(recipe).Association("Tags").Replace(tagPointers(tags)); err != nil {
			return fmt.Errorf("failed to replace recipe tags: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).
			Unscoped().
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}

		for i := range items {
			items[i].ID = 0
			items[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			if isUniqueViolation(err) {
				return NewConflictError("duplicate ingredient in recipe")
			}
			return fmt.Errorf("failed to recreate recipe ingredients: %w", err)
		}

		return nil
	})
}

// DeleteRecipe deletes a recipe together with its join rows and relation-set
// memberships.
func (r *RecipeRepository) DeleteRecipe(recipeID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{
			&models.RecipeIngredient{},
			&models.FavoriteRecipe{},
			&models.ShoppingCartEntry{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Unscoped().Delete(owned).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Recipe{}, recipeID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError("recipe not found")
		}
		return nil
	})
}

// AddRecipeRelation adds a (user, recipe) pair to the relation set selected
// by kind. Adding a pair that is already present is a conflict; the unique
// index reports it even when two requests race past the existence check.
func (r *RecipeRepository) AddRecipeRelation(kind models.RelationKind, userID, recipeID uint) error {
	var err error
	switch kind {
	case models.RelationFavorite:
		err = r.DB.Create(&models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}).Error
	case models.RelationShoppingCart:
		err = r.DB.Create(&models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}).Error
	default:
		return fmt.Errorf("unknown relation kind: %q", kind)
	}

	if err != nil {
		if isUniqueViolation(err) {
			return NewConflictError("recipe is already added")
		}
		logger.Get().Error("failed to add recipe relation",
			zap.String("kind", string(kind)), zap.Uint("user_id", userID),
			zap.Uint("recipe_id", recipeID), zap.Error(err))
		return err
	}
	return nil
}

// RemoveRecipeRelation removes a (user, recipe) pair from the relation set
// selected by kind. Removing an absent pair is an error, not a no-op.
func (r *RecipeRepository) RemoveRecipeRelation(kind models.RelationKind, userID, recipeID uint) error {
	// Hard delete: a soft-deleted row would still occupy the unique index
	// and block re-adding the pair.
	var result *gorm.DB
	switch kind {
	case models.RelationFavorite:
		result = r.DB.Unscoped().
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.FavoriteRecipe{})
	case models.RelationShoppingCart:
		result = r.DB.Unscoped().
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.ShoppingCartEntry{})
	default:
		return fmt.Errorf("unknown relation kind: %q", kind)
	}

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("recipe is not in the list")
	}
	return nil
}

// HasRecipeRelation checks whether the (user, recipe) pair is in the
// relation set selected by kind.
func (r *RecipeRepository) HasRecipeRelation(kind models.RelationKind, userID, recipeID uint) (bool, error) {
	var count int64
	var err error
	switch kind {
	case models.RelationFavorite:
		err = r.DB.Model(&models.FavoriteRecipe{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error
	case models.RelationShoppingCart:
		err = r.DB.Model(&models.ShoppingCartEntry{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error
	default:
		return false, fmt.Errorf("unknown relation kind: %q", kind)
	}
	return count > 0, err
}

// GetRelatedRecipeIDs returns the recipe IDs in the user's relation set
// selected by kind.
func (r *RecipeRepository) GetRelatedRecipeIDs(kind models.RelationKind, userID uint) ([]uint, error) {
	var ids []uint
	var err error
	switch kind {
	case models.RelationFavorite:
		err = r.DB.Model(&models.FavoriteRecipe{}).
			Where("user_id = ?", userID).
			Pluck("recipe_id", &ids).Error
	case models.RelationShoppingCart:
		err = r.DB.Model(&models.ShoppingCartEntry{}).
			Where("user_id = ?", userID).
			Pluck("recipe_id", &ids).Error
	default:
		return nil, fmt.Errorf("unknown relation kind: %q", kind)
	}
	return ids, err
}

// AggregateShoppingList sums ingredient amounts across every recipe in the
// user's cart, grouped by (ingredient name, measurement unit). The same
// ingredient appearing in two cart recipes is summed, never deduplicated by
// presence. The group-key ordering makes the output deterministic for a
// fixed cart state.
func (r *RecipeRepository) AggregateShoppingList(userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem

	err := r.DB.Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ? AND shopping_cart_entries.deleted_at IS NULL", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

// tagPointers converts a tag slice to the pointer slice GORM's association
// API expects.
func tagPointers(tags []models.Tag) []*models.Tag {
	out := make([]*models.Tag, len(tags))
	for i := range tags {
		out[i] = &tags[i]
	}
	return out
}
