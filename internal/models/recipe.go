package models

import (
	"errors"
	"regexp"
	"time"

	"gorm.io/gorm"
)

// CookingTimeMin and CookingTimeMax bound a recipe's cooking time in minutes.
// AmountMin and AmountMax bound the amount of a single ingredient in a recipe.
const (
	CookingTimeMin = 1
	CookingTimeMax = 1440
	AmountMin      = 1
	AmountMax      = 1440
)

// hexColorPattern matches #RGB, #RRGGBB and #RRGGBBAA color values.
var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// slugPattern matches URL-safe slugs.
var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Tag is the model for a recipe category label. Tags are reference data:
// created by the catalog loader, read-only through the API.
type Tag struct {
	gorm.Model
	Name  string `gorm:"unique;index;size:200" json:"name"`
	Color string `gorm:"unique;size:9" json:"color"`
	Slug  string `gorm:"unique;index;size:200" json:"slug"`
}

// IsValidColor checks that the tag color is a hex value with a leading '#'.
func (t *Tag) IsValidColor() bool {
	return hexColorPattern.MatchString(t.Color)
}

// IsValidSlug checks that the tag slug contains only URL-safe characters.
func (t *Tag) IsValidSlug() bool {
	return slugPattern.MatchString(t.Slug)
}

// BeforeCreate is a GORM hook that runs before creating a new Tag.
func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if !t.IsValidColor() {
		return errors.New("invalid tag color, expected a hex value like #49B64E")
	}
	if !t.IsValidSlug() {
		return errors.New("invalid tag slug")
	}

	return nil
}

// BeforeUpdate is a GORM hook that runs before updating a Tag.
func (t *Tag) BeforeUpdate(tx *gorm.DB) (err error) {
	if !t.IsValidColor() {
		return errors.New("invalid tag color, expected a hex value like #49B64E")
	}
	if !t.IsValidSlug() {
		return errors.New("invalid tag slug")
	}

	return nil
}

// Ingredient is the model for a catalog ingredient. The (name, unit) pair
// is unique; recipes reference ingredients by ID.
type Ingredient struct {
	gorm.Model
	Name            string `gorm:"uniqueIndex:idx_ingredient_name_unit;index;size:200" json:"name"`
	MeasurementUnit string `gorm:"uniqueIndex:idx_ingredient_name_unit;size:200" json:"measurement_unit"`
}

// Recipe is the model for a recipe. A recipe always carries at least one tag
// and at least one ingredient row; the service layer rejects writes that
// would violate this.
type Recipe struct {
	gorm.Model
	AuthorID    uint  `gorm:"index;not null"`
	Author      *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string
	ImageURL    string
	ImageKey    string `json:"-"`
	Text        string `gorm:"type:text"`
	CookingTime int    `gorm:"check:chk_cooking_time,cooking_time >= 1 AND cooking_time <= 1440"`
	PubDate     time.Time          `gorm:"index"`
	Tags        []*Tag             `gorm:"many2many:recipe_tags;"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is the join row between a recipe and a catalog ingredient,
// carrying the amount. Rows are owned by the recipe and replaced wholesale
// on every update.
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint        `gorm:"uniqueIndex:idx_recipe_ingredient;not null"`
	IngredientID uint        `gorm:"uniqueIndex:idx_recipe_ingredient;not null"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int         `gorm:"check:chk_ingredient_amount,amount >= 1 AND amount <= 1440"`
}

// FavoriteRecipe marks a recipe as favorited by a user. At most one row
// exists per (user, recipe) pair.
type FavoriteRecipe struct {
	gorm.Model
	UserID   uint    `gorm:"uniqueIndex:idx_favorite_user_recipe;not null"`
	RecipeID uint    `gorm:"uniqueIndex:idx_favorite_user_recipe;not null"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// ShoppingCartEntry marks a recipe as added to a user's shopping cart.
// At most one row exists per (user, recipe) pair.
type ShoppingCartEntry struct {
	gorm.Model
	UserID   uint    `gorm:"uniqueIndex:idx_cart_user_recipe;not null"`
	RecipeID uint    `gorm:"uniqueIndex:idx_cart_user_recipe;not null"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RelationKind selects which per-user recipe relation set an operation
// targets. Favorite and cart toggles share one code path parameterized
// by kind.
type RelationKind string

// RelationKind enum values.
const (
	RelationFavorite     RelationKind = "favorite"
	RelationShoppingCart RelationKind = "shopping_cart"
)

// IsValidRelationKind checks if the RelationKind is valid.
func (k RelationKind) IsValidRelationKind() bool {
	switch k {
	case RelationFavorite, RelationShoppingCart:
		return true
	default:
		return false
	}
}
