package repository

import "github.com/platefull/platefull-api/internal/models"

// UserRepo is the interface for user repository operations.
type UserRepo interface {
	CreateUser(user *models.User) (*models.User, error)
	GetUserByID(userID uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(page, pageSize int) ([]models.User, int64, error)
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
	CreateSubscription(userID, authorID uint) error
	DeleteSubscription(userID, authorID uint) error
	IsSubscribed(userID, authorID uint) (bool, error)
	GetSubscribedAuthors(userID uint, page, pageSize int) ([]models.User, int64, error)
}

// TagRepo is the interface for tag catalog operations.
type TagRepo interface {
	ListTags() ([]models.Tag, error)
	GetTagByID(tagID uint) (*models.Tag, error)
	GetTagsByIDs(tagIDs []uint) ([]models.Tag, error)
	FindOrCreateTag(tag *models.Tag) (bool, error)
}

// IngredientRepo is the interface for ingredient catalog operations.
type IngredientRepo interface {
	ListIngredients(namePrefix string) ([]models.Ingredient, error)
	GetIngredientByID(ingredientID uint) (*models.Ingredient, error)
	GetIngredientsByIDs(ingredientIDs []uint) ([]models.Ingredient, error)
	FindOrCreateIngredient(ingredient *models.Ingredient) (bool, error)
}

// RecipeRepo is the interface for recipe repository operations.
type RecipeRepo interface {
	GetRecipeByID(recipeID uint) (*models.Recipe, error)
	ListRecipes(filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error)
	GetAuthorRecipes(authorID uint, limit int) ([]models.Recipe, error)
	CountAuthorRecipes(authorID uint) (int64, error)
	CreateRecipe(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error
	UpdateRecipe(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error
	DeleteRecipe(recipeID uint) error
	AddRecipeRelation(kind models.RelationKind, userID, recipeID uint) error
	RemoveRecipeRelation(kind models.RelationKind, userID, recipeID uint) error
	HasRecipeRelation(kind models.RelationKind, userID, recipeID uint) (bool, error)
	GetRelatedRecipeIDs(kind models.RelationKind, userID uint) ([]uint, error)
	AggregateShoppingList(userID uint) ([]ShoppingListItem, error)
}
