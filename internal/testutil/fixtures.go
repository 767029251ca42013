package testutil

import (
	"time"

	"github.com/platefull/platefull-api/internal/models"
	"gorm.io/gorm"
)

// TestUser creates a test user.
func TestUser() *models.User {
	return &models.User{
		Model:          gorm.Model{ID: 1},
		Email:          "test@example.com",
		Username:       "testuser",
		FirstName:      "Test",
		LastName:       "User",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ012",
	}
}

// TestAuthor creates a second test user to act as a recipe author.
func TestAuthor() *models.User {
	return &models.User{
		Model:          gorm.Model{ID: 2},
		Email:          "chef@example.com",
		Username:       "homechef",
		FirstName:      "Alice",
		LastName:       "Baker",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ012",
	}
}

// TestTag creates a test tag.
func TestTag() *models.Tag {
	return &models.Tag{
		Model: gorm.Model{ID: 1},
		Name:  "Breakfast",
		Color: "#E26C2D",
		Slug:  "breakfast",
	}
}

// TestIngredient creates a test catalog ingredient.
func TestIngredient() *models.Ingredient {
	return &models.Ingredient{
		Model:           gorm.Model{ID: 1},
		Name:            "flour",
		MeasurementUnit: "g",
	}
}

// TestRecipe creates a test recipe authored by TestAuthor, with one tag and
// one ingredient line.
func TestRecipe() *models.Recipe {
	ingredient := TestIngredient()
	line := models.RecipeIngredient{
		Model:        gorm.Model{ID: 1},
		RecipeID:     1,
		IngredientID: ingredient.ID,
		Ingredient:   ingredient,
		Amount:       200,
	}
	return &models.Recipe{
		Model:       gorm.Model{ID: 1},
		AuthorID:    2,
		Author:      TestAuthor(),
		Name:        "Classic Pancakes",
		ImageURL:    "https://images.test/recipes/images/pancakes.jpg",
		ImageKey:    "recipes/images/pancakes.jpg",
		Text:        "Mix the ingredients and cook on a griddle.",
		CookingTime: 20,
		PubDate:     time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		Tags:        []*models.Tag{TestTag()},
		Ingredients: []models.RecipeIngredient{line},
	}
}

// TinyPNGBase64 is a valid base64 payload for recipe image fields in tests.
const TinyPNGBase64 = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
