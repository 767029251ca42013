package repository

import (
	"errors"

	"github.com/platefull/platefull-api/internal/models"
	"gorm.io/gorm"
)

// IngredientRepository is a repository for the ingredient catalog.
type IngredientRepository struct {
	DB *gorm.DB
}

// NewIngredientRepository creates a new IngredientRepository.
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{DB: db}
}

// ListIngredients returns catalog ingredients ordered by name. When
// namePrefix is non-empty the list is restricted to names starting with it,
// case-insensitively.
func (r *IngredientRepository) ListIngredients(namePrefix string) ([]models.Ingredient, error) {
	query := r.DB.Order("name ASC")
	if namePrefix != "" {
		query = query.Where("name ILIKE ?", namePrefix+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredientByID retrieves an ingredient by its ID.
func (r *IngredientRepository) GetIngredientByID(ingredientID uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.DB.First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("ingredient not found")
		}
		return nil, err
	}
	return &ingredient, nil
}

// GetIngredientsByIDs retrieves the ingredients for a list of IDs. Missing
// IDs are simply absent from the result; the caller checks which ones
// resolved.
func (r *IngredientRepository) GetIngredientsByIDs(ingredientIDs []uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ingredientIDs) == 0 {
		return ingredients, nil
	}
	if err := r.DB.Where("id IN ?", ingredientIDs).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// FindOrCreateIngredient creates the ingredient unless the (name, unit) pair
// already exists. It reports whether a row was created.
func (r *IngredientRepository) FindOrCreateIngredient(ingredient *models.Ingredient) (bool, error) {
	var existing models.Ingredient
	err := r.DB.Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).
		First(&existing).Error
	if err == nil {
		*ingredient = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.DB.Create(ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			return false, NewConflictError("ingredient name and unit pair already exists")
		}
		return false, err
	}
	return true, nil
}
