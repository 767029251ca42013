package service

import (
	"fmt"

	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
)

// IngredientService is the read-only business logic layer for the
// ingredient catalog.
type IngredientService struct {
	Cfg  *config.Config
	Repo repository.IngredientRepo
}

// IngredientResponse is the response object for a catalog ingredient.
type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// NewIngredientService is the constructor function for initializing a new IngredientService.
func NewIngredientService(cfg *config.Config, repo repository.IngredientRepo) *IngredientService {
	return &IngredientService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// ListIngredients returns catalog ingredients, optionally narrowed to a
// case-insensitive name prefix.
func (s *IngredientService) ListIngredients(namePrefix string) ([]IngredientResponse, error) {
	ingredients, err := s.Repo.ListIngredients(namePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return toIngredientResponses(ingredients), nil
}

// GetIngredientByID fetches an ingredient by its ID.
func (s *IngredientService) GetIngredientByID(ingredientID uint) (*IngredientResponse, error) {
	ingredient, err := s.Repo.GetIngredientByID(ingredientID)
	if err != nil {
		return nil, err
	}
	return &IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}, nil
}

func toIngredientResponses(ingredients []models.Ingredient) []IngredientResponse {
	responses := make([]IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		responses = append(responses, IngredientResponse{
			ID:              ing.ID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
		})
	}
	return responses
}
