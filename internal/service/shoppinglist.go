package service

import (
	"fmt"
	"strings"

	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
)

// ShoppingListService builds the aggregated shopping list for a user's cart.
type ShoppingListService struct {
	Cfg  *config.Config
	Repo repository.RecipeRepo
}

// NewShoppingListService is the constructor function for initializing a new ShoppingListService.
func NewShoppingListService(cfg *config.Config, repo repository.RecipeRepo) *ShoppingListService {
	return &ShoppingListService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// GetShoppingList aggregates the ingredients of every recipe in the user's
// cart. Lines with the same name and unit are merged with summed amounts;
// the same name under different units stays separate.
func (s *ShoppingListService) GetShoppingList(user *models.User) ([]repository.ShoppingListItem, error) {
	items, err := s.Repo.AggregateShoppingList(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// BuildShoppingListText renders the aggregated shopping list as the plain
// text document offered for download. An empty cart still produces the
// greeting and sign-off, just with no lines between them.
func (s *ShoppingListService) BuildShoppingListText(user *models.User) (string, error) {
	items, err := s.GetShoppingList(user)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, You need to buy the following:\n\n", user.FirstName)
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%s) - %d", item.Name, item.MeasurementUnit, item.Amount)
	}
	b.WriteString("\n\nWe look forward to seeing you again on our website!\n")

	return b.String(), nil
}
