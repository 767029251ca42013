package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
)

// Compile-time interface checks.
var (
	_ repository.UserRepo       = (*MockUserRepo)(nil)
	_ repository.TagRepo        = (*MockTagRepo)(nil)
	_ repository.IngredientRepo = (*MockIngredientRepo)(nil)
	_ repository.RecipeRepo     = (*MockRecipeRepo)(nil)
)

// --- MockUserRepo ---

// MockUserRepo is an in-memory mock implementation of repository.UserRepo.
type MockUserRepo struct {
	mu            sync.Mutex
	Users         map[uint]*models.User
	Subscriptions map[uint]map[uint]bool // userID -> set of authorIDs
	NextID        uint

	// Error overrides: set these to force specific methods to return errors.
	CreateUserErr         error
	GetUserByIDErr        error
	CreateSubscriptionErr error
	IsSubscribedErr       error
}

// NewMockUserRepo creates a new MockUserRepo with initialized maps.
func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		Users:         make(map[uint]*models.User),
		Subscriptions: make(map[uint]map[uint]bool),
		NextID:        1,
	}
}

func (m *MockUserRepo) CreateUser(user *models.User) (*models.User, error) {
	if m.CreateUserErr != nil {
		return nil, m.CreateUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Username == user.Username {
			return nil, repository.NewConflictError("username already in use")
		}
		if u.Email == user.Email {
			return nil, repository.NewConflictError("email already in use")
		}
	}

	user.ID = m.NextID
	m.NextID++
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockUserRepo) GetUserByID(userID uint) (*models.User, error) {
	if m.GetUserByIDErr != nil {
		return nil, m.GetUserByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[userID]
	if !ok {
		return nil, repository.NewNotFoundError("user not found")
	}
	return u, nil
}

func (m *MockUserRepo) GetUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.NewNotFoundError("user not found")
}

func (m *MockUserRepo) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.sortedUsers()
	total := int64(len(users))
	return pageSlice(users, page, pageSize), total, nil
}

func (m *MockUserRepo) UsernameExists(username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepo) EmailExists(email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepo) CreateSubscription(userID, authorID uint) error {
	if m.CreateSubscriptionErr != nil {
		return m.CreateSubscriptionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Subscriptions[userID][authorID] {
		return repository.NewConflictError("already subscribed to this user")
	}
	if m.Subscriptions[userID] == nil {
		m.Subscriptions[userID] = make(map[uint]bool)
	}
	m.Subscriptions[userID][authorID] = true
	return nil
}

func (m *MockUserRepo) DeleteSubscription(userID, authorID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Subscriptions[userID][authorID] {
		return repository.NewNotFoundError("subscription not found")
	}
	delete(m.Subscriptions[userID], authorID)
	return nil
}

func (m *MockUserRepo) IsSubscribed(userID, authorID uint) (bool, error) {
	if m.IsSubscribedErr != nil {
		return false, m.IsSubscribedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Subscriptions[userID][authorID], nil
}

func (m *MockUserRepo) GetSubscribedAuthors(userID uint, page, pageSize int) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var authors []models.User
	for _, u := range m.sortedUsers() {
		if m.Subscriptions[userID][u.ID] {
			authors = append(authors, u)
		}
	}
	total := int64(len(authors))
	return pageSlice(authors, page, pageSize), total, nil
}

func (m *MockUserRepo) sortedUsers() []models.User {
	users := make([]models.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// --- MockTagRepo ---

// MockTagRepo is an in-memory mock implementation of repository.TagRepo.
type MockTagRepo struct {
	mu     sync.Mutex
	Tags   map[uint]*models.Tag
	NextID uint

	ListTagsErr error
}

// NewMockTagRepo creates a new MockTagRepo with initialized maps.
func NewMockTagRepo() *MockTagRepo {
	return &MockTagRepo{
		Tags:   make(map[uint]*models.Tag),
		NextID: 1,
	}
}

// AddTag seeds the catalog with a tag and returns it.
func (m *MockTagRepo) AddTag(name, color, slug string) *models.Tag {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	tag.ID = m.NextID
	m.NextID++
	m.Tags[tag.ID] = tag
	return tag
}

func (m *MockTagRepo) ListTags() ([]models.Tag, error) {
	if m.ListTagsErr != nil {
		return nil, m.ListTagsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make([]models.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *MockTagRepo) GetTagByID(tagID uint) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tags[tagID]
	if !ok {
		return nil, repository.NewNotFoundError("tag not found")
	}
	return t, nil
}

func (m *MockTagRepo) GetTagsByIDs(tagIDs []uint) ([]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tags []models.Tag
	for _, id := range tagIDs {
		if t, ok := m.Tags[id]; ok {
			tags = append(tags, *t)
		}
	}
	return tags, nil
}

func (m *MockTagRepo) FindOrCreateTag(tag *models.Tag) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.Tags {
		if t.Name == tag.Name && t.Slug == tag.Slug && t.Color == tag.Color {
			*tag = *t
			return false, nil
		}
	}

	tag.ID = m.NextID
	m.NextID++
	stored := *tag
	m.Tags[tag.ID] = &stored
	return true, nil
}

// --- MockIngredientRepo ---

// MockIngredientRepo is an in-memory mock implementation of repository.IngredientRepo.
type MockIngredientRepo struct {
	mu          sync.Mutex
	Ingredients map[uint]*models.Ingredient
	NextID      uint

	GetIngredientsByIDsErr error
}

// NewMockIngredientRepo creates a new MockIngredientRepo with initialized maps.
func NewMockIngredientRepo() *MockIngredientRepo {
	return &MockIngredientRepo{
		Ingredients: make(map[uint]*models.Ingredient),
		NextID:      1,
	}
}

// AddIngredient seeds the catalog with an ingredient and returns it.
func (m *MockIngredientRepo) AddIngredient(name, unit string) *models.Ingredient {
	m.mu.Lock()
	defer m.mu.Unlock()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	ingredient.ID = m.NextID
	m.NextID++
	m.Ingredients[ingredient.ID] = ingredient
	return ingredient
}

func (m *MockIngredientRepo) ListIngredients(namePrefix string) ([]models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ingredients []models.Ingredient
	for _, ing := range m.Ingredients {
		if namePrefix == "" || strings.HasPrefix(strings.ToLower(ing.Name), strings.ToLower(namePrefix)) {
			ingredients = append(ingredients, *ing)
		}
	}
	sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].Name < ingredients[j].Name })
	return ingredients, nil
}

func (m *MockIngredientRepo) GetIngredientByID(ingredientID uint) (*models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ing, ok := m.Ingredients[ingredientID]
	if !ok {
		return nil, repository.NewNotFoundError("ingredient not found")
	}
	return ing, nil
}

func (m *MockIngredientRepo) GetIngredientsByIDs(ingredientIDs []uint) ([]models.Ingredient, error) {
	if m.GetIngredientsByIDsErr != nil {
		return nil, m.GetIngredientsByIDsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[uint]bool, len(ingredientIDs))
	var ingredients []models.Ingredient
	for _, id := range ingredientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if ing, ok := m.Ingredients[id]; ok {
			ingredients = append(ingredients, *ing)
		}
	}
	return ingredients, nil
}

func (m *MockIngredientRepo) FindOrCreateIngredient(ingredient *models.Ingredient) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ing := range m.Ingredients {
		if ing.Name == ingredient.Name && ing.MeasurementUnit == ingredient.MeasurementUnit {
			*ingredient = *ing
			return false, nil
		}
	}

	ingredient.ID = m.NextID
	m.NextID++
	stored := *ingredient
	m.Ingredients[ingredient.ID] = &stored
	return true, nil
}

// --- MockRecipeRepo ---

// MockRecipeRepo is an in-memory mock implementation of repository.RecipeRepo.
// Authors and Catalog resolve the associations the SQL repository preloads;
// seed them alongside the recipes.
type MockRecipeRepo struct {
	mu        sync.Mutex
	Recipes   map[uint]*models.Recipe
	Authors   map[uint]*models.User
	Catalog   map[uint]*models.Ingredient
	Favorites map[uint]map[uint]bool // userID -> set of recipeIDs
	Carts     map[uint]map[uint]bool
	NextID    uint

	// Error overrides: set these to force specific methods to return errors.
	CreateRecipeErr      error
	GetRecipeByIDErr     error
	UpdateRecipeErr      error
	DeleteRecipeErr      error
	ListRecipesErr       error
	AddRelationErr       error
	AggregateShoppingErr error
}

// NewMockRecipeRepo creates a new MockRecipeRepo with initialized maps.
func NewMockRecipeRepo() *MockRecipeRepo {
	return &MockRecipeRepo{
		Recipes:   make(map[uint]*models.Recipe),
		Authors:   make(map[uint]*models.User),
		Catalog:   make(map[uint]*models.Ingredient),
		Favorites: make(map[uint]map[uint]bool),
		Carts:     make(map[uint]map[uint]bool),
		NextID:    1,
	}
}

func (m *MockRecipeRepo) GetRecipeByID(recipeID uint) (*models.Recipe, error) {
	if m.GetRecipeByIDErr != nil {
		return nil, m.GetRecipeByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("recipe not found")
	}
	m.resolveAssociations(r)
	return r, nil
}

func (m *MockRecipeRepo) ListRecipes(filter repository.RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error) {
	if m.ListRecipesErr != nil {
		return nil, 0, m.ListRecipesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Recipe
	for _, r := range m.sortedRecipes() {
		if !m.matchesFilter(&r, filter) {
			continue
		}
		m.resolveAssociations(&r)
		matched = append(matched, r)
	}
	total := int64(len(matched))
	return pageSlice(matched, page, pageSize), total, nil
}

func (m *MockRecipeRepo) matchesFilter(r *models.Recipe, filter repository.RecipeFilter) bool {
	if len(filter.TagSlugs) > 0 {
		found := false
		for _, t := range r.Tags {
			for _, slug := range filter.TagSlugs {
				if t.Slug == slug {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}

	if filter.AuthorID != nil && r.AuthorID != *filter.AuthorID {
		return false
	}

	if filter.Favorited != nil && filter.ViewerID != 0 {
		if m.Favorites[filter.ViewerID][r.ID] != *filter.Favorited {
			return false
		}
	}

	if filter.InCart != nil && filter.ViewerID != 0 {
		if m.Carts[filter.ViewerID][r.ID] != *filter.InCart {
			return false
		}
	}

	return true
}

func (m *MockRecipeRepo) GetAuthorRecipes(authorID uint, limit int) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recipes []models.Recipe
	for _, r := range m.sortedRecipes() {
		if r.AuthorID == authorID {
			recipes = append(recipes, r)
		}
		if limit > 0 && len(recipes) == limit {
			break
		}
	}
	return recipes, nil
}

func (m *MockRecipeRepo) CountAuthorRecipes(authorID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, r := range m.Recipes {
		if r.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (m *MockRecipeRepo) CreateRecipe(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	if m.CreateRecipeErr != nil {
		return m.CreateRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	recipe.ID = m.NextID
	m.NextID++

	m.applyTagsAndItems(recipe, tags, items)
	m.Recipes[recipe.ID] = recipe
	return nil
}

func (m *MockRecipeRepo) UpdateRecipe(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	if m.UpdateRecipeErr != nil {
		return m.UpdateRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Recipes[recipe.ID]
	if !ok {
		return repository.NewNotFoundError("recipe not found")
	}

	stored.Name = recipe.Name
	stored.Text = recipe.Text
	stored.CookingTime = recipe.CookingTime
	stored.ImageURL = recipe.ImageURL
	stored.ImageKey = recipe.ImageKey
	m.applyTagsAndItems(stored, tags, items)
	return nil
}

func (m *MockRecipeRepo) applyTagsAndItems(recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) {
	recipe.Tags = make([]*models.Tag, len(tags))
	for i := range tags {
		t := tags[i]
		recipe.Tags[i] = &t
	}

	recipe.Ingredients = make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		item.RecipeID = recipe.ID
		if item.Ingredient == nil {
			item.Ingredient = m.Catalog[item.IngredientID]
		}
		recipe.Ingredients[i] = item
	}
}

func (m *MockRecipeRepo) DeleteRecipe(recipeID uint) error {
	if m.DeleteRecipeErr != nil {
		return m.DeleteRecipeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Recipes[recipeID]; !ok {
		return repository.NewNotFoundError("recipe not found")
	}
	delete(m.Recipes, recipeID)
	for _, set := range m.Favorites {
		delete(set, recipeID)
	}
	for _, set := range m.Carts {
		delete(set, recipeID)
	}
	return nil
}

func (m *MockRecipeRepo) AddRecipeRelation(kind models.RelationKind, userID, recipeID uint) error {
	if m.AddRelationErr != nil {
		return m.AddRelationErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sets, err := m.relationSets(kind)
	if err != nil {
		return err
	}
	if sets[userID][recipeID] {
		return repository.NewConflictError("recipe is already added")
	}
	if sets[userID] == nil {
		sets[userID] = make(map[uint]bool)
	}
	sets[userID][recipeID] = true
	return nil
}

func (m *MockRecipeRepo) RemoveRecipeRelation(kind models.RelationKind, userID, recipeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sets, err := m.relationSets(kind)
	if err != nil {
		return err
	}
	if !sets[userID][recipeID] {
		return repository.NewNotFoundError("recipe is not in the list")
	}
	delete(sets[userID], recipeID)
	return nil
}

func (m *MockRecipeRepo) HasRecipeRelation(kind models.RelationKind, userID, recipeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sets, err := m.relationSets(kind)
	if err != nil {
		return false, err
	}
	return sets[userID][recipeID], nil
}

func (m *MockRecipeRepo) GetRelatedRecipeIDs(kind models.RelationKind, userID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sets, err := m.relationSets(kind)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(sets[userID]))
	for id := range sets[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockRecipeRepo) AggregateShoppingList(userID uint) ([]repository.ShoppingListItem, error) {
	if m.AggregateShoppingErr != nil {
		return nil, m.AggregateShoppingErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct {
		name string
		unit string
	}
	sums := make(map[key]int)
	for recipeID := range m.Carts[userID] {
		r, ok := m.Recipes[recipeID]
		if !ok {
			continue
		}
		for _, line := range r.Ingredients {
			ing := line.Ingredient
			if ing == nil {
				ing = m.Catalog[line.IngredientID]
			}
			if ing == nil {
				return nil, fmt.Errorf("ingredient %d not in catalog", line.IngredientID)
			}
			sums[key{name: ing.Name, unit: ing.MeasurementUnit}] += line.Amount
		}
	}

	items := make([]repository.ShoppingListItem, 0, len(sums))
	for k, amount := range sums {
		items = append(items, repository.ShoppingListItem{
			Name:            k.name,
			MeasurementUnit: k.unit,
			Amount:          amount,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

func (m *MockRecipeRepo) relationSets(kind models.RelationKind) (map[uint]map[uint]bool, error) {
	switch kind {
	case models.RelationFavorite:
		return m.Favorites, nil
	case models.RelationShoppingCart:
		return m.Carts, nil
	default:
		return nil, fmt.Errorf("unknown relation kind: %q", kind)
	}
}

func (m *MockRecipeRepo) sortedRecipes() []models.Recipe {
	recipes := make([]models.Recipe, 0, len(m.Recipes))
	for _, r := range m.Recipes {
		recipes = append(recipes, *r)
	}
	// Newest first, matching the SQL repository's ordering
	sort.Slice(recipes, func(i, j int) bool {
		if !recipes[i].PubDate.Equal(recipes[j].PubDate) {
			return recipes[i].PubDate.After(recipes[j].PubDate)
		}
		return recipes[i].ID > recipes[j].ID
	})
	return recipes
}

func (m *MockRecipeRepo) resolveAssociations(r *models.Recipe) {
	if r.Author == nil {
		r.Author = m.Authors[r.AuthorID]
	}
	for i := range r.Ingredients {
		if r.Ingredients[i].Ingredient == nil {
			r.Ingredients[i].Ingredient = m.Catalog[r.Ingredients[i].IngredientID]
		}
	}
}

// pageSlice applies 1-based page-number pagination to an in-memory slice.
func pageSlice[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- MockImageStore ---

// MockImageStore is a mock implementation of service.ImageStore that records
// uploads and deletes.
type MockImageStore struct {
	mu      sync.Mutex
	Uploads []string
	Deletes []string

	UploadFunc func(ctx context.Context, key string, imgBytes []byte) (string, error)
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *MockImageStore) Upload(ctx context.Context, key string, imgBytes []byte) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, imgBytes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Uploads = append(m.Uploads, key)
	return "https://images.test/" + key, nil
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deletes = append(m.Deletes, key)
	return nil
}
