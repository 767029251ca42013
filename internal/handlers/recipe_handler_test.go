package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/service"
	"github.com/platefull/platefull-api/internal/testutil"
)

type recipeHandlerEnv struct {
	handler     *RecipeHandler
	svc         *service.RecipeService
	repo        *testutil.MockRecipeRepo
	tags        *testutil.MockTagRepo
	ingredients *testutil.MockIngredientRepo
	users       *testutil.MockUserRepo
}

func newRecipeHandlerEnv() *recipeHandlerEnv {
	repo := testutil.NewMockRecipeRepo()
	tags := testutil.NewMockTagRepo()
	ingredients := testutil.NewMockIngredientRepo()
	users := testutil.NewMockUserRepo()

	svc := &service.RecipeService{
		Cfg:         &config.Config{},
		Repo:        repo,
		Tags:        tags,
		Ingredients: ingredients,
		Users:       users,
		Images:      &testutil.MockImageStore{},
	}
	shoppingList := service.NewShoppingListService(&config.Config{}, repo)

	return &recipeHandlerEnv{
		handler:     NewRecipeHandler(svc, shoppingList),
		svc:         svc,
		repo:        repo,
		tags:        tags,
		ingredients: ingredients,
		users:       users,
	}
}

func (env *recipeHandlerEnv) router(authed *models.User) *gin.Engine {
	r := gin.New()
	if authed != nil {
		r.Use(func(c *gin.Context) {
			c.Set("user", authed)
			c.Next()
		})
	}
	r.GET("/recipes", env.handler.ListRecipes)
	r.GET("/recipes/download_shopping_cart", env.handler.DownloadShoppingCart)
	r.GET("/recipes/:recipe_id", env.handler.GetRecipe)
	r.POST("/recipes/:recipe_id/favorite", env.handler.FavoriteRecipe)
	r.DELETE("/recipes/:recipe_id/favorite", env.handler.UnfavoriteRecipe)
	r.POST("/recipes/:recipe_id/shopping_cart", env.handler.AddToShoppingCart)
	r.DELETE("/recipes/:recipe_id/shopping_cart", env.handler.RemoveFromShoppingCart)
	return r
}

// seedRecipe creates a recipe through the service so the repo's association
// maps are populated the same way production writes populate them.
func (env *recipeHandlerEnv) seedRecipe(t *testing.T, author *models.User) uint {
	t.Helper()

	env.users.Users[author.ID] = author
	env.repo.Authors[author.ID] = author

	tag, ok := env.tags.Tags[1]
	if !ok {
		tag = env.tags.AddTag("Breakfast", "#E26C2D", "breakfast")
	}
	flour, ok := env.ingredients.Ingredients[1]
	if !ok {
		flour = env.ingredients.AddIngredient("flour", "g")
		env.repo.Catalog[flour.ID] = flour
	}

	resp, err := env.svc.CreateRecipe(context.Background(), author, service.RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       testutil.TinyPNGBase64,
		CookingTime: 20,
		Tags:        []uint{tag.ID},
		Ingredients: []service.RecipeIngredientInput{{ID: flour.ID, Amount: 200}},
	})
	if err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}
	return resp.ID
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListRecipesHandler_Envelope(t *testing.T) {
	env := newRecipeHandlerEnv()
	author := testutil.TestAuthor()
	env.seedRecipe(t, author)
	env.seedRecipe(t, author)

	r := env.router(nil)
	w := doRequest(r, "GET", "/recipes?page=1&limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Count    int64             `json:"count"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
		Results  []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Count != 2 || resp.Page != 1 || resp.PageSize != 1 {
		t.Errorf("envelope = count %d page %d page_size %d, want 2/1/1", resp.Count, resp.Page, resp.PageSize)
	}
	if len(resp.Results) != 1 {
		t.Errorf("got %d results, want 1", len(resp.Results))
	}
}

func TestListRecipesHandler_InvalidAuthor(t *testing.T) {
	env := newRecipeHandlerEnv()
	r := env.router(nil)

	w := doRequest(r, "GET", "/recipes?author=abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestFavoriteHandler_DoubleAddConflicts(t *testing.T) {
	env := newRecipeHandlerEnv()
	author := testutil.TestAuthor()
	recipeID := env.seedRecipe(t, author)

	user := testutil.TestUser()
	env.users.Users[user.ID] = user
	r := env.router(user)

	path := "/recipes/" + uintString(recipeID) + "/favorite"
	w := doRequest(r, "POST", path)
	if w.Code != http.StatusCreated {
		t.Fatalf("favorite status = %d, want %d. body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	w = doRequest(r, "POST", path)
	if w.Code != http.StatusBadRequest {
		t.Errorf("double favorite status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doRequest(r, "DELETE", path)
	if w.Code != http.StatusNoContent {
		t.Errorf("unfavorite status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doRequest(r, "DELETE", path)
	if w.Code != http.StatusBadRequest {
		t.Errorf("repeat unfavorite status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestFavoriteHandler_MissingRecipe(t *testing.T) {
	env := newRecipeHandlerEnv()
	user := testutil.TestUser()
	env.users.Users[user.ID] = user
	r := env.router(user)

	w := doRequest(r, "POST", "/recipes/999/favorite")
	if w.Code != http.StatusNotFound {
		t.Errorf("favorite missing recipe status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doRequest(r, "DELETE", "/recipes/999/favorite")
	if w.Code != http.StatusNotFound {
		t.Errorf("unfavorite missing recipe status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDownloadShoppingCartHandler(t *testing.T) {
	env := newRecipeHandlerEnv()
	author := testutil.TestAuthor()
	recipeID := env.seedRecipe(t, author)

	user := testutil.TestUser()
	env.users.Users[user.ID] = user
	r := env.router(user)

	w := doRequest(r, "POST", "/recipes/"+uintString(recipeID)+"/shopping_cart")
	if w.Code != http.StatusCreated {
		t.Fatalf("add to cart status = %d, want %d. body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	w = doRequest(r, "GET", "/recipes/download_shopping_cart")
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=testuser_shopping_list.txt" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "- flour (g) - 200") {
		t.Errorf("body is missing the aggregated line: %q", w.Body.String())
	}
}

func TestGetRecipeHandler_NotFound(t *testing.T) {
	env := newRecipeHandlerEnv()
	r := env.router(nil)

	w := doRequest(r, "GET", "/recipes/999")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
