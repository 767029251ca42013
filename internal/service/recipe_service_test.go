package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
	"github.com/platefull/platefull-api/internal/testutil"
)

type recipeTestEnv struct {
	svc         *RecipeService
	repo        *testutil.MockRecipeRepo
	tags        *testutil.MockTagRepo
	ingredients *testutil.MockIngredientRepo
	users       *testutil.MockUserRepo
	images      *testutil.MockImageStore
}

func newRecipeTestEnv() *recipeTestEnv {
	repo := testutil.NewMockRecipeRepo()
	tags := testutil.NewMockTagRepo()
	ingredients := testutil.NewMockIngredientRepo()
	users := testutil.NewMockUserRepo()
	images := &testutil.MockImageStore{}

	return &recipeTestEnv{
		svc: &RecipeService{
			Cfg:         &config.Config{},
			Repo:        repo,
			Tags:        tags,
			Ingredients: ingredients,
			Users:       users,
			Images:      images,
		},
		repo:        repo,
		tags:        tags,
		ingredients: ingredients,
		users:       users,
		images:      images,
	}
}

// seedCatalog adds one tag and two ingredients and registers them with the
// recipe repo's association maps.
func (env *recipeTestEnv) seedCatalog() (tagID, flourID, milkID uint) {
	tag := env.tags.AddTag("Breakfast", "#E26C2D", "breakfast")
	flour := env.ingredients.AddIngredient("flour", "g")
	milk := env.ingredients.AddIngredient("milk", "ml")
	env.repo.Catalog[flour.ID] = flour
	env.repo.Catalog[milk.ID] = milk
	return tag.ID, flour.ID, milk.ID
}

func (env *recipeTestEnv) seedAuthor() *models.User {
	author := testutil.TestAuthor()
	env.users.Users[author.ID] = author
	env.repo.Authors[author.ID] = author
	return author
}

func validRecipeInput(tagID uint, ingredientIDs ...uint) RecipeInput {
	input := RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       testutil.TinyPNGBase64,
		CookingTime: 20,
		Tags:        []uint{tagID},
	}
	for _, id := range ingredientIDs {
		input.Ingredients = append(input.Ingredients, RecipeIngredientInput{ID: id, Amount: 100})
	}
	return input
}

func TestCreateRecipe_Success(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()

	resp, err := env.svc.CreateRecipe(context.Background(), author, validRecipeInput(tagID, flourID))
	if err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}
	if resp.ID == 0 {
		t.Fatal("expected a non-zero recipe ID")
	}
	if resp.Author.ID != author.ID {
		t.Errorf("author ID = %d, want %d", resp.Author.ID, author.ID)
	}
	if len(resp.Tags) != 1 || resp.Tags[0].Slug != "breakfast" {
		t.Errorf("unexpected tags: %+v", resp.Tags)
	}
	if len(resp.Ingredients) != 1 || resp.Ingredients[0].Name != "flour" || resp.Ingredients[0].Amount != 100 {
		t.Errorf("unexpected ingredients: %+v", resp.Ingredients)
	}
	if resp.IsFavorited || resp.IsInShoppingCart {
		t.Error("fresh recipe should not carry relation flags")
	}
	if len(env.images.Uploads) != 1 {
		t.Errorf("expected 1 image upload, got %d", len(env.images.Uploads))
	}
}

func TestCreateRecipe_ValidationOrder(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, milkID := env.seedCatalog()
	author := env.seedAuthor()

	unknownIngredient := flourID + milkID + 100
	unknownTag := tagID + 100

	cases := []struct {
		name    string
		mutate  func(input *RecipeInput)
		wantErr ValidationError
	}{
		{
			name: "missing image reported before missing ingredients",
			mutate: func(input *RecipeInput) {
				input.Image = ""
				input.Ingredients = nil
			},
			wantErr: ErrMissingImage,
		},
		{
			name: "missing ingredients reported before missing tags",
			mutate: func(input *RecipeInput) {
				input.Ingredients = nil
				input.Tags = nil
			},
			wantErr: ErrNoIngredients,
		},
		{
			name: "unknown ingredient reported before duplicates and amounts",
			mutate: func(input *RecipeInput) {
				input.Ingredients = []RecipeIngredientInput{
					{ID: unknownIngredient, Amount: 0},
					{ID: unknownIngredient, Amount: 0},
				}
			},
			wantErr: ErrUnknownIngredient,
		},
		{
			name: "duplicate ingredient reported before bad amount",
			mutate: func(input *RecipeInput) {
				input.Ingredients = []RecipeIngredientInput{
					{ID: flourID, Amount: 100},
					{ID: flourID, Amount: 0},
				}
			},
			wantErr: ErrDuplicateIngredient,
		},
		{
			name: "bad amount reported before missing tags",
			mutate: func(input *RecipeInput) {
				input.Ingredients = []RecipeIngredientInput{{ID: flourID, Amount: 0}}
				input.Tags = nil
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "amount above the ceiling rejected",
			mutate: func(input *RecipeInput) {
				input.Ingredients = []RecipeIngredientInput{{ID: flourID, Amount: 1441}}
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "missing tags reported before bad cooking time",
			mutate: func(input *RecipeInput) {
				input.Tags = nil
				input.CookingTime = 0
			},
			wantErr: ErrNoTags,
		},
		{
			name: "duplicate tag reported before bad cooking time",
			mutate: func(input *RecipeInput) {
				input.Tags = []uint{tagID, tagID}
				input.CookingTime = 0
			},
			wantErr: ErrDuplicateTag,
		},
		{
			name: "unknown tag rejected",
			mutate: func(input *RecipeInput) {
				input.Tags = []uint{unknownTag}
			},
			wantErr: ErrUnknownTag,
		},
		{
			name: "cooking time below the floor rejected",
			mutate: func(input *RecipeInput) {
				input.CookingTime = 0
			},
			wantErr: ErrInvalidCookingTime,
		},
		{
			name: "cooking time above the ceiling rejected",
			mutate: func(input *RecipeInput) {
				input.CookingTime = 1441
			},
			wantErr: ErrInvalidCookingTime,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRecipeInput(tagID, flourID)
			tc.mutate(&input)

			_, err := env.svc.CreateRecipe(context.Background(), author, input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if len(env.images.Uploads) != 0 {
		t.Errorf("no image should be uploaded for invalid input, got %d uploads", len(env.images.Uploads))
	}
}

func TestCreateRecipe_CookingTimeBoundaries(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()

	for _, cookingTime := range []int{1, 1440} {
		input := validRecipeInput(tagID, flourID)
		input.CookingTime = cookingTime
		if _, err := env.svc.CreateRecipe(context.Background(), author, input); err != nil {
			t.Errorf("cooking time %d should be accepted: %v", cookingTime, err)
		}
	}
}

func TestUpdateRecipe_WholeReplacement(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, milkID := env.seedCatalog()
	author := env.seedAuthor()

	created, err := env.svc.CreateRecipe(context.Background(), author, validRecipeInput(tagID, flourID))
	if err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}

	update := RecipeInput{
		Name:        "Crepes",
		Text:        "Thinner batter.",
		CookingTime: 30,
		Tags:        []uint{tagID},
		Ingredients: []RecipeIngredientInput{{ID: milkID, Amount: 250}},
	}
	updated, err := env.svc.UpdateRecipe(context.Background(), author, created.ID, update)
	if err != nil {
		t.Fatalf("UpdateRecipe error: %v", err)
	}

	if updated.Name != "Crepes" || updated.CookingTime != 30 {
		t.Errorf("fields not updated: %+v", updated)
	}
	// The ingredient set is replaced wholesale, not merged
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].Name != "milk" {
		t.Errorf("unexpected ingredients after update: %+v", updated.Ingredients)
	}
	// No new image was sent, so the original one stays
	if updated.Image != created.Image {
		t.Errorf("image changed without a new payload: %q -> %q", created.Image, updated.Image)
	}
	if len(env.images.Deletes) != 0 {
		t.Errorf("no image should be deleted, got %v", env.images.Deletes)
	}
}

func TestUpdateRecipe_NewImageReplacesOld(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()

	created, err := env.svc.CreateRecipe(context.Background(), author, validRecipeInput(tagID, flourID))
	if err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}
	oldKey := env.images.Uploads[0]

	update := validRecipeInput(tagID, flourID)
	updated, err := env.svc.UpdateRecipe(context.Background(), author, created.ID, update)
	if err != nil {
		t.Fatalf("UpdateRecipe error: %v", err)
	}

	if updated.Image == created.Image {
		t.Error("expected a new image URL after re-upload")
	}
	if len(env.images.Deletes) != 1 || env.images.Deletes[0] != oldKey {
		t.Errorf("old image key should be deleted, got deletes %v", env.images.Deletes)
	}
}

func TestUpdateRecipe_Permissions(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()

	created, err := env.svc.CreateRecipe(context.Background(), author, validRecipeInput(tagID, flourID))
	if err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}

	stranger := testutil.TestUser()
	_, err = env.svc.UpdateRecipe(context.Background(), stranger, created.ID, validRecipeInput(tagID, flourID))
	if !errors.Is(err, ErrNotRecipeAuthor) {
		t.Fatalf("stranger update error = %v, want %v", err, ErrNotRecipeAuthor)
	}

	staff := testutil.TestUser()
	staff.IsStaff = true
	if _, err := env.svc.UpdateRecipe(context.Background(), staff, created.ID, validRecipeInput(tagID, flourID)); err != nil {
		t.Fatalf("staff update error: %v", err)
	}

	if err := env.svc.DeleteRecipe(context.Background(), stranger, created.ID); !errors.Is(err, ErrNotRecipeAuthor) {
		t.Fatalf("stranger delete error = %v, want %v", err, ErrNotRecipeAuthor)
	}
	if err := env.svc.DeleteRecipe(context.Background(), author, created.ID); err != nil {
		t.Fatalf("author delete error: %v", err)
	}
}

// seedRecipes creates n recipes with ascending publication dates so the
// expected listing order is newest (highest ID) first.
func (env *recipeTestEnv) seedRecipes(t *testing.T, n int, tagID uint, ingredientID uint, author *models.User) []uint {
	t.Helper()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		input := validRecipeInput(tagID, ingredientID)
		input.Name = fmt.Sprintf("Recipe %d", i+1)
		resp, err := env.svc.CreateRecipe(context.Background(), author, input)
		if err != nil {
			t.Fatalf("CreateRecipe %d error: %v", i+1, err)
		}
		env.repo.Recipes[resp.ID].PubDate = base.Add(time.Duration(i) * time.Minute)
		ids = append(ids, resp.ID)
	}
	return ids
}

func TestListRecipes_Pagination(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()
	env.seedRecipes(t, 13, tagID, flourID, author)

	wantSizes := map[int]int{1: 6, 2: 6, 3: 1, 4: 0}
	for page, wantLen := range wantSizes {
		recipes, total, err := env.svc.ListRecipes(nil, repository.RecipeFilter{}, page, 6)
		if err != nil {
			t.Fatalf("ListRecipes page %d error: %v", page, err)
		}
		if total != 13 {
			t.Errorf("page %d total = %d, want 13", page, total)
		}
		if len(recipes) != wantLen {
			t.Errorf("page %d has %d recipes, want %d", page, len(recipes), wantLen)
		}
	}

	// Newest first
	recipes, _, err := env.svc.ListRecipes(nil, repository.RecipeFilter{}, 1, 6)
	if err != nil {
		t.Fatalf("ListRecipes error: %v", err)
	}
	if recipes[0].Name != "Recipe 13" {
		t.Errorf("first recipe = %q, want the newest one", recipes[0].Name)
	}
}

func TestListRecipes_TriStateRelationFilters(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()
	ids := env.seedRecipes(t, 4, tagID, flourID, author)

	viewer := testutil.TestUser()
	env.users.Users[viewer.ID] = viewer
	for _, id := range ids[:2] {
		if _, err := env.svc.AddRecipeToList(viewer, models.RelationFavorite, id); err != nil {
			t.Fatalf("AddRecipeToList error: %v", err)
		}
	}

	boolPtr := func(v bool) *bool { return &v }

	// true restricts to the viewer's set
	recipes, total, err := env.svc.ListRecipes(viewer, repository.RecipeFilter{Favorited: boolPtr(true)}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes favorited=true error: %v", err)
	}
	if total != 2 || len(recipes) != 2 {
		t.Fatalf("favorited=true returned %d/%d, want 2/2", len(recipes), total)
	}
	for _, r := range recipes {
		if !r.IsFavorited {
			t.Errorf("recipe %d should carry is_favorited", r.ID)
		}
	}

	// false restricts to the exact complement within the base collection
	recipes, total, err = env.svc.ListRecipes(viewer, repository.RecipeFilter{Favorited: boolPtr(false)}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes favorited=false error: %v", err)
	}
	if total != 2 || len(recipes) != 2 {
		t.Fatalf("favorited=false returned %d/%d, want 2/2", len(recipes), total)
	}
	for _, r := range recipes {
		if r.IsFavorited {
			t.Errorf("recipe %d should not be favorited", r.ID)
		}
	}

	// nil leaves the dimension unfiltered
	_, total, err = env.svc.ListRecipes(viewer, repository.RecipeFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes unfiltered error: %v", err)
	}
	if total != 4 {
		t.Errorf("unfiltered total = %d, want 4", total)
	}
}

func TestListRecipes_AnonymousRelationFilters(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()
	env.seedRecipes(t, 3, tagID, flourID, author)

	boolPtr := func(v bool) *bool { return &v }

	// An anonymous viewer's set is empty: membership yields nothing
	recipes, total, err := env.svc.ListRecipes(nil, repository.RecipeFilter{Favorited: boolPtr(true)}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes error: %v", err)
	}
	if total != 0 || len(recipes) != 0 {
		t.Errorf("anonymous favorited=true returned %d/%d, want empty", len(recipes), total)
	}

	// ...and the complement of an empty set excludes nothing
	_, total, err = env.svc.ListRecipes(nil, repository.RecipeFilter{InCart: boolPtr(false)}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes error: %v", err)
	}
	if total != 3 {
		t.Errorf("anonymous in_cart=false total = %d, want 3", total)
	}
}

func TestListRecipes_TagFilter(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	dinner := env.tags.AddTag("Dinner", "#49B64E", "dinner")
	author := env.seedAuthor()

	env.seedRecipes(t, 2, tagID, flourID, author)
	input := validRecipeInput(dinner.ID, flourID)
	input.Name = "Stew"
	if _, err := env.svc.CreateRecipe(context.Background(), author, input); err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}

	_, total, err := env.svc.ListRecipes(nil, repository.RecipeFilter{TagSlugs: []string{"dinner"}}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes error: %v", err)
	}
	if total != 1 {
		t.Errorf("dinner-tagged total = %d, want 1", total)
	}

	// Slugs OR-match
	_, total, err = env.svc.ListRecipes(nil, repository.RecipeFilter{TagSlugs: []string{"dinner", "breakfast"}}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecipes error: %v", err)
	}
	if total != 3 {
		t.Errorf("dinner+breakfast total = %d, want 3", total)
	}
}

func TestRecipeRelations_AddAndRemove(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()
	ids := env.seedRecipes(t, 1, tagID, flourID, author)

	viewer := testutil.TestUser()
	env.users.Users[viewer.ID] = viewer

	short, err := env.svc.AddRecipeToList(viewer, models.RelationShoppingCart, ids[0])
	if err != nil {
		t.Fatalf("AddRecipeToList error: %v", err)
	}
	if short.ID != ids[0] {
		t.Errorf("short response ID = %d, want %d", short.ID, ids[0])
	}

	// Adding the same pair again is a conflict, and the set stays at one entry
	_, err = env.svc.AddRecipeToList(viewer, models.RelationShoppingCart, ids[0])
	var conflict repository.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second add error = %v, want ConflictError", err)
	}
	cartIDs, err := env.repo.GetRelatedRecipeIDs(models.RelationShoppingCart, viewer.ID)
	if err != nil {
		t.Fatalf("GetRelatedRecipeIDs error: %v", err)
	}
	if len(cartIDs) != 1 {
		t.Errorf("cart has %d entries after duplicate add, want 1", len(cartIDs))
	}

	if err := env.svc.RemoveRecipeFromList(viewer, models.RelationShoppingCart, ids[0]); err != nil {
		t.Fatalf("RemoveRecipeFromList error: %v", err)
	}

	// Removing again is an error, not a no-op
	err = env.svc.RemoveRecipeFromList(viewer, models.RelationShoppingCart, ids[0])
	if !errors.Is(err, ErrRecipeNotInList) {
		t.Fatalf("second remove error = %v, want %v", err, ErrRecipeNotInList)
	}

	// The favorite set was never touched
	if err := env.svc.RemoveRecipeFromList(viewer, models.RelationFavorite, ids[0]); !errors.Is(err, ErrRecipeNotInList) {
		t.Fatalf("favorite remove error = %v, want %v", err, ErrRecipeNotInList)
	}

	// Unknown recipe is a missing resource, not a missing membership
	var notFound repository.NotFoundError
	err = env.svc.RemoveRecipeFromList(viewer, models.RelationShoppingCart, ids[0]+999)
	if !errors.As(err, &notFound) {
		t.Fatalf("unknown recipe remove error = %v, want NotFoundError", err)
	}
}

func TestGetRecipe_ViewerFlags(t *testing.T) {
	env := newRecipeTestEnv()
	tagID, flourID, _ := env.seedCatalog()
	author := env.seedAuthor()
	ids := env.seedRecipes(t, 1, tagID, flourID, author)

	viewer := testutil.TestUser()
	env.users.Users[viewer.ID] = viewer
	if _, err := env.svc.AddRecipeToList(viewer, models.RelationFavorite, ids[0]); err != nil {
		t.Fatalf("AddRecipeToList error: %v", err)
	}
	if err := env.users.CreateSubscription(viewer.ID, author.ID); err != nil {
		t.Fatalf("CreateSubscription error: %v", err)
	}

	resp, err := env.svc.GetRecipe(viewer, ids[0])
	if err != nil {
		t.Fatalf("GetRecipe error: %v", err)
	}
	if !resp.IsFavorited {
		t.Error("expected is_favorited for the viewer")
	}
	if resp.IsInShoppingCart {
		t.Error("recipe should not be in the cart")
	}
	if !resp.Author.IsSubscribed {
		t.Error("expected author.is_subscribed for the viewer")
	}

	// Anonymous viewers see no flags
	resp, err = env.svc.GetRecipe(nil, ids[0])
	if err != nil {
		t.Fatalf("GetRecipe error: %v", err)
	}
	if resp.IsFavorited || resp.Author.IsSubscribed {
		t.Error("anonymous view should carry no viewer-relative flags")
	}
}
