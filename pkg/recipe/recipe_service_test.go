package recipe

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeRecipeRepository struct {
	recipes map[uuid.UUID]*entities.Recipe
}

func (f *fakeRecipeRepository) GetRecipeByID(_ context.Context, id uuid.UUID) (*entities.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	return recipe, nil
}

func pancakes() *entities.Recipe {
	return &entities.Recipe{
		ID:       uuid.New(),
		Title:    "Pancakes",
		Servings: 4,
		Ingredients: datatypes.NewJSONSlice([]entities.RecipeIngredient{
			{FoodItemID: "flour", Name: "Flour", Quantity: 2, Unit: "cup"},
			{FoodItemID: "milk", Name: "Milk", Quantity: 1.5, Unit: "cup"},
			{FoodItemID: "salt", Name: "Salt", Quantity: 0, Unit: "pinch"},
		}),
	}
}

func TestResolveSources(t *testing.T) {
	recipe := pancakes()
	svc := NewRecipeService(&fakeRecipeRepository{recipes: map[uuid.UUID]*entities.Recipe{recipe.ID: recipe}})

	got, err := svc.ResolveSources(context.Background(), []domain.ListSource{
		{Kind: domain.SourceKindFoodItem, FoodItemID: "eggs", Name: "Eggs", Quantity: 6, Unit: "each"},
		{Kind: domain.SourceKindRecipe, RecipeID: recipe.ID.String(), Servings: 8},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.CandidateRequest{
		FoodItemID: "eggs", Name: "Eggs", Quantity: 6, Unit: "each", SourceID: "food_item:eggs",
	}, got[0])
	assert.Equal(t, "flour", got[1].FoodItemID)
	assert.Equal(t, 4.0, got[1].Quantity)
	assert.Equal(t, 3.0, got[2].Quantity)
	assert.Equal(t, "recipe:"+recipe.ID.String(), got[2].SourceID)
}

func TestResolveSourcesWithoutServingsKeepsQuantities(t *testing.T) {
	recipe := pancakes()
	svc := NewRecipeService(&fakeRecipeRepository{recipes: map[uuid.UUID]*entities.Recipe{recipe.ID: recipe}})

	got, err := svc.ResolveSources(context.Background(), []domain.ListSource{
		{Kind: domain.SourceKindRecipe, RecipeID: recipe.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Quantity)
}

func TestResolveSourcesErrors(t *testing.T) {
	svc := NewRecipeService(&fakeRecipeRepository{recipes: map[uuid.UUID]*entities.Recipe{}})
	ctx := context.Background()

	_, err := svc.ResolveSources(ctx, []domain.ListSource{{Kind: domain.SourceKindRecipe, RecipeID: uuid.NewString()}})
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = svc.ResolveSources(ctx, []domain.ListSource{{Kind: domain.SourceKindRecipe, RecipeID: "nope"}})
	assert.ErrorIs(t, err, domain.ErrInvalidRecipeID)

	_, err = svc.ResolveSources(ctx, []domain.ListSource{{Kind: "group"}})
	assert.ErrorIs(t, err, domain.ErrUnknownSourceKind)
}
