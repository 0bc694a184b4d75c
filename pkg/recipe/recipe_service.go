package recipe

import (
	"Go-Shopping-Sync/domain"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type (
	RecipeService interface {
		// ResolveSources flattens food item and recipe sources into candidate
		// requests, in source order.
		ResolveSources(ctx context.Context, sources []domain.ListSource) ([]domain.CandidateRequest, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
	}
)

func NewRecipeService(recipeRepository RecipeRepository) RecipeService {
	return &recipeService{recipeRepository: recipeRepository}
}

func (s *recipeService) ResolveSources(ctx context.Context, sources []domain.ListSource) ([]domain.CandidateRequest, error) {
	candidates := make([]domain.CandidateRequest, 0, len(sources))

	for _, source := range sources {
		switch source.Kind {
		case domain.SourceKindFoodItem:
			candidates = append(candidates, domain.CandidateRequest{
				FoodItemID: source.FoodItemID,
				Name:       source.Name,
				Quantity:   source.Quantity,
				Unit:       source.Unit,
				SourceID:   domain.SourceKindFoodItem + ":" + source.FoodItemID,
			})
		case domain.SourceKindRecipe:
			resolved, err := s.resolveRecipe(ctx, source)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, resolved...)
		default:
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSourceKind, source.Kind)
		}
	}

	return candidates, nil
}

func (s *recipeService) resolveRecipe(ctx context.Context, source domain.ListSource) ([]domain.CandidateRequest, error) {
	recipeID, err := uuid.Parse(source.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRecipeID, source.RecipeID)
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	scale := 1.0
	if source.Servings > 0 && recipe.Servings > 0 {
		scale = float64(source.Servings) / float64(recipe.Servings)
	}

	candidates := make([]domain.CandidateRequest, 0, len(recipe.Ingredients))
	for _, ingredient := range recipe.Ingredients {
		// "to taste" ingredients carry no quantity and never reach the list
		if ingredient.Quantity <= 0 {
			log.Infow("skipping unquantified ingredient", "recipe_id", recipe.ID, "food_item_id", ingredient.FoodItemID)
			continue
		}
		candidates = append(candidates, domain.CandidateRequest{
			FoodItemID: ingredient.FoodItemID,
			Name:       ingredient.Name,
			Quantity:   ingredient.Quantity * scale,
			Unit:       ingredient.Unit,
			SourceID:   domain.SourceKindRecipe + ":" + recipe.ID.String(),
		})
	}
	return candidates, nil
}
