package food

import (
	"Go-Shopping-Sync/domain"
	"context"
	"fmt"

	"github.com/google/uuid"
)

type (
	// Catalog maps food item ids to their catalog entries.
	Catalog map[string]domain.FoodItemSummary

	FoodService interface {
		// GetCatalog looks up the given ids. Ids missing from the catalog, or
		// not shaped like catalog ids, are absent from the result.
		GetCatalog(ctx context.Context, ids []string) (Catalog, error)
	}

	foodService struct {
		foodRepository FoodRepository
	}
)

func NewFoodService(foodRepository FoodRepository) FoodService {
	return &foodService{foodRepository: foodRepository}
}

func (s *foodService) GetCatalog(ctx context.Context, ids []string) (Catalog, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	lookup := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		if _, ok := seen[parsed]; ok {
			continue
		}
		seen[parsed] = struct{}{}
		lookup = append(lookup, parsed)
	}

	catalog := make(Catalog, len(lookup))
	if len(lookup) == 0 {
		return catalog, nil
	}

	items, err := s.foodRepository.GetFoodItemsByIDs(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("load food catalog: %w", err)
	}
	for _, item := range items {
		catalog[item.ID.String()] = domain.FoodItemSummary{
			ID:            item.ID.String(),
			Name:          item.Name,
			PreferredUnit: item.PreferredUnit,
		}
	}
	return catalog, nil
}

// PreferredUnits returns the display unit of every entry that has one.
func (c Catalog) PreferredUnits() map[string]string {
	units := make(map[string]string, len(c))
	for id, entry := range c {
		if entry.PreferredUnit != "" {
			units[id] = entry.PreferredUnit
		}
	}
	return units
}

func (c Catalog) Name(id string) string {
	return c[id].Name
}
