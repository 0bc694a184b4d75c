package food

import (
	"Go-Shopping-Sync/entities"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFoodRepository struct {
	items []*entities.FoodItem
	asked []uuid.UUID
}

func (f *fakeFoodRepository) GetFoodItemsByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.FoodItem, error) {
	f.asked = append(f.asked, ids...)
	var out []*entities.FoodItem
	for _, item := range f.items {
		for _, id := range ids {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func TestGetCatalog(t *testing.T) {
	milk := &entities.FoodItem{ID: uuid.New(), Name: "Milk", PreferredUnit: "cup"}
	eggs := &entities.FoodItem{ID: uuid.New(), Name: "Eggs"}
	repo := &fakeFoodRepository{items: []*entities.FoodItem{milk, eggs}}
	svc := NewFoodService(repo)

	catalog, err := svc.GetCatalog(context.Background(), []string{
		milk.ID.String(), eggs.ID.String(), milk.ID.String(), "flour", uuid.NewString(),
	})
	require.NoError(t, err)

	assert.Len(t, repo.asked, 3)
	assert.Len(t, catalog, 2)
	assert.Equal(t, "Milk", catalog.Name(milk.ID.String()))
	assert.Equal(t, "", catalog.Name("flour"))
	assert.Equal(t, map[string]string{milk.ID.String(): "cup"}, catalog.PreferredUnits())
}

func TestGetCatalogSkipsLookupWithoutCatalogIDs(t *testing.T) {
	repo := &fakeFoodRepository{}
	catalog, err := NewFoodService(repo).GetCatalog(context.Background(), []string{"flour"})
	require.NoError(t, err)
	assert.Empty(t, catalog)
	assert.Empty(t, repo.asked)
}
