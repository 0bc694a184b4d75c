package shoppinglist

import (
	"Go-Shopping-Sync/domain"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSourceReadsStoredItems(t *testing.T) {
	repo := newMemoryListRepository()
	storeID := uuid.New()
	repo.seed(storeID, domain.ListItem{FoodItemID: "milk", Name: "Milk", Quantity: 2, Unit: "cup", Checked: true})
	snapshots := NewSnapshotSource(repo)

	items, err := snapshots.ListItems(context.Background(), storeID.String())
	require.NoError(t, err)
	assert.Equal(t, []domain.ListItem{{FoodItemID: "milk", Name: "Milk", Quantity: 2, Unit: "cup", Checked: true}}, items)

	_, err = snapshots.ListItems(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	assert.Zero(t, repo.writes)
}
