package shoppinglist

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/pkg/broadcast"
	"context"

	"github.com/google/uuid"
)

type listSnapshots struct {
	shoppingListRepository ShoppingListRepository
}

// NewSnapshotSource serves stored list items to the broadcast hub. Callers
// are trusted; no access check is made.
func NewSnapshotSource(shoppingListRepository ShoppingListRepository) broadcast.SnapshotSource {
	return &listSnapshots{shoppingListRepository: shoppingListRepository}
}

func (s *listSnapshots) ListItems(ctx context.Context, storeID string) ([]domain.ListItem, error) {
	storeUUID, err := uuid.Parse(storeID)
	if err != nil {
		return nil, domain.ErrStoreNotFound
	}
	list, err := s.shoppingListRepository.GetOrCreate(ctx, storeUUID)
	if err != nil {
		return nil, err
	}
	return toListItems(list.Items), nil
}
