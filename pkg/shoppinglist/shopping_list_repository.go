package shoppinglist

import (
	"Go-Shopping-Sync/entities"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// UpdateFunc receives a copy of the stored items and returns the items to
	// store instead. Returning an error aborts the write.
	UpdateFunc func(current []entities.ShoppingListItem) ([]entities.ShoppingListItem, error)

	ShoppingListRepository interface {
		// GetOrCreate returns the store's list, creating an empty one on
		// first access.
		GetOrCreate(ctx context.Context, storeID uuid.UUID) (*entities.ShoppingList, error)
		// UpdateItems swaps the item set atomically and returns the items
		// before and after the write.
		UpdateItems(ctx context.Context, storeID uuid.UUID, fn UpdateFunc) (prev, next []entities.ShoppingListItem, err error)
	}

	shoppingListRepository struct {
		db *gorm.DB
	}
)

func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

func (r *shoppingListRepository) GetOrCreate(ctx context.Context, storeID uuid.UUID) (*entities.ShoppingList, error) {
	list, err := r.findOrCreate(r.db.WithContext(ctx), storeID, false)
	if err != nil {
		return nil, fmt.Errorf("get shopping list for store %s: %w", storeID, err)
	}
	return list, nil
}

func (r *shoppingListRepository) UpdateItems(ctx context.Context, storeID uuid.UUID, fn UpdateFunc) (prev, next []entities.ShoppingListItem, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := r.findOrCreate(tx, storeID, true)
		if err != nil {
			return err
		}

		prev = append([]entities.ShoppingListItem{}, list.Items...)
		next, err = fn(append([]entities.ShoppingListItem{}, prev...))
		if err != nil {
			return err
		}
		if next == nil {
			next = []entities.ShoppingListItem{}
		}

		return tx.Model(list).Updates(map[string]any{
			"items":   datatypes.NewJSONSlice(next),
			"version": gorm.Expr("version + 1"),
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

// findOrCreate tolerates a concurrent first access: the insert is a no-op
// when another request created the row first.
func (r *shoppingListRepository) findOrCreate(db *gorm.DB, storeID uuid.UUID, lock bool) (*entities.ShoppingList, error) {
	find := func() (*entities.ShoppingList, error) {
		var list entities.ShoppingList
		query := db
		if lock {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.Where("store_id = ?", storeID).First(&list).Error; err != nil {
			return nil, err
		}
		return &list, nil
	}

	list, err := find()
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := entities.ShoppingList{
		ID:      uuid.New(),
		StoreID: storeID,
		Items:   datatypes.NewJSONSlice([]entities.ShoppingListItem{}),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return find()
}
