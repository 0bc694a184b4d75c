package history

import (
	"Go-Shopping-Sync/entities"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	PurchaseHistoryRepository interface {
		// UpsertPurchases keeps one row per (store, food item), overwritten
		// by the latest purchase.
		UpsertPurchases(ctx context.Context, records []entities.PurchaseHistory) error
		GetHistory(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*entities.PurchaseHistory, int64, error)
	}

	purchaseHistoryRepository struct {
		db *gorm.DB
	}
)

func NewPurchaseHistoryRepository(db *gorm.DB) PurchaseHistoryRepository {
	return &purchaseHistoryRepository{db: db}
}

func (r *purchaseHistoryRepository) UpsertPurchases(ctx context.Context, records []entities.PurchaseHistory) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "food_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "quantity", "unit", "last_purchased_at", "updated_at"}),
	}).Create(&records).Error
}

func (r *purchaseHistoryRepository) GetHistory(ctx context.Context, storeID uuid.UUID, page, limit int) ([]*entities.PurchaseHistory, int64, error) {
	var records []*entities.PurchaseHistory
	var count int64

	offset := (page - 1) * limit
	query := r.db.WithContext(ctx).Model(&entities.PurchaseHistory{}).Where("store_id = ?", storeID).Session(&gorm.Session{})

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("last_purchased_at desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, count, nil
}
