package food

import (
	"Go-Shopping-Sync/entities"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	FoodRepository interface {
		GetFoodItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.FoodItem, error)
	}

	foodRepository struct {
		db *gorm.DB
	}
)

func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) GetFoodItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.FoodItem, error) {
	var foodItems []*entities.FoodItem
	if len(ids) == 0 {
		return foodItems, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&foodItems).Error; err != nil {
		return nil, err
	}
	return foodItems, nil
}
