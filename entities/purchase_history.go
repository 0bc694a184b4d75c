package entities

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseHistory keeps the most recent purchase of a food item per store.
type PurchaseHistory struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	StoreID         uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_purchase_history_store_food;not null" json:"store_id"`
	FoodItemID      string    `gorm:"uniqueIndex:idx_purchase_history_store_food;not null" json:"food_item_id"`
	Name            string    `json:"name"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit"`
	LastPurchasedAt time.Time `gorm:"index;not null" json:"last_purchased_at"`

	Store *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Timestamp
}
