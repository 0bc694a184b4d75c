package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ShoppingListItem struct {
	FoodItemID string  `json:"food_item_id"`
	Name       string  `json:"name,omitempty"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Checked    bool    `json:"checked"`
}

// ShoppingList is stored as one document per store: the whole ordered item
// set lives in a single JSONB column and is swapped as a unit.
type ShoppingList struct {
	ID      uuid.UUID                             `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	StoreID uuid.UUID                             `gorm:"type:uuid;uniqueIndex;not null" json:"store_id"`
	Items   datatypes.JSONSlice[ShoppingListItem] `gorm:"type:jsonb;not null;default:'[]'" json:"items"`
	Version int64                                 `gorm:"not null;default:0" json:"version"`

	Store *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Timestamp
}
