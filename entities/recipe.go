package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RecipeIngredient struct {
	FoodItemID string  `json:"food_item_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

type Recipe struct {
	ID          uuid.UUID                             `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Title       string                                `json:"title"`
	Servings    int                                   `json:"servings"`
	Ingredients datatypes.JSONSlice[RecipeIngredient] `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`

	Timestamp
}
