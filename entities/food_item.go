package entities

import (
	"github.com/google/uuid"
)

// FoodItem is a catalog entry. PreferredUnit, when set, is the unit merged
// shopping lines are displayed in.
type FoodItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Category      string    `json:"category,omitempty"`
	PreferredUnit string    `json:"preferred_unit,omitempty"`

	Timestamp
}
