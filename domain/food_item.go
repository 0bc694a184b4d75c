package domain

type (
	// FoodItemSummary is the part of a catalog entry the shopping list needs.
	FoodItemSummary struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		PreferredUnit string `json:"preferredUnit,omitempty"`
	}
)
