package domain

var (
	MessageSuccessGetShoppingList   = "shopping list retrieved successfully"
	MessageSuccessReplaceList       = "shopping list replaced successfully"
	MessageSuccessToggleItem        = "item toggled successfully"
	MessageSuccessAddItem           = "item added successfully"
	MessageSuccessUpdateItem        = "item updated successfully"
	MessageSuccessDeleteItem        = "item deleted successfully"
	MessageSuccessResolveConflict   = "conflict resolved successfully"
	MessageSuccessGenerateList      = "shopping list generated successfully"
	MessageFailedGetShoppingList    = "failed to retrieve shopping list"
	MessageFailedReplaceList        = "failed to replace shopping list"
	MessageFailedToggleItem         = "failed to toggle item"
	MessageFailedAddItem            = "failed to add item"
	MessageFailedUpdateItem         = "failed to update item"
	MessageFailedDeleteItem         = "failed to delete item"
	MessageFailedResolveConflict    = "failed to resolve conflict"
	MessageFailedGenerateList       = "failed to generate shopping list"
	MessageFailedOpenLiveConnection = "failed to open live connection"
)

const (
	SourceKindFoodItem = "food_item"
	SourceKindRecipe   = "recipe"

	// SourceIDList tags candidates that come from lines already on the list.
	SourceIDList = "list"

	ConflictStateMerged     = "merged"
	ConflictStateUnresolved = "unresolved"
)

type (
	ListItem struct {
		FoodItemID string  `json:"foodItemId" validate:"required"`
		Name       string  `json:"name,omitempty"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
		Checked    bool    `json:"checked"`
	}

	ShoppingListResponse struct {
		StoreID string     `json:"storeId"`
		Items   []ListItem `json:"items"`
	}

	ReplaceListRequest struct {
		Items []ListItem `json:"items" validate:"dive"`
	}

	AddItemRequest struct {
		FoodItemID string  `json:"foodItemId" validate:"required"`
		Name       string  `json:"name"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
	}

	UpdateItemRequest struct {
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}

	ResolveConflictRequest struct {
		FoodItemID string  `json:"foodItemId" validate:"required"`
		Name       string  `json:"name"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
	}

	// CandidateRequest is one ingredient request destined for a list.
	CandidateRequest struct {
		FoodItemID string  `json:"foodItemId"`
		Name       string  `json:"name,omitempty"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
		SourceID   string  `json:"sourceId"`
	}

	// ListSource is the tagged variant the meal-plan collaborator sends:
	// either a single food item or a whole recipe.
	ListSource struct {
		Kind       string  `json:"kind" validate:"required,oneof=food_item recipe"`
		FoodItemID string  `json:"foodItemId" validate:"required_if=Kind food_item"`
		Name       string  `json:"name"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
		RecipeID   string  `json:"recipeId" validate:"required_if=Kind recipe"`
		Servings   int     `json:"servings" validate:"omitempty,min=1"`
	}

	GenerateListRequest struct {
		Sources []ListSource `json:"sources" validate:"required,min=1,dive"`
	}

	ConflictEntry struct {
		FoodItemID string  `json:"foodItemId"`
		Name       string  `json:"name,omitempty"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
		SourceID   string  `json:"sourceId"`
		Conflict   bool    `json:"conflict"`
	}

	ConflictGroupResponse struct {
		FoodItemID string          `json:"foodItemId"`
		State      string          `json:"state"`
		Entries    []ConflictEntry `json:"entries"`
	}

	GenerateListResponse struct {
		Items     []ListItem              `json:"items"`
		Conflicts []ConflictGroupResponse `json:"conflicts"`
	}
)
