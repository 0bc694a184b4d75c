package domain

import "time"

var (
	MessageSuccessFinishShop = "shopping trip finished successfully"
	MessageSuccessGetHistory = "purchase history retrieved successfully"
	MessageFailedFinishShop  = "failed to finish shopping trip"
	MessageFailedGetHistory  = "failed to retrieve purchase history"
)

type (
	PurchasedItem struct {
		FoodItemID string  `json:"foodItemId" validate:"required"`
		Name       string  `json:"name"`
		Quantity   float64 `json:"quantity" validate:"gt=0"`
		Unit       string  `json:"unit"`
	}

	FinishShopRequest struct {
		CheckedItems []PurchasedItem `json:"checkedItems" validate:"required,min=1,dive"`
	}

	FinishShopResponse struct {
		Success        bool       `json:"success"`
		RemainingItems []ListItem `json:"remainingItems"`
	}

	PurchaseHistoryResponse struct {
		FoodItemID      string    `json:"foodItemId"`
		Name            string    `json:"name"`
		Quantity        float64   `json:"quantity"`
		Unit            string    `json:"unit"`
		LastPurchasedAt time.Time `json:"lastPurchasedAt"`
	}

	// TripReceipt is the archived record of one finished shopping trip.
	TripReceipt struct {
		TripID      string          `json:"tripId"`
		StoreID     string          `json:"storeId"`
		StoreName   string          `json:"storeName"`
		FinishedBy  string          `json:"finishedBy"`
		FinishedAt  time.Time       `json:"finishedAt"`
		Purchased   []PurchasedItem `json:"purchased"`
		Remaining   []ListItem      `json:"remaining"`
		ReceiptPath string          `json:"-"`
	}
)
