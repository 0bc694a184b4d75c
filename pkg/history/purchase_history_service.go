package history

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"Go-Shopping-Sync/internal/utils/mailing"
	"Go-Shopping-Sync/internal/utils/storage"
	"Go-Shopping-Sync/pkg/access"
	"Go-Shopping-Sync/pkg/shoppinglist"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const tripArtifactTimeout = 30 * time.Second

type (
	PurchaseHistoryService interface {
		// FinishShop archives the purchased items, prunes them from the list
		// and returns what is left to buy.
		FinishShop(ctx context.Context, storeID string, actor domain.Actor, req domain.FinishShopRequest) (domain.FinishShopResponse, error)
		GetHistory(ctx context.Context, storeID string, principal domain.Principal, page, limit int) ([]domain.PurchaseHistoryResponse, int64, error)
	}

	purchaseHistoryService struct {
		purchaseHistoryRepository PurchaseHistoryRepository
		accessService             access.AccessService
		shoppingListService       shoppinglist.ShoppingListService
		s3                        storage.AwsS3
		mailer                    mailing.Mailer
		now                       func() time.Time
		async                     func(func())
	}
)

func NewPurchaseHistoryService(
	purchaseHistoryRepository PurchaseHistoryRepository,
	accessService access.AccessService,
	shoppingListService shoppinglist.ShoppingListService,
	s3 storage.AwsS3,
	mailer mailing.Mailer,
) PurchaseHistoryService {
	return &purchaseHistoryService{
		purchaseHistoryRepository: purchaseHistoryRepository,
		accessService:             accessService,
		shoppingListService:       shoppingListService,
		s3:                        s3,
		mailer:                    mailer,
		now:                       time.Now,
		async:                     func(fn func()) { go fn() },
	}
}

func (s *purchaseHistoryService) FinishShop(ctx context.Context, storeID string, actor domain.Actor, req domain.FinishShopRequest) (domain.FinishShopResponse, error) {
	store, err := s.accessService.Authorize(ctx, storeID, actor.Principal.UserID)
	if err != nil {
		return domain.FinishShopResponse{}, err
	}

	purchased, err := normalizePurchases(req.CheckedItems)
	if err != nil {
		return domain.FinishShopResponse{}, err
	}

	now := s.now()
	records := make([]entities.PurchaseHistory, 0, len(purchased))
	bought := make(map[string]struct{}, len(purchased))
	for _, item := range purchased {
		records = append(records, entities.PurchaseHistory{
			ID:              uuid.New(),
			StoreID:         store.ID,
			FoodItemID:      item.FoodItemID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			LastPurchasedAt: now,
		})
		bought[item.FoodItemID] = struct{}{}
	}

	if err := s.purchaseHistoryRepository.UpsertPurchases(ctx, records); err != nil {
		return domain.FinishShopResponse{}, fmt.Errorf("archive purchases: %w", err)
	}

	diff, err := s.shoppingListService.Mutate(ctx, store.ID, actor, func(current []domain.ListItem) ([]domain.ListItem, error) {
		remaining := make([]domain.ListItem, 0, len(current))
		for _, item := range current {
			if _, ok := bought[item.FoodItemID]; !ok {
				remaining = append(remaining, item)
			}
		}
		return remaining, nil
	})
	if err != nil {
		// history rows for items still on the list are harmless: the next
		// finish-shop overwrites them
		log.Errorw("partial archive failure: history saved, list not pruned",
			"store_id", store.ID, "items", len(records), "error", err)
		return domain.FinishShopResponse{}, fmt.Errorf("prune shopping list: %w", err)
	}

	receipt := domain.TripReceipt{
		TripID:     uuid.NewString(),
		StoreID:    store.ID.String(),
		StoreName:  store.Name,
		FinishedBy: actor.UpdatedBy(),
		FinishedAt: now,
		Purchased:  purchased,
		Remaining:  diff.Items,
	}
	receipt.ReceiptPath = fmt.Sprintf("receipts/%s/%s.json", receipt.StoreID, receipt.TripID)
	ownerEmail := store.OwnerEmail
	s.async(func() { s.storeTripArtifacts(receipt, ownerEmail) })

	return domain.FinishShopResponse{Success: true, RemainingItems: diff.Items}, nil
}

// storeTripArtifacts writes the receipt and mails the owner. Failures only
// get logged.
func (s *purchaseHistoryService) storeTripArtifacts(receipt domain.TripReceipt, ownerEmail string) {
	ctx, cancel := context.WithTimeout(context.Background(), tripArtifactTimeout)
	defer cancel()

	if s.s3 != nil && s.s3.Enabled() {
		body, err := json.Marshal(receipt)
		if err == nil {
			err = s.s3.PutJSON(ctx, receipt.ReceiptPath, body)
		}
		if err != nil {
			log.Warnw("failed to store trip receipt", "store_id", receipt.StoreID, "trip_id", receipt.TripID, "error", err)
		}
	}

	if s.mailer == nil || ownerEmail == "" {
		return
	}
	body, err := mailing.TripSummaryBody(receipt)
	if err == nil {
		err = s.mailer.SendMail(ownerEmail, mailing.TripSummarySubject(receipt), body)
	}
	if err != nil && !errors.Is(err, mailing.ErrMailDisabled) {
		log.Warnw("failed to mail trip summary", "store_id", receipt.StoreID, "trip_id", receipt.TripID, "error", err)
	}
}

func (s *purchaseHistoryService) GetHistory(ctx context.Context, storeID string, principal domain.Principal, page, limit int) ([]domain.PurchaseHistoryResponse, int64, error) {
	store, err := s.accessService.Authorize(ctx, storeID, principal.UserID)
	if err != nil {
		return nil, 0, err
	}

	records, count, err := s.purchaseHistoryRepository.GetHistory(ctx, store.ID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("get purchase history: %w", err)
	}

	res := make([]domain.PurchaseHistoryResponse, 0, len(records))
	for _, record := range records {
		res = append(res, domain.PurchaseHistoryResponse{
			FoodItemID:      record.FoodItemID,
			Name:            record.Name,
			Quantity:        record.Quantity,
			Unit:            record.Unit,
			LastPurchasedAt: record.LastPurchasedAt,
		})
	}
	return res, count, nil
}

// normalizePurchases validates the purchase set and collapses repeats of a
// food item to the last one, since one upsert statement cannot touch the
// same row twice.
func normalizePurchases(items []domain.PurchasedItem) ([]domain.PurchasedItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyPurchase
	}

	position := make(map[string]int, len(items))
	out := make([]domain.PurchasedItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.FoodItemID) == "" {
			return nil, domain.ErrInvalidFoodItem
		}
		if item.Quantity <= 0 || math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) {
			return nil, fmt.Errorf("%s: %w", item.FoodItemID, domain.ErrInvalidQuantity)
		}
		if i, ok := position[item.FoodItemID]; ok {
			out[i] = item
			continue
		}
		position[item.FoodItemID] = len(out)
		out = append(out, item)
	}
	return out, nil
}
