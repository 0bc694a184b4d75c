package handlers

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"Go-Shopping-Sync/pkg/broadcast"
	"Go-Shopping-Sync/pkg/history"
	"Go-Shopping-Sync/pkg/shoppinglist"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var caller = domain.Principal{UserID: "u-ana", Email: "ana@example.com"}

type fakeLists struct {
	shoppinglist.ShoppingListService
	actor  domain.Actor
	err    error
	toggle domain.ListItem
}

func (f *fakeLists) GetList(_ context.Context, storeID string, _ domain.Principal) (domain.ShoppingListResponse, error) {
	return domain.ShoppingListResponse{StoreID: storeID, Items: []domain.ListItem{}}, f.err
}

func (f *fakeLists) ToggleItem(_ context.Context, _, foodItemID string, actor domain.Actor) (domain.ListItem, error) {
	f.actor = actor
	if f.err != nil {
		return domain.ListItem{}, f.err
	}
	return domain.ListItem{FoodItemID: foodItemID, Checked: true}, nil
}

func (f *fakeLists) ReplaceList(_ context.Context, storeID string, actor domain.Actor, items []domain.ListItem) (domain.ShoppingListResponse, error) {
	f.actor = actor
	return domain.ShoppingListResponse{StoreID: storeID, Items: items}, f.err
}

type fakeHistory struct {
	history.PurchaseHistoryService
	page, limit int
	err         error
}

func (f *fakeHistory) FinishShop(_ context.Context, _ string, _ domain.Actor, _ domain.FinishShopRequest) (domain.FinishShopResponse, error) {
	if f.err != nil {
		return domain.FinishShopResponse{}, f.err
	}
	return domain.FinishShopResponse{Success: true, RemainingItems: []domain.ListItem{{FoodItemID: "eggs", Quantity: 12, Unit: "each"}}}, nil
}

func (f *fakeHistory) GetHistory(_ context.Context, _ string, _ domain.Principal, page, limit int) ([]domain.PurchaseHistoryResponse, int64, error) {
	f.page, f.limit = page, limit
	return []domain.PurchaseHistoryResponse{{FoodItemID: "milk"}}, 45, f.err
}

type denyAll struct{}

func (denyAll) CanAccess(context.Context, string, string) (bool, error) { return false, nil }

func (denyAll) Authorize(context.Context, string, string) (*entities.Store, error) {
	return nil, domain.ErrAccessDenied
}

func newTestApp(lists shoppinglist.ShoppingListService, hist history.PurchaseHistoryService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(domain.PrincipalLocalsKey, caller)
		return c.Next()
	})

	v := validator.New()
	lh := NewShoppingListHandler(lists, v)
	hh := NewPurchaseHistoryHandler(hist, v)
	live := NewLiveHandler(denyAll{}, broadcast.NewHub(broadcast.Config{}))

	store := app.Group("/stores/:id")
	store.Get("/list", lh.GetList)
	store.Put("/list", lh.ReplaceList)
	store.Post("/list/items/:foodItemId/toggle", lh.ToggleItem)
	store.Post("/list/finish", hh.FinishShop)
	store.Get("/history", hh.GetHistory)
	store.Get("/live", live.Upgrade, live.Stream())
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(domain.ViewerIDHeader, "tab-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestToggleItemPassesActor(t *testing.T) {
	lists := &fakeLists{}
	app := newTestApp(lists, &fakeHistory{})

	code, body := do(t, app, fiber.MethodPost, "/stores/s1/list/items/milk/toggle", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["data"].(map[string]any)["checked"])
	assert.Equal(t, domain.Actor{Principal: caller, ViewerID: "tab-1"}, lists.actor)
}

func TestErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrAccessDenied, fiber.StatusForbidden},
		{domain.ErrStoreNotFound, fiber.StatusNotFound},
		{fmt.Errorf("milk: %w", domain.ErrItemNotFound), fiber.StatusNotFound},
		{domain.ErrDuplicateItem, fiber.StatusConflict},
		{domain.ErrInvalidQuantity, fiber.StatusBadRequest},
		{errors.New("db down"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := newTestApp(&fakeLists{err: tc.err}, &fakeHistory{})
		code, body := do(t, app, fiber.MethodPost, "/stores/s1/list/items/milk/toggle", "")
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, false, body["status"])
	}
}

func TestReplaceListRejectsMissingFoodItem(t *testing.T) {
	app := newTestApp(&fakeLists{}, &fakeHistory{})

	code, _ := do(t, app, fiber.MethodPut, "/stores/s1/list", `{"items":[{"quantity":1,"unit":"cup"}]}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, body := do(t, app, fiber.MethodPut, "/stores/s1/list", `{"items":[{"foodItemId":"milk","quantity":1,"unit":"cup"}]}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Len(t, body["data"].(map[string]any)["items"], 1)
}

func TestFinishShopReturnsBareBody(t *testing.T) {
	app := newTestApp(&fakeLists{}, &fakeHistory{})

	code, body := do(t, app, fiber.MethodPost, "/stores/s1/list/finish",
		`{"checkedItems":[{"foodItemId":"milk","name":"Milk","quantity":1,"unit":"gallon"}]}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["remainingItems"], 1)

	code, _ = do(t, app, fiber.MethodPost, "/stores/s1/list/finish", `{"checkedItems":[]}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, fiber.MethodPost, "/stores/s1/list/finish",
		`{"checkedItems":[{"foodItemId":"milk","quantity":-1}]}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetHistoryPagination(t *testing.T) {
	hist := &fakeHistory{}
	app := newTestApp(&fakeLists{}, hist)

	code, body := do(t, app, fiber.MethodGet, "/stores/s1/history?page=2&limit=20", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 2, hist.page)
	pagination := body["data"].(map[string]any)["pagination"].(map[string]any)
	assert.Equal(t, 3.0, pagination["total_pages"])

	_, _ = do(t, app, fiber.MethodGet, "/stores/s1/history?page=zero&limit=-4", "")
	assert.Equal(t, 1, hist.page)
	assert.Equal(t, 20, hist.limit)
}

func TestLiveRequiresUpgradeAndAccess(t *testing.T) {
	app := newTestApp(&fakeLists{}, &fakeHistory{})
	storeID := uuid.NewString()

	code, _ := do(t, app, fiber.MethodGet, "/stores/"+storeID+"/live", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, code)

	req := httptest.NewRequest(fiber.MethodGet, "/stores/"+storeID+"/live", nil)
	req.Header.Set(fiber.HeaderConnection, "Upgrade")
	req.Header.Set(fiber.HeaderUpgrade, "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
