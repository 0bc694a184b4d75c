package shoppinglist

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"Go-Shopping-Sync/pkg/broadcast"
	"Go-Shopping-Sync/pkg/deconfliction"
	"Go-Shopping-Sync/pkg/food"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryListRepository struct {
	mu     sync.Mutex
	lists  map[uuid.UUID][]entities.ShoppingListItem
	writes int
}

func newMemoryListRepository() *memoryListRepository {
	return &memoryListRepository{lists: make(map[uuid.UUID][]entities.ShoppingListItem)}
}

func (r *memoryListRepository) GetOrCreate(_ context.Context, storeID uuid.UUID) (*entities.ShoppingList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[storeID]; !ok {
		r.lists[storeID] = []entities.ShoppingListItem{}
	}
	return &entities.ShoppingList{StoreID: storeID, Items: append([]entities.ShoppingListItem{}, r.lists[storeID]...)}, nil
}

func (r *memoryListRepository) UpdateItems(_ context.Context, storeID uuid.UUID, fn UpdateFunc) ([]entities.ShoppingListItem, []entities.ShoppingListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := append([]entities.ShoppingListItem{}, r.lists[storeID]...)
	next, err := fn(append([]entities.ShoppingListItem{}, prev...))
	if err != nil {
		return nil, nil, err
	}
	r.lists[storeID] = next
	r.writes++
	return prev, next, nil
}

func (r *memoryListRepository) seed(storeID uuid.UUID, items ...domain.ListItem) {
	r.lists[storeID] = toEntityItems(items)
}

func (r *memoryListRepository) stored(storeID uuid.UUID) []domain.ListItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return toListItems(r.lists[storeID])
}

type stubAccess struct {
	store   *entities.Store
	allowed map[string]bool
}

func (a *stubAccess) CanAccess(ctx context.Context, storeID, principalID string) (bool, error) {
	_, err := a.Authorize(ctx, storeID, principalID)
	return err == nil, nil
}

func (a *stubAccess) Authorize(_ context.Context, storeID, principalID string) (*entities.Store, error) {
	if storeID != a.store.ID.String() {
		return nil, domain.ErrStoreNotFound
	}
	if !a.allowed[principalID] {
		return nil, domain.ErrAccessDenied
	}
	return a.store, nil
}

type published struct {
	storeID string
	exclude string
	event   broadcast.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(storeID, excludeViewer string, event broadcast.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{storeID: storeID, exclude: excludeViewer, event: event})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event.EventType())
	}
	return out
}

type stubRecipes struct {
	candidates []domain.CandidateRequest
}

func (r *stubRecipes) ResolveSources(context.Context, []domain.ListSource) ([]domain.CandidateRequest, error) {
	return r.candidates, nil
}

type stubFood struct {
	catalog food.Catalog
}

func (f *stubFood) GetCatalog(context.Context, []string) (food.Catalog, error) {
	if f.catalog == nil {
		return food.Catalog{}, nil
	}
	return f.catalog, nil
}

type fixture struct {
	svc       ShoppingListService
	repo      *memoryListRepository
	publisher *recordingPublisher
	recipes   *stubRecipes
	food      *stubFood
	storeID   uuid.UUID
	actor     domain.Actor
	outsider  domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &entities.Store{ID: uuid.New(), OwnerID: uuid.New()}
	f := &fixture{
		repo:      newMemoryListRepository(),
		publisher: &recordingPublisher{},
		recipes:   &stubRecipes{},
		food:      &stubFood{},
		storeID:   store.ID,
		actor: domain.Actor{
			Principal: domain.Principal{UserID: store.OwnerID.String(), Email: "ana@example.com", Name: "Ana"},
			ViewerID:  "ana-tab",
		},
		outsider: domain.Actor{Principal: domain.Principal{UserID: uuid.NewString(), Email: "eve@example.com"}},
	}
	access := &stubAccess{store: store, allowed: map[string]bool{store.OwnerID.String(): true}}
	svc := NewShoppingListService(f.repo, access, f.publisher, deconfliction.NewEngine(nil), f.recipes, f.food)
	svc.(*shoppingListService).now = func() time.Time { return time.UnixMilli(42) }
	f.svc = svc
	return f
}

func (f *fixture) id() string { return f.storeID.String() }

func TestGetListCreatesEmptyList(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.GetList(context.Background(), f.id(), f.actor.Principal)
	require.NoError(t, err)
	assert.Equal(t, f.id(), res.StoreID)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(f.storeID, domain.ListItem{FoodItemID: "food1", Quantity: 1, Unit: "each"})
	ctx := context.Background()

	item, err := f.svc.ToggleItem(ctx, f.id(), "food1", f.actor)
	require.NoError(t, err)
	assert.True(t, item.Checked)
	assert.True(t, f.repo.stored(f.storeID)[0].Checked)

	item, err = f.svc.ToggleItem(ctx, f.id(), "food1", f.actor)
	require.NoError(t, err)
	assert.False(t, item.Checked)
	assert.False(t, f.repo.stored(f.storeID)[0].Checked)

	require.Len(t, f.publisher.events, 2)
	first := f.publisher.events[0]
	assert.Equal(t, "ana-tab", first.exclude)
	assert.Equal(t, domain.ItemCheckedEvent{
		Type: domain.EventItemChecked, FoodItemID: "food1", Checked: true, UpdatedBy: "ana@example.com", Timestamp: 42,
	}, first.event)
}

func TestToggleMissingItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ToggleItem(context.Background(), f.id(), "ghost", f.actor)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Empty(t, f.publisher.events)
}

func TestReplaceBroadcastsRemovedItemsOnly(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(f.storeID,
		domain.ListItem{FoodItemID: "milk", Quantity: 1, Unit: "cup", Checked: true},
		domain.ListItem{FoodItemID: "bread", Quantity: 1, Unit: "each"},
		domain.ListItem{FoodItemID: "jam", Quantity: 1, Unit: "jar"},
	)

	res, err := f.svc.ReplaceList(context.Background(), f.id(), f.actor, []domain.ListItem{
		{FoodItemID: "milk", Quantity: 2, Unit: "cup"},
		{FoodItemID: "eggs", Quantity: 6, Unit: "each", Checked: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.ListItem{
		{FoodItemID: "milk", Quantity: 2, Unit: "cup", Checked: true},
		{FoodItemID: "eggs", Quantity: 6, Unit: "each"},
	}, res.Items)

	assert.Equal(t, []string{domain.EventItemDeleted, domain.EventItemDeleted, domain.EventListUpdated}, f.publisher.types())
	deleted := map[string]bool{}
	for _, e := range f.publisher.events[:2] {
		deleted[e.event.(domain.ItemDeletedEvent).FoodItemID] = true
	}
	assert.Equal(t, map[string]bool{"bread": true, "jam": true}, deleted)
	assert.Equal(t, res.Items, f.publisher.events[2].event.(domain.ListUpdatedEvent).Items)
}

func TestReplaceRejectsDuplicatesWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	original := domain.ListItem{FoodItemID: "food1", Quantity: 1, Unit: "each"}
	f.repo.seed(f.storeID, original)

	_, err := f.svc.ReplaceList(context.Background(), f.id(), f.actor, []domain.ListItem{
		{FoodItemID: "food1", Quantity: 1, Unit: "each"},
		{FoodItemID: "food1", Quantity: 2, Unit: "each"},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)
	assert.Equal(t, []domain.ListItem{original}, f.repo.stored(f.storeID))
	assert.Zero(t, f.repo.writes)
	assert.Empty(t, f.publisher.events)
}

func TestReplaceRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	for _, q := range []float64{0, -1} {
		_, err := f.svc.ReplaceList(context.Background(), f.id(), f.actor, []domain.ListItem{{FoodItemID: "x", Quantity: q}})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Zero(t, f.repo.writes)
}

func TestAccessDeniedFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(f.storeID, domain.ListItem{FoodItemID: "food1", Quantity: 1, Unit: "each"})
	ctx := context.Background()

	_, err := f.svc.GetList(ctx, f.id(), f.outsider.Principal)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = f.svc.ToggleItem(ctx, f.id(), "food1", f.outsider)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = f.svc.ReplaceList(ctx, f.id(), f.outsider, nil)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = f.svc.GenerateList(ctx, f.id(), f.outsider, domain.GenerateListRequest{})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = f.svc.GetList(ctx, uuid.NewString(), f.actor.Principal)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)

	assert.Zero(t, f.repo.writes)
	assert.Empty(t, f.publisher.events)
}

func TestManualEdits(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(f.storeID, domain.ListItem{FoodItemID: "milk", Name: "Milk", Quantity: 1, Unit: "cup", Checked: true})
	ctx := context.Background()

	res, err := f.svc.AddItem(ctx, f.id(), f.actor, domain.AddItemRequest{FoodItemID: "eggs", Name: "Eggs", Quantity: 6, Unit: "each"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	_, err = f.svc.AddItem(ctx, f.id(), f.actor, domain.AddItemRequest{FoodItemID: "eggs", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)

	res, err = f.svc.UpdateItem(ctx, f.id(), "milk", f.actor, domain.UpdateItemRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.ListItem{FoodItemID: "milk", Name: "Milk", Quantity: 3, Unit: "cup", Checked: true}, res.Items[0])

	_, err = f.svc.UpdateItem(ctx, f.id(), "milk", f.actor, domain.UpdateItemRequest{Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.svc.UpdateItem(ctx, f.id(), "ghost", f.actor, domain.UpdateItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	res, err = f.svc.ResolveConflict(ctx, f.id(), f.actor, domain.ResolveConflictRequest{FoodItemID: "eggs", Quantity: 1, Unit: "dozen"})
	require.NoError(t, err)
	assert.Equal(t, domain.ListItem{FoodItemID: "eggs", Name: "Eggs", Quantity: 1, Unit: "dozen"}, res.Items[1])

	f.publisher.events = nil
	res, err = f.svc.DeleteItem(ctx, f.id(), "milk", f.actor)
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs"}, ids(res.Items))
	assert.Equal(t, []string{domain.EventItemDeleted, domain.EventListUpdated}, f.publisher.types())

	_, err = f.svc.DeleteItem(ctx, f.id(), "milk", f.actor)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGenerateMergesWithExistingList(t *testing.T) {
	f := newFixture(t)
	f.repo.seed(f.storeID,
		domain.ListItem{FoodItemID: "flour", Name: "Flour", Quantity: 3, Unit: "cup", Checked: true},
		domain.ListItem{FoodItemID: "tomatoes", Name: "Tomatoes", Quantity: 2, Unit: "can", Checked: true},
		domain.ListItem{FoodItemID: "jam", Name: "Jam", Quantity: 1, Unit: "jar", Checked: true},
	)
	f.recipes.candidates = []domain.CandidateRequest{
		{FoodItemID: "flour", Quantity: 8, Unit: "tablespoon", SourceID: "recipe:bread"},
		{FoodItemID: "tomatoes", Quantity: 1, Unit: "pound", SourceID: "recipe:sauce"},
		{FoodItemID: "basil", Quantity: 1, Unit: "bunch", SourceID: "recipe:sauce"},
		{FoodItemID: "onion", Quantity: 1, Unit: "each", SourceID: "recipe:sauce"},
		{FoodItemID: "onion", Quantity: 1, Unit: "pound", SourceID: "recipe:soup"},
	}
	f.food.catalog = food.Catalog{"basil": {ID: "basil", Name: "Basil"}}

	res, err := f.svc.GenerateList(context.Background(), f.id(), f.actor, domain.GenerateListRequest{})
	require.NoError(t, err)

	assert.Equal(t, []domain.ListItem{
		// flour grew, so it is back on the to-buy list
		{FoodItemID: "flour", Name: "Flour", Quantity: 3.5, Unit: "cup"},
		{FoodItemID: "tomatoes", Name: "Tomatoes", Quantity: 2, Unit: "can", Checked: true},
		{FoodItemID: "jam", Name: "Jam", Quantity: 1, Unit: "jar", Checked: true},
		{FoodItemID: "basil", Name: "Basil", Quantity: 1, Unit: "bunch"},
	}, res.Items)
	assert.Equal(t, res.Items, f.repo.stored(f.storeID))

	require.Len(t, res.Conflicts, 2)
	assert.Equal(t, "tomatoes", res.Conflicts[0].FoodItemID)
	assert.Equal(t, domain.ConflictStateUnresolved, res.Conflicts[0].State)
	require.Len(t, res.Conflicts[0].Entries, 2)
	assert.Equal(t, domain.SourceIDList, res.Conflicts[0].Entries[0].SourceID)
	assert.True(t, res.Conflicts[0].Entries[1].Conflict)
	assert.Equal(t, "onion", res.Conflicts[1].FoodItemID)

	assert.Equal(t, []string{domain.EventListUpdated}, f.publisher.types())
}

func TestGenerateAcceptsTinyIngredients(t *testing.T) {
	f := newFixture(t)
	f.recipes.candidates = []domain.CandidateRequest{
		{FoodItemID: "saffron", Quantity: 0.0002, Unit: "teaspoon", SourceID: "recipe:paella"},
		{FoodItemID: "saffron", Quantity: 0.0002, Unit: "teaspoon", SourceID: "recipe:risotto"},
	}

	res, err := f.svc.GenerateList(context.Background(), f.id(), f.actor, domain.GenerateListRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Greater(t, res.Items[0].Quantity, 0.0)
}

func TestGenerateRejectsInvalidCandidate(t *testing.T) {
	f := newFixture(t)
	f.recipes.candidates = []domain.CandidateRequest{{FoodItemID: "salt", Quantity: 0, Unit: "pinch"}}

	_, err := f.svc.GenerateList(context.Background(), f.id(), f.actor, domain.GenerateListRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Zero(t, f.repo.writes)
}

func TestComputeDiff(t *testing.T) {
	l1 := []domain.ListItem{{FoodItemID: "a"}, {FoodItemID: "b"}, {FoodItemID: "c"}}
	l2 := []domain.ListItem{{FoodItemID: "c"}, {FoodItemID: "d"}}

	diff := ComputeDiff(l1, l2)
	assert.Equal(t, []string{"d"}, ids(diff.Added))
	assert.Equal(t, []string{"c"}, ids(diff.Remaining))
	assert.Equal(t, []string{"a", "b"}, ids(diff.Removed))
	assert.Equal(t, l2, diff.Items)

	empty := ComputeDiff(nil, nil)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Removed)
}

func ids(items []domain.ListItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.FoodItemID)
	}
	return out
}
