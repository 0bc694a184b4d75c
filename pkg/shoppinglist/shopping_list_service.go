package shoppinglist

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"Go-Shopping-Sync/pkg/access"
	"Go-Shopping-Sync/pkg/broadcast"
	"Go-Shopping-Sync/pkg/deconfliction"
	"Go-Shopping-Sync/pkg/food"
	"Go-Shopping-Sync/pkg/recipe"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// MutateFunc rewrites the current items of a list.
	MutateFunc func(current []domain.ListItem) ([]domain.ListItem, error)

	ShoppingListService interface {
		GetList(ctx context.Context, storeID string, principal domain.Principal) (domain.ShoppingListResponse, error)
		ReplaceList(ctx context.Context, storeID string, actor domain.Actor, items []domain.ListItem) (domain.ShoppingListResponse, error)
		ToggleItem(ctx context.Context, storeID, foodItemID string, actor domain.Actor) (domain.ListItem, error)
		AddItem(ctx context.Context, storeID string, actor domain.Actor, req domain.AddItemRequest) (domain.ShoppingListResponse, error)
		UpdateItem(ctx context.Context, storeID, foodItemID string, actor domain.Actor, req domain.UpdateItemRequest) (domain.ShoppingListResponse, error)
		DeleteItem(ctx context.Context, storeID, foodItemID string, actor domain.Actor) (domain.ShoppingListResponse, error)
		ResolveConflict(ctx context.Context, storeID string, actor domain.Actor, req domain.ResolveConflictRequest) (domain.ShoppingListResponse, error)
		GenerateList(ctx context.Context, storeID string, actor domain.Actor, req domain.GenerateListRequest) (domain.GenerateListResponse, error)

		// Mutate validates and stores the result of fn, then broadcasts the
		// diff. The caller must already have authorized the actor.
		Mutate(ctx context.Context, storeID uuid.UUID, actor domain.Actor, fn MutateFunc) (Diff, error)
	}

	shoppingListService struct {
		shoppingListRepository ShoppingListRepository
		accessService          access.AccessService
		publisher              broadcast.Publisher
		engine                 deconfliction.Engine
		recipeService          recipe.RecipeService
		foodService            food.FoodService
		now                    func() time.Time
	}
)

func NewShoppingListService(
	shoppingListRepository ShoppingListRepository,
	accessService access.AccessService,
	publisher broadcast.Publisher,
	engine deconfliction.Engine,
	recipeService recipe.RecipeService,
	foodService food.FoodService,
) ShoppingListService {
	return &shoppingListService{
		shoppingListRepository: shoppingListRepository,
		accessService:          accessService,
		publisher:              publisher,
		engine:                 engine,
		recipeService:          recipeService,
		foodService:            foodService,
		now:                    time.Now,
	}
}

func (s *shoppingListService) authorize(ctx context.Context, storeID string, principal domain.Principal) (uuid.UUID, error) {
	store, err := s.accessService.Authorize(ctx, storeID, principal.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	return store.ID, nil
}

func (s *shoppingListService) GetList(ctx context.Context, storeID string, principal domain.Principal) (domain.ShoppingListResponse, error) {
	id, err := s.authorize(ctx, storeID, principal)
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}

	list, err := s.shoppingListRepository.GetOrCreate(ctx, id)
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}
	return domain.ShoppingListResponse{StoreID: id.String(), Items: toListItems(list.Items)}, nil
}

func (s *shoppingListService) ReplaceList(ctx context.Context, storeID string, actor domain.Actor, items []domain.ListItem) (domain.ShoppingListResponse, error) {
	id, err := s.authorize(ctx, storeID, actor.Principal)
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}
	// fail before touching storage
	if err := validateItems(items); err != nil {
		return domain.ShoppingListResponse{}, err
	}

	diff, err := s.Mutate(ctx, id, actor, func([]domain.ListItem) ([]domain.ListItem, error) {
		return items, nil
	})
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}
	return domain.ShoppingListResponse{StoreID: id.String(), Items: diff.Items}, nil
}

func (s *shoppingListService) ToggleItem(ctx context.Context, storeID, foodItemID string, actor domain.Actor) (domain.ListItem, error) {
	id, err := s.authorize(ctx, storeID, actor.Principal)
	if err != nil {
		return domain.ListItem{}, err
	}

	var toggled domain.ListItem
	_, _, err = s.shoppingListRepository.UpdateItems(ctx, id, func(current []entities.ShoppingListItem) ([]entities.ShoppingListItem, error) {
		for i := range current {
			if current[i].FoodItemID == foodItemID {
				current[i].Checked = !current[i].Checked
				toggled = toListItem(current[i])
				return current, nil
			}
		}
		return nil, fmt.Errorf("toggle %s: %w", foodItemID, domain.ErrItemNotFound)
	})
	if err != nil {
		return domain.ListItem{}, err
	}

	s.publisher.Publish(id.String(), actor.ViewerID, broadcast.ItemChecked(toggled.FoodItemID, toggled.Checked, actor.UpdatedBy(), s.now()))
	return toggled, nil
}

func (s *shoppingListService) AddItem(ctx context.Context, storeID string, actor domain.Actor, req domain.AddItemRequest) (domain.ShoppingListResponse, error) {
	return s.authorizedMutate(ctx, storeID, actor, func(current []domain.ListItem) ([]domain.ListItem, error) {
		if indexOf(current, req.FoodItemID) >= 0 {
			return nil, fmt.Errorf("add %s: %w", req.FoodItemID, domain.ErrDuplicateItem)
		}
		return append(current, domain.ListItem{
			FoodItemID: req.FoodItemID,
			Name:       req.Name,
			Quantity:   req.Quantity,
			Unit:       req.Unit,
		}), nil
	})
}

func (s *shoppingListService) UpdateItem(ctx context.Context, storeID, foodItemID string, actor domain.Actor, req domain.UpdateItemRequest) (domain.ShoppingListResponse, error) {
	return s.authorizedMutate(ctx, storeID, actor, func(current []domain.ListItem) ([]domain.ListItem, error) {
		i := indexOf(current, foodItemID)
		if i < 0 {
			return nil, fmt.Errorf("update %s: %w", foodItemID, domain.ErrItemNotFound)
		}
		current[i].Quantity = req.Quantity
		if req.Unit != "" {
			current[i].Unit = req.Unit
		}
		return current, nil
	})
}

func (s *shoppingListService) DeleteItem(ctx context.Context, storeID, foodItemID string, actor domain.Actor) (domain.ShoppingListResponse, error) {
	return s.authorizedMutate(ctx, storeID, actor, func(current []domain.ListItem) ([]domain.ListItem, error) {
		i := indexOf(current, foodItemID)
		if i < 0 {
			return nil, fmt.Errorf("delete %s: %w", foodItemID, domain.ErrItemNotFound)
		}
		return append(current[:i], current[i+1:]...), nil
	})
}

func (s *shoppingListService) ResolveConflict(ctx context.Context, storeID string, actor domain.Actor, req domain.ResolveConflictRequest) (domain.ShoppingListResponse, error) {
	return s.authorizedMutate(ctx, storeID, actor, func(current []domain.ListItem) ([]domain.ListItem, error) {
		chosen := domain.ListItem{FoodItemID: req.FoodItemID, Name: req.Name, Quantity: req.Quantity, Unit: req.Unit}
		if i := indexOf(current, req.FoodItemID); i >= 0 {
			if chosen.Name == "" {
				chosen.Name = current[i].Name
			}
			current[i] = chosen
			return current, nil
		}
		return append(current, chosen), nil
	})
}

func (s *shoppingListService) authorizedMutate(ctx context.Context, storeID string, actor domain.Actor, fn MutateFunc) (domain.ShoppingListResponse, error) {
	id, err := s.authorize(ctx, storeID, actor.Principal)
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}
	diff, err := s.Mutate(ctx, id, actor, fn)
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}
	return domain.ShoppingListResponse{StoreID: id.String(), Items: diff.Items}, nil
}

func (s *shoppingListService) Mutate(ctx context.Context, storeID uuid.UUID, actor domain.Actor, fn MutateFunc) (Diff, error) {
	return s.mutate(ctx, storeID, actor, fn, false)
}

func (s *shoppingListService) mutate(ctx context.Context, storeID uuid.UUID, actor domain.Actor, fn MutateFunc, resetChanged bool) (Diff, error) {
	prev, next, err := s.shoppingListRepository.UpdateItems(ctx, storeID, func(current []entities.ShoppingListItem) ([]entities.ShoppingListItem, error) {
		items, err := fn(toListItems(current))
		if err != nil {
			return nil, err
		}
		if err := validateItems(items); err != nil {
			return nil, err
		}
		return toEntityItems(carryChecked(toListItems(current), items, resetChanged)), nil
	})
	if err != nil {
		return Diff{}, err
	}

	diff := ComputeDiff(toListItems(prev), toListItems(next))
	s.announce(storeID.String(), actor, diff)
	return diff, nil
}

// announce runs after the write has committed; delivery problems are the
// broadcaster's to log and never reach the caller.
func (s *shoppingListService) announce(storeID string, actor domain.Actor, diff Diff) {
	at := s.now()
	for _, removed := range diff.Removed {
		s.publisher.Publish(storeID, actor.ViewerID, broadcast.ItemDeleted(removed.FoodItemID, actor.UpdatedBy(), at))
	}
	s.publisher.Publish(storeID, actor.ViewerID, broadcast.ListUpdated(diff.Items, actor.UpdatedBy(), at))
}

func (s *shoppingListService) GenerateList(ctx context.Context, storeID string, actor domain.Actor, req domain.GenerateListRequest) (domain.GenerateListResponse, error) {
	id, err := s.authorize(ctx, storeID, actor.Principal)
	if err != nil {
		return domain.GenerateListResponse{}, err
	}

	candidates, err := s.recipeService.ResolveSources(ctx, req.Sources)
	if err != nil {
		return domain.GenerateListResponse{}, err
	}

	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.FoodItemID)
	}
	catalog, err := s.foodService.GetCatalog(ctx, ids)
	if err != nil {
		return domain.GenerateListResponse{}, err
	}

	// generation unchecks every line whose quantity or unit it changes
	var conflicts []deconfliction.ConflictGroup
	diff, err := s.mutate(ctx, id, actor, func(current []domain.ListItem) ([]domain.ListItem, error) {
		requests := make([]domain.CandidateRequest, 0, len(current)+len(candidates))
		for _, item := range current {
			requests = append(requests, domain.CandidateRequest{
				FoodItemID: item.FoodItemID,
				Name:       item.Name,
				Quantity:   item.Quantity,
				Unit:       item.Unit,
				SourceID:   domain.SourceIDList,
			})
		}
		requests = append(requests, candidates...)

		result, err := s.engine.Deconflict(requests, catalog.PreferredUnits())
		if err != nil {
			return nil, err
		}

		conflicts = conflicts[:0]
		next := make([]domain.ListItem, 0, len(result.Groups))
		for _, group := range result.Groups {
			if group.State == deconfliction.StateMerged {
				line := *group.Merged
				if line.Name == "" {
					line.Name = catalog.Name(line.FoodItemID)
				}
				next = append(next, line)
				continue
			}
			conflicts = append(conflicts, group)
			// an unresolved group leaves the existing line as it was
			if i := indexOf(current, group.FoodItemID); i >= 0 {
				next = append(next, current[i])
			}
		}
		return next, nil
	}, true)
	if err != nil {
		return domain.GenerateListResponse{}, err
	}

	res := domain.GenerateListResponse{
		Items:     diff.Items,
		Conflicts: make([]domain.ConflictGroupResponse, 0, len(conflicts)),
	}
	for _, group := range conflicts {
		res.Conflicts = append(res.Conflicts, group.Response())
	}
	return res, nil
}

func validateItems(items []domain.ListItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.FoodItemID) == "" {
			return domain.ErrInvalidFoodItem
		}
		if item.Quantity <= 0 || math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) {
			return fmt.Errorf("%s: %w", item.FoodItemID, domain.ErrInvalidQuantity)
		}
		if _, dup := seen[item.FoodItemID]; dup {
			return fmt.Errorf("%s: %w", item.FoodItemID, domain.ErrDuplicateItem)
		}
		seen[item.FoodItemID] = struct{}{}
	}
	return nil
}

// carryChecked keeps the stored checked flag of lines that survive a write
// and clears it on lines that are new. With resetChanged set, lines whose
// quantity or unit changed are cleared as well.
func carryChecked(prev, next []domain.ListItem, resetChanged bool) []domain.ListItem {
	stored := make(map[string]domain.ListItem, len(prev))
	for _, item := range prev {
		stored[item.FoodItemID] = item
	}
	out := make([]domain.ListItem, len(next))
	for i, item := range next {
		old, ok := stored[item.FoodItemID]
		item.Checked = ok && old.Checked
		if resetChanged && (old.Quantity != item.Quantity || old.Unit != item.Unit) {
			item.Checked = false
		}
		out[i] = item
	}
	return out
}

func indexOf(items []domain.ListItem, foodItemID string) int {
	for i, item := range items {
		if item.FoodItemID == foodItemID {
			return i
		}
	}
	return -1
}
