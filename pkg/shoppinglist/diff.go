package shoppinglist

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
)

// Diff compares two item sets by food item id. Items is the full new state.
type Diff struct {
	Added     []domain.ListItem
	Remaining []domain.ListItem
	Removed   []domain.ListItem
	Items     []domain.ListItem
}

func ComputeDiff(prev, next []domain.ListItem) Diff {
	before := make(map[string]struct{}, len(prev))
	for _, item := range prev {
		before[item.FoodItemID] = struct{}{}
	}
	after := make(map[string]struct{}, len(next))

	diff := Diff{
		Added:     []domain.ListItem{},
		Remaining: []domain.ListItem{},
		Removed:   []domain.ListItem{},
		Items:     next,
	}
	if diff.Items == nil {
		diff.Items = []domain.ListItem{}
	}
	for _, item := range next {
		after[item.FoodItemID] = struct{}{}
		if _, ok := before[item.FoodItemID]; ok {
			diff.Remaining = append(diff.Remaining, item)
		} else {
			diff.Added = append(diff.Added, item)
		}
	}
	for _, item := range prev {
		if _, ok := after[item.FoodItemID]; !ok {
			diff.Removed = append(diff.Removed, item)
		}
	}
	return diff
}

func toListItem(item entities.ShoppingListItem) domain.ListItem {
	return domain.ListItem{
		FoodItemID: item.FoodItemID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		Checked:    item.Checked,
	}
}

func toListItems(items []entities.ShoppingListItem) []domain.ListItem {
	out := make([]domain.ListItem, 0, len(items))
	for _, item := range items {
		out = append(out, toListItem(item))
	}
	return out
}

func toEntityItems(items []domain.ListItem) []entities.ShoppingListItem {
	out := make([]entities.ShoppingListItem, 0, len(items))
	for _, item := range items {
		out = append(out, entities.ShoppingListItem{
			FoodItemID: item.FoodItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			Checked:    item.Checked,
		})
	}
	return out
}
