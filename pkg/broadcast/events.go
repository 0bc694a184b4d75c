package broadcast

import (
	"Go-Shopping-Sync/domain"
	"time"
)

// Event is any wire message a viewer can receive.
type Event interface {
	EventType() string
}

// Publisher fans an event out to the viewers of one store. excludeViewer,
// when non-empty, names a viewer that must not receive it.
type Publisher interface {
	Publish(storeID, excludeViewer string, event Event)
}

func timestamp(at time.Time) int64 {
	return at.UnixMilli()
}

func Presence(users []domain.ActiveUser, at time.Time) domain.PresenceEvent {
	if users == nil {
		users = []domain.ActiveUser{}
	}
	return domain.PresenceEvent{Type: domain.EventPresence, ActiveUsers: users, Timestamp: timestamp(at)}
}

func ItemChecked(foodItemID string, checked bool, updatedBy string, at time.Time) domain.ItemCheckedEvent {
	return domain.ItemCheckedEvent{
		Type:       domain.EventItemChecked,
		FoodItemID: foodItemID,
		Checked:    checked,
		UpdatedBy:  updatedBy,
		Timestamp:  timestamp(at),
	}
}

func ListUpdated(items []domain.ListItem, updatedBy string, at time.Time) domain.ListUpdatedEvent {
	if items == nil {
		items = []domain.ListItem{}
	}
	return domain.ListUpdatedEvent{Type: domain.EventListUpdated, Items: items, UpdatedBy: updatedBy, Timestamp: timestamp(at)}
}

func ItemDeleted(foodItemID string, updatedBy string, at time.Time) domain.ItemDeletedEvent {
	return domain.ItemDeletedEvent{Type: domain.EventItemDeleted, FoodItemID: foodItemID, UpdatedBy: updatedBy, Timestamp: timestamp(at)}
}
