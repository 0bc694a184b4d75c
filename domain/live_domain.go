package domain

const (
	EventPresence    = "presence"
	EventItemChecked = "item_checked"
	EventListUpdated = "list_updated"
	EventItemDeleted = "item_deleted"

	ActionPing = "ping"
	ActionPong = "pong"
)

type (
	ActiveUser struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	PresenceEvent struct {
		Type        string       `json:"type"`
		ActiveUsers []ActiveUser `json:"activeUsers"`
		Timestamp   int64        `json:"timestamp"`
	}

	ItemCheckedEvent struct {
		Type       string `json:"type"`
		FoodItemID string `json:"foodItemId"`
		Checked    bool   `json:"checked"`
		UpdatedBy  string `json:"updatedBy"`
		Timestamp  int64  `json:"timestamp"`
	}

	ListUpdatedEvent struct {
		Type      string     `json:"type"`
		Items     []ListItem `json:"items"`
		UpdatedBy string     `json:"updatedBy"`
		Timestamp int64      `json:"timestamp"`
	}

	ItemDeletedEvent struct {
		Type       string `json:"type"`
		FoodItemID string `json:"foodItemId"`
		UpdatedBy  string `json:"updatedBy"`
		Timestamp  int64  `json:"timestamp"`
	}

	// LiveAction is what a viewer may send over its connection.
	LiveAction struct {
		Action string `json:"action"`
	}
)

func (e PresenceEvent) EventType() string    { return e.Type }
func (e ItemCheckedEvent) EventType() string { return e.Type }
func (e ListUpdatedEvent) EventType() string { return e.Type }
func (e ItemDeletedEvent) EventType() string { return e.Type }
