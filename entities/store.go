package entities

import (
	"github.com/google/uuid"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

// Store is the access-control root of a shared shopping list. Rows are owned
// by the store management service; this service only reads them.
type Store struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	OwnerEmail string    `json:"owner_email"`
	Name       string    `json:"name"`

	Invitations []*StoreInvitation `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Timestamp
}

type StoreInvitation struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	StoreID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_store_invitation_user;not null" json:"store_id"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_store_invitation_user;not null" json:"user_id"`
	Status  string    `gorm:"type:varchar(16);not null;default:'pending'" json:"status"` // "pending", "accepted"

	Timestamp
}
