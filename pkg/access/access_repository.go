package access

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	AccessRepository interface {
		GetStoreByID(ctx context.Context, storeID uuid.UUID) (*entities.Store, error)
		HasAcceptedInvitation(ctx context.Context, storeID, userID uuid.UUID) (bool, error)
	}

	accessRepository struct {
		db *gorm.DB
	}
)

func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepository{db: db}
}

func (r *accessRepository) GetStoreByID(ctx context.Context, storeID uuid.UUID) (*entities.Store, error) {
	var store entities.Store
	if err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store %s: %w", storeID, err)
	}
	return &store, nil
}

func (r *accessRepository) HasAcceptedInvitation(ctx context.Context, storeID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.StoreInvitation{}).
		Where("store_id = ? AND user_id = ? AND status = ?", storeID, userID, entities.InvitationAccepted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count invitations for store %s: %w", storeID, err)
	}
	return count > 0, nil
}
