package access

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/entities"
	"context"
	"errors"

	"github.com/google/uuid"
)

type (
	AccessService interface {
		// CanAccess reports whether the principal owns the store or holds an
		// accepted invitation to it.
		CanAccess(ctx context.Context, storeID, principalID string) (bool, error)
		// Authorize returns the store when access is granted, ErrStoreNotFound
		// for unknown stores and ErrAccessDenied otherwise.
		Authorize(ctx context.Context, storeID, principalID string) (*entities.Store, error)
	}

	accessService struct {
		accessRepository AccessRepository
	}
)

func NewAccessService(accessRepository AccessRepository) AccessService {
	return &accessService{accessRepository: accessRepository}
}

func (s *accessService) CanAccess(ctx context.Context, storeID, principalID string) (bool, error) {
	_, err := s.Authorize(ctx, storeID, principalID)
	if errors.Is(err, domain.ErrAccessDenied) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *accessService) Authorize(ctx context.Context, storeID, principalID string) (*entities.Store, error) {
	storeUUID, err := uuid.Parse(storeID)
	if err != nil {
		return nil, domain.ErrStoreNotFound
	}
	userUUID, err := uuid.Parse(principalID)
	if err != nil {
		return nil, domain.ErrAccessDenied
	}

	store, err := s.accessRepository.GetStoreByID(ctx, storeUUID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID == userUUID {
		return store, nil
	}

	accepted, err := s.accessRepository.HasAcceptedInvitation(ctx, storeUUID, userUUID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, domain.ErrAccessDenied
	}
	return store, nil
}
