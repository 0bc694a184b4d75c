package domain

import (
	"errors"
)

const (
	RoleUser = "user"

	PrincipalLocalsKey = "principal"
	ViewerIDHeader     = "X-Viewer-ID"
)

var (
	MessageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	ErrParseUUID      = errors.New("failed to parse UUID")
	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")

	ErrAccessDenied    = errors.New("access denied to store")
	ErrStoreNotFound   = errors.New("store not found")
	ErrItemNotFound    = errors.New("item not found in shopping list")
	ErrDuplicateItem   = errors.New("duplicate food item in shopping list")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidFoodItem = errors.New("food item id is required")
	ErrEmptyPurchase   = errors.New("no purchased items supplied")
)

type (
	// Principal is the authenticated caller, taken from the bearer token.
	Principal struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}

	// Actor is the principal behind a mutation plus the live viewer, if any,
	// that should not be told about it.
	Actor struct {
		Principal Principal
		ViewerID  string
	}
)

// UpdatedBy is how the actor is named in change events.
func (a Actor) UpdatedBy() string {
	if a.Principal.Email != "" {
		return a.Principal.Email
	}
	return a.Principal.UserID
}
