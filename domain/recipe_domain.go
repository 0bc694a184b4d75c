package domain

import (
	"errors"
)

var (
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrInvalidRecipeID   = errors.New("invalid recipe id")
	ErrUnknownSourceKind = errors.New("unknown list source kind")
)
