// Package session holds the registry mapping opaque session tokens to user
// identifiers.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Store interface {
	Set(ctx context.Context, token string, userID uint64) error
	Get(ctx context.Context, token string) (uint64, error)
	// Delete reports whether a mapping existed.
	Delete(ctx context.Context, token string) (bool, error)
}

// NewToken returns a random version 4 UUID string.
func NewToken() string {
	return uuid.New().String()
}
