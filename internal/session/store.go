package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("speech session not found")

// Store persists live interview state between requests.
type Store interface {
	Save(ctx context.Context, state *State) error
	Get(ctx context.Context, sessionID string) (*State, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}
