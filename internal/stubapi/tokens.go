package stubapi

import (
	"context"
	"errors"
	"time"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var ErrTokenNotFound = errors.New("token not found")

// TokenStore persists issued access and refresh tokens with their TTLs.
// Lookup of a missing or expired token returns ErrTokenNotFound.
type TokenStore interface {
	Save(ctx context.Context, kind, token string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, kind, token string) (int64, error)
	Revoke(ctx context.Context, kind, token string) error
}
