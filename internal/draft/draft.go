// Package draft keeps the unsaved form state of registration screens.
package draft

import (
	"context"
	"errors"
	"time"

	"fms/api/internal/store"
)

// ErrNotFound is returned when no draft exists for a screen or it expired.
var ErrNotFound = errors.New("draft not found")

// Draft is the in-progress content of one registration screen.
type Draft struct {
	ScreenID  string             `json:"screen_id"`
	BookingID *int64             `json:"booking_id,omitempty"`
	Input     store.BookingInput `json:"input"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store persists drafts with a time to live.
type Store interface {
	Save(ctx context.Context, d Draft, ttl time.Duration) error
	Load(ctx context.Context, screenID string) (Draft, error)
	Delete(ctx context.Context, screenID string) error
}
