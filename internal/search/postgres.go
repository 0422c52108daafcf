package search

import (
	"context"
	"strings"

	"fms/api/internal/store"
)

type bookingSearcher interface {
	SearchSeaBookings(ctx context.Context, query string, limit, offset int) ([]store.SeaBooking, int, error)
}

// Postgres searches bookings with ILIKE when Meilisearch is unavailable.
type Postgres struct {
	bookings bookingSearcher
}

func NewPostgres(bookings bookingSearcher) *Postgres {
	return &Postgres{bookings: bookings}
}

func (p *Postgres) Search(ctx context.Context, q Query) ([]Result, int, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, 0, nil
	}
	items, total, err := p.bookings.SearchSeaBookings(ctx, text, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, resultFromBooking(item))
	}
	return results, total, nil
}
