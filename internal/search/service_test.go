package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fms/api/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeEngine struct {
	mu        sync.Mutex
	healthy   bool
	searchErr error
	results   []Result
	indexed   []BookingRecord
	deleted   []string
	lastQuery Query
}

func (f *fakeEngine) Healthy() bool { return f.healthy }

func (f *fakeEngine) Search(q Query) ([]Result, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	return f.results, len(f.results), nil
}

func (f *fakeEngine) IndexBookings(records []BookingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, records...)
	return nil
}

func (f *fakeEngine) DeleteBooking(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBookings struct {
	searchFn func(ctx context.Context, query string, limit, offset int) ([]store.SeaBooking, int, error)
}

func (f fakeBookings) SearchSeaBookings(ctx context.Context, query string, limit, offset int) ([]store.SeaBooking, int, error) {
	return f.searchFn(ctx, query, limit, offset)
}

func TestSearchUsesMeiliWhenHealthy(t *testing.T) {
	e := &fakeEngine{healthy: true, results: []Result{{ID: "1", BookingNo: "SB-2026-0001"}}}
	svc := newService(e, nil, nil)

	resp := svc.Search(context.Background(), Query{Text: "SB", Limit: 500})

	assert.Equal(t, "meilisearch", resp.Engine)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 100, e.lastQuery.Limit, "limit is capped")
}

func TestSearchFallsBackToPostgres(t *testing.T) {
	etd := time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)
	var gotLimit int
	fallback := NewPostgres(fakeBookings{searchFn: func(_ context.Context, query string, limit, offset int) ([]store.SeaBooking, int, error) {
		assert.Equal(t, "maersk", query)
		gotLimit = limit
		return []store.SeaBooking{{ID: 9, BookingNo: "SB-2026-0009", VesselName: "MAERSK EINDHOVEN", ShipperName: "삼성전자", ConsigneeName: "ABC Corp", ETD: &etd}}, 1, nil
	}})
	e := &fakeEngine{healthy: true, searchErr: errors.New("timeout")}
	svc := newService(e, fallback, nil)

	resp := svc.Search(context.Background(), Query{Text: "  maersk "})

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "postgres", resp.Engine)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, Result{
		ID:          "9",
		BookingNo:   "SB-2026-0009",
		VesselName:  "MAERSK EINDHOVEN",
		ShipperName: "삼성전자",
		Snippet:     "삼성전자 / ABC Corp",
		ETD:         "2026-01-25",
	}, resp.Results[0])
}

func TestSearchEmptyTextReturnsNoResults(t *testing.T) {
	fallback := NewPostgres(fakeBookings{searchFn: func(context.Context, string, int, int) ([]store.SeaBooking, int, error) {
		t.Fatal("blank query must not hit the database")
		return nil, 0, nil
	}})
	svc := newService(nil, fallback, nil)

	resp := svc.Search(context.Background(), Query{Text: "   "})

	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestSearchFallbackErrorYieldsEmptyResponse(t *testing.T) {
	fallback := NewPostgres(fakeBookings{searchFn: func(context.Context, string, int, int) ([]store.SeaBooking, int, error) {
		return nil, 0, errors.New("db down")
	}})
	svc := newService(nil, fallback, nil)

	resp := svc.Search(context.Background(), Query{Text: "x"})

	assert.Equal(t, []Result{}, resp.Results)
	assert.Zero(t, resp.Total)
}

func TestIndexAndDeleteRunInBackground(t *testing.T) {
	e := &fakeEngine{healthy: true}
	svc := newService(e, nil, nil)

	svc.IndexBooking(store.SeaBooking{ID: 3, BookingNo: "SB-2026-0003"})
	svc.DeleteBooking(4)
	svc.Wait()

	require.Len(t, e.indexed, 1)
	assert.Equal(t, "3", e.indexed[0].ID)
	assert.Equal(t, []string{"4"}, e.deleted)
}

func TestIndexSkippedWhenUnhealthy(t *testing.T) {
	e := &fakeEngine{healthy: false}
	svc := newService(e, nil, nil)

	svc.IndexBooking(store.SeaBooking{ID: 3})
	svc.Reindex([]store.SeaBooking{{ID: 1}})
	svc.Wait()

	assert.Empty(t, e.indexed)
}

func TestReindexPushesAllBookings(t *testing.T) {
	e := &fakeEngine{healthy: true}
	svc := newService(e, nil, nil)

	svc.Reindex([]store.SeaBooking{{ID: 1}, {ID: 2}})

	assert.Len(t, e.indexed, 2)
}

func TestNewServiceWithoutMeili(t *testing.T) {
	svc := NewService(nil, nil, nil)
	resp := svc.Search(context.Background(), Query{Text: "x"})
	assert.Equal(t, "none", resp.Engine)
}
