package search

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"fms/api/internal/store"
)

// engine is the Meilisearch surface the service depends on.
type engine interface {
	Healthy() bool
	Search(q Query) ([]Result, int, error)
	IndexBookings(records []BookingRecord) error
	DeleteBooking(id string) error
}

// Service tries Meilisearch first and falls back to Postgres.
type Service struct {
	meili    engine
	fallback *Postgres
	log      *zap.Logger
	pending  sync.WaitGroup
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, fallback *Postgres, logger *zap.Logger) *Service {
	var e engine
	if meili != nil {
		e = meili
	}
	return newService(e, fallback, logger)
}

func newService(e engine, fallback *Postgres, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{meili: e, fallback: fallback, log: logger.Named("search")}
}

func (s *Service) meiliReady() bool {
	return s.meili != nil && s.meili.Healthy()
}

// Search returns an empty response rather than an error when both engines fail.
func (s *Service) Search(ctx context.Context, q Query) Response {
	q = normalize(q)
	if s.meiliReady() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text, Engine: "meilisearch"}
		}
		s.log.Warn("meilisearch error, falling back to postgres", zap.Error(err))
	}

	if s.fallback == nil {
		return Response{Results: []Result{}, Query: q.Text, Engine: "none"}
	}
	results, total, err := s.fallback.Search(ctx, q)
	if err != nil {
		s.log.Error("postgres search failed", zap.Error(err))
		return Response{Results: []Result{}, Query: q.Text, Engine: "postgres"}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text, Engine: "postgres"}
}

// IndexBooking pushes a booking to Meilisearch in the background.
func (s *Service) IndexBooking(b store.SeaBooking) {
	if !s.meiliReady() {
		return
	}
	record := RecordFromBooking(b)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.meili.IndexBookings([]BookingRecord{record}); err != nil {
			s.log.Warn("index booking", zap.String("booking_no", record.BookingNo), zap.Error(err))
		}
	}()
}

// DeleteBooking removes a booking from Meilisearch in the background.
func (s *Service) DeleteBooking(id int64) {
	if !s.meiliReady() {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.meili.DeleteBooking(strconv.FormatInt(id, 10)); err != nil {
			s.log.Warn("delete booking from index", zap.Int64("booking_id", id), zap.Error(err))
		}
	}()
}

// Reindex replaces the Meilisearch contents with bookings. It runs inline.
func (s *Service) Reindex(bookings []store.SeaBooking) {
	if !s.meiliReady() || len(bookings) == 0 {
		return
	}
	records := make([]BookingRecord, 0, len(bookings))
	for _, b := range bookings {
		records = append(records, RecordFromBooking(b))
	}
	if err := s.meili.IndexBookings(records); err != nil {
		s.log.Warn("reindex bookings", zap.Int("count", len(records)), zap.Error(err))
		return
	}
	s.log.Info("bookings reindexed", zap.Int("count", len(records)))
}

// Wait blocks until background index updates have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
