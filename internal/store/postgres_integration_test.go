package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*PostgresStore, context.Context) {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("FMS_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("FMS_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := resetPublicSchema(ctx, db); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if _, err := ApplyMigrations(ctx, db, filepath.Join("..", "..", "db", "migrations"), nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return NewPostgresStore(db), ctx
}

func TestSeaBookingLifecyclePostgres(t *testing.T) {
	s, ctx := openTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	first, err := s.CreateSeaBooking(ctx, BookingInput{ShipperName: "LG전자", ETD: "2026-05-20", Cntr40HCQty: 2}, "")
	if err != nil {
		t.Fatalf("create first booking: %v", err)
	}
	if first.BookingNo != "SB-2026-0001" {
		t.Fatalf("expected SB-2026-0001, got %s", first.BookingNo)
	}
	if first.TotalCntrQty != 2 || first.Status != "DRAFT" || first.CreatedBy != "admin" {
		t.Fatalf("unexpected defaults: %+v", first)
	}

	second, err := s.CreateSeaBooking(ctx, BookingInput{ShipperName: "포스코"}, "kim")
	if err != nil {
		t.Fatalf("create second booking: %v", err)
	}
	if second.BookingNo != "SB-2026-0002" {
		t.Fatalf("expected SB-2026-0002, got %s", second.BookingNo)
	}

	updated, err := s.UpdateSeaBooking(ctx, first.ID, BookingInput{ShipperName: "LG전자", VesselName: "EVER GOODS", Status: "CONFIRMED"})
	if err != nil {
		t.Fatalf("update booking: %v", err)
	}
	if updated.VesselName != "EVER GOODS" || updated.ETD != nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	found, total, err := s.SearchSeaBookings(ctx, "ever", 10, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(found) != 1 || found[0].ID != first.ID {
		t.Fatalf("unexpected search result total=%d items=%+v", total, found)
	}

	if err := s.DeleteSeaBooking(ctx, second.ID); err != nil {
		t.Fatalf("delete booking: %v", err)
	}
	if _, err := s.GetSeaBooking(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSeaBooking(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	list, err := s.ListSeaBookings(ctx)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one live booking, got %d", len(list))
	}

	third, err := s.CreateSeaBooking(ctx, BookingInput{}, "")
	if err != nil {
		t.Fatalf("create third booking: %v", err)
	}
	if third.BookingNo != "SB-2026-0003" {
		t.Fatalf("soft-deleted bookings still count toward numbering, got %s", third.BookingNo)
	}
}

func TestMasterDataListsPostgres(t *testing.T) {
	s, ctx := openTestStore(t)

	ports, err := s.ListPorts(ctx)
	if err != nil {
		t.Fatalf("list ports: %v", err)
	}
	if len(ports) == 0 {
		t.Fatal("expected seeded ports")
	}

	carriers, err := s.ListCarriers(ctx)
	if err != nil {
		t.Fatalf("list carriers: %v", err)
	}
	if len(carriers) == 0 {
		t.Fatal("expected seeded carriers")
	}

	if _, err := s.DB().ExecContext(ctx, `DROP TABLE ports`); err != nil {
		t.Fatalf("drop ports: %v", err)
	}
	fallback, err := s.ListPorts(ctx)
	if err == nil {
		t.Fatal("expected read error once ports table is gone")
	}
	if len(fallback) != len(DefaultPorts()) {
		t.Fatalf("expected default ports, got %d", len(fallback))
	}
}
