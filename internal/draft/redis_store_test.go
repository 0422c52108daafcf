package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"fms/api/internal/store"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	st, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, s
}

func TestNewRedisStore(t *testing.T) {
	st, _ := setupTestRedis(t)

	if err := st.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndLoadDraft(t *testing.T) {
	st, s := setupTestRedis(t)
	ctx := context.Background()
	id := int64(42)

	err := st.Save(ctx, Draft{
		ScreenID:  "scr_1",
		BookingID: &id,
		Input:     store.BookingInput{ShipperName: "삼성전자", Cntr20GPQty: 2},
	}, time.Hour)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !s.Exists("draft:scr_1") {
		t.Fatal("expected draft:scr_1 key")
	}
	if ttl := s.TTL("draft:scr_1"); ttl != time.Hour {
		t.Errorf("expected 1h ttl, got %v", ttl)
	}

	got, err := st.Load(ctx, "scr_1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Input.ShipperName != "삼성전자" || got.Input.Cntr20GPQty != 2 {
		t.Errorf("unexpected input: %+v", got.Input)
	}
	if got.BookingID == nil || *got.BookingID != 42 {
		t.Errorf("expected booking id 42, got %v", got.BookingID)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be stamped")
	}
}

func TestLoadExpiredDraft(t *testing.T) {
	st, s := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, Draft{ScreenID: "scr_2"}, time.Second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.FastForward(2 * time.Second)

	if _, err := st.Load(ctx, "scr_2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDraft(t *testing.T) {
	st, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, Draft{ScreenID: "scr_3"}, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := st.Delete(ctx, "scr_3"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := st.Load(ctx, "scr_3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing draft should succeed: %v", err)
	}
}

func TestRedisErrorsAreWrapped(t *testing.T) {
	st, s := setupTestRedis(t)
	s.Close()

	err := st.Save(context.Background(), Draft{ScreenID: "scr_4"}, time.Minute)
	if err == nil {
		t.Fatal("expected error once redis is down")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("connection failure must not look like a missing draft")
	}
}
