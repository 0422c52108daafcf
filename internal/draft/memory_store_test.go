package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	st := NewMemoryStore()
	st.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Draft{ScreenID: "scr_1"}, time.Minute))

	got, err := st.Load(ctx, "scr_1")
	require.NoError(t, err)
	assert.Equal(t, now, got.UpdatedAt)

	now = now.Add(time.Minute)
	_, err = st.Load(ctx, "scr_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Draft{ScreenID: "scr_1"}, 0))
	require.NoError(t, st.Delete(ctx, "scr_1"))

	_, err := st.Load(ctx, "scr_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
	var _ Store = (*RedisStore)(nil)
}
