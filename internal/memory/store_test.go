package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/resumefill/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	kv, err := store.OpenFile(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	s := NewStore(kv, nil)
	clock := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestUpsertNormalizesAndSkips(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.Upsert(ctx, []Item{
		{Label: " City ", Value: "广州"},
		{Key: "手机 号码", Label: "手机号码", Value: "13800000000"},
		{Label: "Empty", Value: "  "},
		{Label: "***", Value: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "City", entries["city"].Label)
	assert.Equal(t, "广州", entries["city"].Value)
	assert.Equal(t, "city", entries["city"].Key)
	assert.Equal(t, "13800000000", entries["手机号码"].Value)
}

func TestUpsertCapsAndEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < MaxEntries; i++ {
		_, err := s.Upsert(ctx, []Item{{Label: fmt.Sprintf("field%d", i), Value: "v"}})
		require.NoError(t, err)
	}
	entries, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)

	_, err = s.Upsert(ctx, []Item{{Label: "field-new", Value: "v"}})
	require.NoError(t, err)

	entries, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, MaxEntries)
	assert.NotContains(t, entries, "field0")
	assert.Contains(t, entries, "field1")
	assert.Contains(t, entries, "fieldnew")
}

func TestUpsertRefreshesExistingKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < MaxEntries; i++ {
		_, err := s.Upsert(ctx, []Item{{Label: fmt.Sprintf("field%d", i), Value: "v"}})
		require.NoError(t, err)
	}
	// Touching field0 makes field1 the oldest.
	_, err := s.Upsert(ctx, []Item{{Label: "field0", Value: "updated"}})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, []Item{{Label: "another", Value: "v"}})
	require.NoError(t, err)

	entries, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "updated", entries["field0"].Value)
	assert.NotContains(t, entries, "field1")
}

func TestListDeleteClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Upsert(ctx, []Item{{Label: "first", Value: "1"}})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, []Item{{Label: "second", Value: "2"}})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Key)

	require.NoError(t, s.Delete(ctx, "First"))
	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Clear(ctx))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
