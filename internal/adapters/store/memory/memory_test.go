package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "holidays/2025-06-07", "Weekend"))

	raw, err := s.Get(ctx, "holidays/2025-06-07")
	require.NoError(t, err)
	assert.JSONEq(t, `"Weekend"`, string(raw))

	raw, err = s.Get(ctx, "holidays")
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-06-07":"Weekend"}`, string(raw))
}

func TestStore_GetMissing(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background(), "holidays/2025-06-07")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestStore_ObjectsExpandIntoChildren(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "attendance/2025-06-02", map[string]any{
		"u1": map[string]any{"clockIn": "2025-06-02T09:00:00Z"},
	}))

	raw, err := s.Get(ctx, "attendance/2025-06-02/u1/clockIn")
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-06-02T09:00:00Z"`, string(raw))
}

func TestStore_SetNullRemoves(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "holidays/2025-06-07", "Weekend"))
	require.NoError(t, s.Set(ctx, "holidays/2025-06-07", nil))

	_, err := s.Get(ctx, "holidays/2025-06-07")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	// parent pruned along with its only child
	_, err = s.Get(ctx, "holidays")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "holidays/2025-06-01", "Weekend"))
	require.NoError(t, s.Update(ctx, "holidays", map[string]any{
		"2025-06-07": "Weekend",
		"2025-06-01": nil,
	}))

	raw, err := s.Get(ctx, "holidays")
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-06-07":"Weekend"}`, string(raw))
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "tasks/u1/2025-06-02/t1", map[string]any{"description": "a"}))
	require.NoError(t, s.Set(ctx, "tasks/u1/2025-06-02/t2", map[string]any{"description": "b"}))
	require.NoError(t, s.Remove(ctx, "tasks/u1/2025-06-02/t1"))

	raw, err := s.Get(ctx, "tasks/u1/2025-06-02")
	require.NoError(t, err)
	assert.JSONEq(t, `{"t2":{"description":"b"}}`, string(raw))

	require.NoError(t, s.Remove(ctx, "tasks/u1/2025-06-02/missing"))
}

func TestStore_RangeQuery(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, date := range []string{"2025-05-31", "2025-06-01", "2025-06-15", "2025-06-30", "2025-07-01"} {
		require.NoError(t, s.Set(ctx, "holidays/"+date, "Weekend"))
	}

	rows, err := s.RangeQuery(ctx, "holidays", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-06-01", rows[0].Key)
	assert.Equal(t, "2025-06-15", rows[1].Key)
	assert.Equal(t, "2025-06-30", rows[2].Key)
}

func TestStore_RangeQueryOpenBounds(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "holidays/2025-06-01", "Weekend"))
	require.NoError(t, s.Set(ctx, "holidays/2025-06-07", "Eid"))

	rows, err := s.RangeQuery(ctx, "holidays", "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = s.RangeQuery(ctx, "missing", "", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New()

	require.NoError(t, s.Set(ctx, "attendance/2025-06-02/u1", map[string]any{"clockIn": "x"}))

	ch, err := s.Subscribe(ctx, "attendance/2025-06-02")
	require.NoError(t, err)

	first := receiveSnapshot(t, ch)
	assert.JSONEq(t, `{"u1":{"clockIn":"x"}}`, string(first.Value))

	require.NoError(t, s.Set(ctx, "attendance/2025-06-02/u2", map[string]any{"clockIn": "y"}))
	second := receiveSnapshot(t, ch)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(second.Value, &doc))
	assert.Len(t, doc, 2)

	// mutations outside the subtree do not fan in
	require.NoError(t, s.Set(ctx, "attendance/2025-06-03/u1", map[string]any{"clockIn": "z"}))
	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot: %s", snap.Value)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_SubscribeClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	ch, err := s.Subscribe(ctx, "attendance")
	require.NoError(t, err)
	receiveSnapshot(t, ch)

	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func receiveSnapshot(t *testing.T, ch <-chan ports.Snapshot) ports.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return ports.Snapshot{}
	}
}
