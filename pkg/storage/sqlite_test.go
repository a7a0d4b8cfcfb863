package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Illustar0/oneMonitor/pkg/model"
	"github.com/Illustar0/oneMonitor/pkg/storage"
)

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_UpsertAndListRooms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room := model.Room{ID: "99-11-403", Name: "403", Group: "Building 99"}
	require.NoError(t, store.UpsertRoom(ctx, room))

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "99-11-403", rooms[0].ID)
	assert.Equal(t, "room_99_11_403", rooms[0].TableName)

	// Upsert with the same id replaces, not duplicates
	room.Name = "403 East"
	require.NoError(t, store.UpsertRoom(ctx, room))
	rooms, err = store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "403 East", rooms[0].Name)
}

func TestSQLite_UpsertRoom_RejectsBadID(t *testing.T) {
	store := newTestStore(t)
	err := store.UpsertRoom(context.Background(), model.Room{ID: "r1; DROP TABLE rooms", Name: "x"})
	assert.Error(t, err)
}

func TestSQLite_UpdateRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRoom(ctx, model.Room{ID: "r1", Name: "old", Group: "g1"}))

	require.NoError(t, store.UpdateRoom(ctx, model.Room{ID: "r1", Name: "new", Group: "g2"}))
	got, err := store.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, "g2", got.Group)

	err = store.UpdateRoom(ctx, model.Room{ID: "missing", Name: "x", Group: "y"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_DeleteRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRoom(ctx, model.Room{ID: "r1", Name: "r1", Group: "g"}))
	require.NoError(t, store.AppendReading(ctx, "r1", model.Reading{Timestamp: 1, Electricity: 2}))

	require.NoError(t, store.DeleteRoom(ctx, "r1"))

	_, err := store.GetRoom(ctx, "r1")
	assert.Error(t, err)

	// Re-registering after delete starts with an empty series
	require.NoError(t, store.UpsertRoom(ctx, model.Room{ID: "r1", Name: "r1", Group: "g"}))
	readings, err := store.ListReadings(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestSQLite_ReadingRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRoom(ctx, model.Room{ID: "99-11-403", Name: "403", Group: "b99"}))
	require.NoError(t, store.AppendReading(ctx, "99-11-403",
		model.Reading{Timestamp: 1700000000, Electricity: 42.5}))

	readings, err := store.ListReadings(ctx, "99-11-403")
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, int64(1700000000), readings[0].Timestamp)
	assert.InDelta(t, 42.5, readings[0].Electricity, 0.0001)
}

func TestSQLite_DuplicateTimestampReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRoom(ctx, model.Room{ID: "r1", Name: "r1", Group: "g"}))
	require.NoError(t, store.AppendReading(ctx, "r1", model.Reading{Timestamp: 100, Electricity: 10}))
	require.NoError(t, store.AppendReading(ctx, "r1", model.Reading{Timestamp: 100, Electricity: 20}))

	readings, err := store.ListReadings(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.InDelta(t, 20, readings[0].Electricity, 0.0001)
}

func TestSQLite_ReadingsOrderedByTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRoom(ctx, model.Room{ID: "r1", Name: "r1", Group: "g"}))
	for _, ts := range []int64{300, 100, 200} {
		require.NoError(t, store.AppendReading(ctx, "r1", model.Reading{Timestamp: ts, Electricity: float64(ts)}))
	}

	readings, err := store.ListReadings(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, int64(100), readings[0].Timestamp)
	assert.Equal(t, int64(300), readings[2].Timestamp)
}

func TestSQLite_AppendReading_UnknownRoom(t *testing.T) {
	store := newTestStore(t)
	err := store.AppendReading(context.Background(), "nope", model.Reading{Timestamp: 1, Electricity: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
