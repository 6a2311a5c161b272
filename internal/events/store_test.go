package events

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), name), DefaultEvents(), zap.NewNop())
}

func TestStore_LoadMissingFileReturnsSeed(t *testing.T) {
	store := newTestStore(t, "events.json")

	evs, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultEvents(), evs)
}

func TestStore_LoadReturnsCopyOfSeed(t *testing.T) {
	store := newTestStore(t, "events.json")

	evs, err := store.Load()
	require.NoError(t, err)
	evs[0].Name = "mutated"

	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ramadan", again[0].Name)
}

func TestStore_LoadCorruptFileFallsBackToSeed(t *testing.T) {
	store := newTestStore(t, "events.json")
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	evs, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultEvents(), evs)
}

func TestStore_SaveAndLoadJSON(t *testing.T) {
	store := newTestStore(t, "events.json")
	want := []Event{
		{ID: "a", Name: "Launch", Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Color: "#3b82f6"},
		{ID: "b", Name: "Review", Date: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), Color: "#ec4899"},
	}

	require.NoError(t, store.Save(want))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Launch"`)
	assert.Contains(t, string(data), `"date": "2026-06-01T00:00:00Z"`)

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.True(t, want[i].Date.Equal(got[i].Date))
		assert.Equal(t, want[i].Color, got[i].Color)
	}
}

func TestStore_SaveAndLoadYAML(t *testing.T) {
	store := newTestStore(t, "events.yaml")
	want := []Event{
		{ID: "a", Name: "Launch", Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Color: "#3b82f6"},
	}

	require.NoError(t, store.Save(want))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "- id: a"), string(data))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Launch", got[0].Name)
	assert.True(t, want[0].Date.Equal(got[0].Date))
}

func TestStore_SaveEmptyListIsNotSeed(t *testing.T) {
	store := newTestStore(t, "events.json")

	require.NoError(t, store.Save(nil))

	evs, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestStore_Add(t *testing.T) {
	store := newTestStore(t, "events.json")
	date := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

	created, err := store.Add(NewEvent{Name: "  Independence Day ", Date: date})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Independence Day", created.Name)
	assert.Equal(t, DefaultColor, created.Color)

	evs, err := store.Load()
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, created.ID, evs[2].ID)
}

func TestStore_AddKeepsCallerID(t *testing.T) {
	store := newTestStore(t, "events.json")

	created, err := store.Add(NewEvent{ID: "custom", Name: "X", Date: time.Now(), Color: "#06b6d4"})

	require.NoError(t, err)
	assert.Equal(t, "custom", created.ID)
	assert.Equal(t, "#06b6d4", created.Color)
}

func TestStore_AddValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   NewEvent
		wantMsg string
	}{
		{"missing name", NewEvent{Name: "   ", Date: time.Now()}, "name is required"},
		{"missing date", NewEvent{Name: "X"}, "date is required"},
		{"bad color", NewEvent{Name: "X", Date: time.Now(), Color: "green"}, "color must be a hex color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, "events.json")

			_, err := store.Add(tt.input)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEvent)
			assert.Contains(t, err.Error(), tt.wantMsg)
			_, statErr := os.Stat(store.Path())
			assert.True(t, os.IsNotExist(statErr), "nothing should be written")
		})
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t, "events.json")

	removed, err := store.Remove("1")
	require.NoError(t, err)
	assert.True(t, removed)

	evs, err := store.Load()
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "2", evs[0].ID)

	removed, err = store.Remove("missing")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_RemoveUnknownDoesNotWrite(t *testing.T) {
	store := newTestStore(t, "events.json")

	removed, err := store.Remove("nope")

	require.NoError(t, err)
	assert.False(t, removed)
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}
