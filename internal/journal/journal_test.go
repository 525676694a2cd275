package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "nested", "hands.db"))
	require.NoError(t, err)
	defer store.Close()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordHand(ctx, Entry{HandID: "h1", AccountID: "me", Won: true, Wins: 1, TotalHands: 1, RecordedAt: at}))
	require.NoError(t, store.RecordHand(ctx, Entry{HandID: "h2", AccountID: "me", Bluffed: true, Wins: 1, Losses: 1, TotalHands: 2, RecordedAt: at.Add(time.Minute)}))
	require.NoError(t, store.RecordHand(ctx, Entry{HandID: "h2", AccountID: "other", TotalHands: 1}))

	entries, err := store.Recent(ctx, "me", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{HandID: "h2", AccountID: "me", Bluffed: true, Wins: 1, Losses: 1, TotalHands: 2, RecordedAt: at.Add(time.Minute)}, entries[0])
	assert.Equal(t, "h1", entries[1].HandID)
	assert.True(t, entries[1].Won)

	latest, err := store.Recent(ctx, "me", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "h2", latest[0].HandID)
}

func TestRecordStampsTime(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.RecordHand(ctx, Entry{AccountID: "me"}))

	entries, err := store.Recent(ctx, "me", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].RecordedAt.After(before))
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hands.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.RecordHand(ctx, Entry{HandID: "h1", AccountID: "me"}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Recent(ctx, "me", 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}
