package storage

import (
	"path/filepath"
	"testing"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupBoltTestDB creates a temporary BoltDB instance for testing.
func setupBoltTestDB(t *testing.T) Bolt {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal-test.db")

	b, err := NewBolt(path)
	require.NoError(t, err)

	t.Cleanup(func() {
		b.DB.Close()
	})

	return b
}

func TestBoltReports(t *testing.T) {
	b := setupBoltTestDB(t)

	report := atlasportal.Report{
		ID:        "report-1",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Pieces: []atlasportal.Piece{
			{
				ID:       "atlas-mine-staking-contract-address",
				Category: atlasportal.CategoryContract,
				Name:     "Atlas Mine staking contract address",
				Status:   atlasportal.StatusFound,
				Sources:  []string{"https://example.com"},
			},
		},
	}

	err := b.KVUpsertReport(report)
	require.NoError(t, err)

	t.Run("Get stored report", func(t *testing.T) {
		retrieved, err := b.KVReport(report.ID)
		require.NoError(t, err)
		assert.Equal(t, report.ID, retrieved.ID)
		assert.WithinDuration(t, report.CreatedAt, retrieved.CreatedAt, time.Second)
		require.Len(t, retrieved.Pieces, 1)
		assert.Equal(t, report.Pieces[0], retrieved.Pieces[0])
	})

	t.Run("Get non-existent report", func(t *testing.T) {
		_, err := b.KVReport("no-such-report")
		assert.ErrorIs(t, err, atlasportal.ErrReportNotFound)
	})

	t.Run("Upsert overwrites", func(t *testing.T) {
		updated := report
		updated.Pieces = nil
		require.NoError(t, b.KVUpsertReport(updated))

		retrieved, err := b.KVReport(report.ID)
		require.NoError(t, err)
		assert.Empty(t, retrieved.Pieces)
	})
}

func TestBoltCache(t *testing.T) {
	b := setupBoltTestDB(t)

	results := []atlasportal.Result{
		{Title: "Atlas Mine docs", URL: "https://docs.example.com"},
		{Title: "Atlas Mine mirror", URL: "https://mirror.example.com"},
	}

	t.Run("Miss on empty cache", func(t *testing.T) {
		_, err := b.KVCachedResults("some-key")
		assert.ErrorIs(t, err, atlasportal.ErrCacheMiss)
	})

	t.Run("Round trip", func(t *testing.T) {
		require.NoError(t, b.KVCacheResults("some-key", results))

		retrieved, err := b.KVCachedResults("some-key")
		require.NoError(t, err)
		assert.Equal(t, results, retrieved)
	})

	t.Run("Empty result set is a hit", func(t *testing.T) {
		require.NoError(t, b.KVCacheResults("empty-key", []atlasportal.Result{}))

		retrieved, err := b.KVCachedResults("empty-key")
		require.NoError(t, err)
		assert.Empty(t, retrieved)
	})
}

func TestBoltLoreChunks(t *testing.T) {
	b := setupBoltTestDB(t)

	chunks := []atlasportal.LoreChunk{
		{ID: "founding-md-chunk-0", Content: "In the beginning", TokenSize: 4, OrderIndex: 0},
		{ID: "founding-md-chunk-1", Content: "there was MAGIC.", TokenSize: 4, OrderIndex: 1},
	}

	require.NoError(t, b.KVUpsertLoreChunks(chunks))

	t.Run("Get stored chunk", func(t *testing.T) {
		retrieved, err := b.KVLoreChunk("founding-md-chunk-1")
		require.NoError(t, err)
		assert.Equal(t, chunks[1], retrieved)
	})

	t.Run("Get non-existent chunk", func(t *testing.T) {
		_, err := b.KVLoreChunk("no-such-chunk")
		assert.ErrorIs(t, err, atlasportal.ErrLoreChunkNotFound)
	})
}
