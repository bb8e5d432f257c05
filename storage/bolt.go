package storage

import (
	"encoding/json"
	"fmt"

	atlasportal "github.com/bridgeworld/atlas-portal"
	bolt "go.etcd.io/bbolt"
)

// Bolt provides a BoltDB key-value storage implementation of storage interfaces.
// It handles database operations for resolution reports, cached search
// results, and lore chunks.
type Bolt struct {
	DB *bolt.DB
}

const (
	boltReportsBucket = "reports"
	boltCacheBucket   = "cache"
	boltLoreBucket    = "lore"
)

// NewBolt creates a new BoltDB client connection with the provided file path.
// It returns an initialized Bolt struct and any error encountered during database setup.
// The function ensures that required buckets exist in the database.
func NewBolt(path string) (Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return Bolt{}, fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{boltReportsBucket, boltCacheBucket, boltLoreBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return Bolt{}, fmt.Errorf("failed to create buckets: %w", err)
	}

	return Bolt{DB: db}, nil
}

// KVReport retrieves a resolution report by ID from the BoltDB database.
// It returns the found report or an error if the report doesn't exist or if the query fails.
func (b Bolt) KVReport(id string) (atlasportal.Report, error) {
	var result atlasportal.Report

	err := b.DB.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(boltReportsBucket))

		content := bkt.Get([]byte(id))
		if content == nil {
			return atlasportal.ErrReportNotFound
		}

		if err := json.Unmarshal(content, &result); err != nil {
			return fmt.Errorf("failed to unmarshal report: %w", err)
		}

		return nil
	})

	return result, err
}

// KVUpsertReport creates or updates a resolution report in the BoltDB database.
// It returns an error if any database operation fails during the process.
func (b Bolt) KVUpsertReport(report atlasportal.Report) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(boltReportsBucket))
		if bkt == nil {
			return fmt.Errorf("bucket not found")
		}

		content, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}

		if err := bkt.Put([]byte(report.ID), content); err != nil {
			return fmt.Errorf("failed to put report: %w", err)
		}

		return nil
	})
}

// KVCachedResults retrieves cached search results by query key from the BoltDB database.
// It returns ErrCacheMiss if no results are cached for the key.
func (b Bolt) KVCachedResults(key string) ([]atlasportal.Result, error) {
	var results []atlasportal.Result

	err := b.DB.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(boltCacheBucket))

		content := bkt.Get([]byte(key))
		if content == nil {
			return atlasportal.ErrCacheMiss
		}

		if err := json.Unmarshal(content, &results); err != nil {
			return fmt.Errorf("failed to unmarshal cached results: %w", err)
		}

		return nil
	})

	return results, err
}

// KVCacheResults stores search results under the given query key in the BoltDB database.
func (b Bolt) KVCacheResults(key string, results []atlasportal.Result) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(boltCacheBucket))
		if bkt == nil {
			return fmt.Errorf("bucket not found")
		}

		content, err := json.Marshal(results)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}

		if err := bkt.Put([]byte(key), content); err != nil {
			return fmt.Errorf("failed to put cached results: %w", err)
		}

		return nil
	})
}

// KVLoreChunk retrieves a lore chunk by ID from the BoltDB database.
func (b Bolt) KVLoreChunk(id string) (atlasportal.LoreChunk, error) {
	var result atlasportal.LoreChunk

	err := b.DB.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(boltLoreBucket))

		content := bkt.Get([]byte(id))
		if content == nil {
			return atlasportal.ErrLoreChunkNotFound
		}

		if err := json.Unmarshal(content, &result); err != nil {
			return fmt.Errorf("failed to unmarshal lore chunk: %w", err)
		}

		return nil
	})

	return result, err
}

// KVUpsertLoreChunks creates or updates multiple lore chunks in the BoltDB database.
// It returns an error if any database operation fails during the process.
func (b Bolt) KVUpsertLoreChunks(chunks []atlasportal.LoreChunk) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(boltLoreBucket))
		if bkt == nil {
			return fmt.Errorf("bucket not found")
		}

		for _, chunk := range chunks {
			content, err := json.Marshal(chunk)
			if err != nil {
				return fmt.Errorf("failed to marshal lore chunk: %w", err)
			}
			if err := bkt.Put([]byte(chunk.ID), content); err != nil {
				return fmt.Errorf("failed to put lore chunk: %w", err)
			}
		}

		return nil
	})
}
