package storage

import (
	"context"
	"fmt"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/philippgille/chromem-go"
)

// Chromem provides a vector storage implementation using the ChromeM
// database. It handles operations for storing and retrieving lore chunks
// with semantic search capabilities.
type Chromem struct {
	LoreColl *chromem.Collection

	topK int
}

// NewChromem creates a new ChromeM client with the provided parameters.
// It returns an initialized Chromem struct and any error encountered during setup.
// The dbPath parameter specifies where to persist the database, topK defines the number of
// results to return in queries, and embeddingFunc provides the vector embedding capability.
func NewChromem(dbPath string, topK int, embeddingFunc chromem.EmbeddingFunc) (Chromem, error) {
	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return Chromem{}, fmt.Errorf("failed to create chromem db: %w", err)
	}

	loreColl, err := db.GetOrCreateCollection("lore", nil, embeddingFunc)
	if err != nil {
		return Chromem{}, fmt.Errorf("failed to create lore collection: %w", err)
	}

	return Chromem{
		LoreColl: loreColl,
		topK:     topK,
	}, nil
}

// VectorQueryLore performs a semantic search over the indexed lore chunks.
// It returns the matching chunks and any error encountered during the operation.
func (c Chromem) VectorQueryLore(query string) ([]atlasportal.LoreMatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topK := c.topK
	if count := c.LoreColl.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return []atlasportal.LoreMatch{}, nil
	}

	vecRes, err := c.LoreColl.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query lore: %w", err)
	}

	res := make([]atlasportal.LoreMatch, len(vecRes))
	for i, vec := range vecRes {
		res[i] = atlasportal.LoreMatch{
			ID:      vec.ID,
			Content: vec.Content,
		}
	}

	return res, nil
}

// VectorUpsertLoreChunk creates or updates a lore chunk with a vector
// embedding based on its content. It returns an error if the database
// operation fails.
func (c Chromem) VectorUpsertLoreChunk(id, content string) error {
	doc := chromem.Document{
		ID:      id,
		Content: content,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return c.LoreColl.AddDocument(ctx, doc)
}
