package storage

import (
	"context"
	"fmt"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// Milvus provides a vector storage implementation using Milvus database.
// It handles operations for storing and retrieving lore chunks with
// semantic search capabilities.
//
// The Close() method should be called when done to properly release resources.
type Milvus struct {
	client        *milvusclient.Client
	embeddingFunc EmbeddingFunc
	vectorDim     int
	topK          int
}

const (
	milvusLoreCollectionName = "lore"

	cosineThreshold = 0.2
)

// NewMilvus creates a new Milvus client with the provided parameters.
// It returns an initialized Milvus struct and any error encountered during setup.
func NewMilvus(config *milvusclient.ClientConfig, topK, vectorDim int, embeddingFunc EmbeddingFunc) (Milvus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to Milvus
	c, err := milvusclient.New(ctx, config)
	if err != nil {
		return Milvus{}, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	m := Milvus{
		client:        c,
		embeddingFunc: embeddingFunc,
		vectorDim:     vectorDim,
		topK:          topK,
	}

	if err := m.createLoreCollection(ctx); err != nil {
		return Milvus{}, err
	}

	return m, nil
}

// VectorQueryLore performs a semantic search over the indexed lore chunks.
func (m Milvus) VectorQueryLore(query string) ([]atlasportal.LoreMatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	vector, err := m.embeddingFunc(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding for query: %w", err)
	}
	vectors := []entity.Vector{entity.FloatVector(vector)}

	annParam := index.NewCustomAnnParam()
	annParam.WithRadius(cosineThreshold)
	opt := milvusclient.
		NewSearchOption(milvusLoreCollectionName, m.topK, vectors).
		WithAnnParam(annParam)
	searchResult, err := m.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to query lore: %w", err)
	}

	results := make([]atlasportal.LoreMatch, 0, m.topK)
	for _, result := range searchResult {
		for i := 0; i < result.ResultCount; i++ {
			chunkID, err := result.GetColumn("chunk_id").Get(i)
			if err != nil {
				return nil, fmt.Errorf("failed to get chunk id from result: %w", err)
			}
			chunkIDStr, ok := chunkID.(string)
			if !ok {
				return nil, fmt.Errorf("chunk id not string")
			}

			content, err := result.GetColumn("content").Get(i)
			if err != nil {
				return nil, fmt.Errorf("failed to get content from result: %w", err)
			}
			contentStr, ok := content.(string)
			if !ok {
				return nil, fmt.Errorf("content not string")
			}

			results = append(results, atlasportal.LoreMatch{
				ID:      chunkIDStr,
				Content: contentStr,
			})
		}
	}

	return results, nil
}

// VectorUpsertLoreChunk creates or updates a lore chunk with a vector
// embedding based on its content.
func (m Milvus) VectorUpsertLoreChunk(id, content string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	vector, err := m.embeddingFunc(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding for lore chunk: %w", err)
	}

	opt := milvusclient.NewColumnBasedInsertOption(milvusLoreCollectionName).
		WithVarcharColumn("id", []string{uuid.New().String()}).
		WithVarcharColumn("chunk_id", []string{id}).
		WithVarcharColumn("content", []string{content}).
		WithFloatVectorColumn("vector", m.vectorDim, [][]float32{vector})
	_, err = m.client.Upsert(ctx, opt)
	if err != nil {
		return fmt.Errorf("failed to upsert lore chunk: %w", err)
	}

	return nil
}

// Close closes the connection to Milvus.
func (m Milvus) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Close(ctx)
	}
	return nil
}

func (m Milvus) createLoreCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(milvusLoreCollectionName))
	if err != nil {
		return fmt.Errorf("failed to check if lore collection exists: %w", err)
	}

	if has {
		return nil
	}

	err = m.client.CreateCollection(ctx,
		milvusclient.SimpleCreateCollectionOptions(milvusLoreCollectionName, int64(m.vectorDim)).
			WithVarcharPK(true, 64))
	if err != nil {
		return fmt.Errorf("failed to create lore collection: %w", err)
	}

	return nil
}
