package handler

import (
	"fmt"
	"math"
	"strings"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/bridgeworld/atlas-portal/internal"
)

// Default implements both the ResolveHandler and LoreHandler interfaces for
// portal operations. It provides configurable handling for piece resolution
// and lore chunking with sensible defaults.
type Default struct {
	ProductSearchTerm string
	SearchResultLimit int

	ChunkMaxTokenSize     int
	ChunkOverlapTokenSize int

	Config ResolverConfig
}

const (
	defaultProductTerm = "Bridgeworld Atlas Mines"
	defaultResultLimit = 5

	defaultChunkMaxTokenSize     = 1200
	defaultChunkOverlapTokenSize = 100
)

// ProductTerm returns the product term prefixed to every search query.
func (d Default) ProductTerm() string {
	if d.ProductSearchTerm == "" {
		return defaultProductTerm
	}
	return d.ProductSearchTerm
}

// ResultLimit returns the maximum number of results requested per query.
func (d Default) ResultLimit() int {
	if d.SearchResultLimit == 0 {
		return defaultResultLimit
	}
	return d.SearchResultLimit
}

// MaxRetries returns how many times a failed search call is retried. The
// zero default means a failure propagates immediately.
func (d Default) MaxRetries() int {
	return d.Config.MaxRetries
}

// ConcurrencyCount returns the number of concurrent search requests. The
// zero default resolves pieces one at a time.
func (d Default) ConcurrencyCount() int {
	return d.Config.ConcurrencyCount
}

// BackoffDuration returns the delay between search retries.
func (d Default) BackoffDuration() time.Duration {
	return d.Config.BackoffDuration
}

// ChunksLore splits a lore document's content into overlapping chunks of
// text. It uses tiktoken to encode and decode tokens, and returns an array
// of LoreChunk objects with appropriate metadata. It returns an error if
// encoding or decoding fails.
func (d Default) ChunksLore(content string) ([]atlasportal.LoreChunk, error) {
	tokenIDs, err := internal.EncodeStringByTiktoken(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string: %w", err)
	}

	maxTokenSize := d.ChunkMaxTokenSize
	if maxTokenSize == 0 {
		maxTokenSize = defaultChunkMaxTokenSize
	}
	overlapTokenSize := d.ChunkOverlapTokenSize
	if overlapTokenSize == 0 {
		overlapTokenSize = defaultChunkOverlapTokenSize
	}

	results := []atlasportal.LoreChunk{}
	for index, start := 0, 0; start < len(tokenIDs); index, start = index+1, start+maxTokenSize-overlapTokenSize {
		end := start + maxTokenSize
		if end > len(tokenIDs) {
			end = len(tokenIDs)
		}

		chunkContent, err := internal.DecodeTokensByTiktoken(tokenIDs[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to decode tokens: %w", err)
		}

		results = append(results, atlasportal.LoreChunk{
			Content:    strings.TrimSpace(chunkContent),
			TokenSize:  int(math.Min(float64(maxTokenSize), float64(len(tokenIDs)-start))),
			OrderIndex: index,
		})
	}

	return results, nil
}
