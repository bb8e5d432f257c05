package atlasportal

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Searcher defines the interface for external web search operations.
// Implementations issue a single keyword query and return up to limit
// results.
type Searcher interface {
	// Search sends the query to the search backend and returns the matching
	// results. A limit of 0 means the backend's default result count.
	Search(query string, limit int) ([]Result, error)
}

// LLM defines the interface for chat model operations.
// A message with an even index is guaranteed to be sent by the user, while
// the odd index is sent by the assistant.
type LLM interface {
	Chat(messages []string) (string, error)
}

// GraphStorage defines the interface for the piece provenance graph.
// It provides methods to record resolved pieces and the source URLs
// they were found at.
type GraphStorage interface {
	GraphPiece(name string) (GraphPiece, error)
	GraphUpsertPiece(piece GraphPiece) error

	GraphLinkSource(pieceName, url string) error
	GraphPieceSources(pieceName string) ([]string, error)
}

// VectorStorage defines the interface for the lore index.
// It provides methods to store lore chunks and query them by
// semantic similarity, which backs the offline search fallback.
type VectorStorage interface {
	VectorUpsertLoreChunk(id, content string) error
	VectorQueryLore(query string) ([]LoreMatch, error)
}

// KeyValueStorage defines the interface for key-value storage operations.
// It holds resolution reports, cached search results, and raw lore chunks.
type KeyValueStorage interface {
	KVReport(id string) (Report, error)
	KVUpsertReport(report Report) error

	KVCachedResults(key string) ([]Result, error)
	KVCacheResults(key string, results []Result) error

	KVLoreChunk(id string) (LoreChunk, error)
	KVUpsertLoreChunks(chunks []LoreChunk) error
}

// Storage is a composite interface that combines GraphStorage,
// VectorStorage, and KeyValueStorage interfaces to provide
// comprehensive data storage capabilities.
type Storage interface {
	GraphStorage
	VectorStorage
	KeyValueStorage
}

// Result represents a single search result returned by a Searcher.
type Result struct {
	Title string
	URL   string
}

// GraphPiece represents a resolved piece in the provenance graph.
type GraphPiece struct {
	Name      string
	Category  string
	Status    string
	CreatedAt time.Time
}

// LoreMatch represents a lore chunk returned by a vector query.
type LoreMatch struct {
	ID      string
	Content string
}

// LoreChunk represents a portion of an indexed lore document with metadata.
type LoreChunk struct {
	ID         string
	Content    string
	TokenSize  int
	OrderIndex int
}

var (
	// ErrPieceNotFound is returned when a piece is not found in the graph storage.
	ErrPieceNotFound = errors.New("piece not found")
	// ErrReportNotFound is returned when a resolution report is not found in the storage.
	ErrReportNotFound = errors.New("report not found")
	// ErrCacheMiss is returned when no cached search results exist for a query key.
	ErrCacheMiss = errors.New("cache miss")
	// ErrLoreChunkNotFound is returned when a lore chunk is not found in the storage.
	ErrLoreChunkNotFound = errors.New("lore chunk not found")
)

func promptTemplate(name, templ string, data any) (string, error) {
	buf := strings.Builder{}
	tmpl := template.New(name).Funcs(template.FuncMap{
		"join": strings.Join,
	})
	tmpl = template.Must(tmpl.Parse(templ))
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func appendIfUnique(slice []string, item string) []string {
	for _, ele := range slice {
		if ele == item {
			return slice
		}
	}
	return append(slice, item)
}

func (c LoreChunk) genID(docID string) string {
	return fmt.Sprintf("%s-chunk-%d", docID, c.OrderIndex)
}
