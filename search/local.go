package search

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	atlasportal "github.com/bridgeworld/atlas-portal"
)

// Local provides an implementation of the Searcher interface backed by the
// indexed lore in a vector storage. It serves as an offline fallback when no
// web search API is configured: results carry a lore:// URL naming the
// matched chunk.
type Local struct {
	storage atlasportal.VectorStorage
	logger  *slog.Logger
}

// NewLocal creates a new Local instance on top of the given vector storage.
func NewLocal(storage atlasportal.VectorStorage, logger *slog.Logger) Local {
	return Local{
		storage: storage,
		logger:  logger.With(slog.String("module", "local")),
	}
}

// Search queries the lore index and returns the matching chunks as results,
// at most limit of them.
func (l Local) Search(query string, limit int) ([]atlasportal.Result, error) {
	matches, err := l.storage.VectorQueryLore(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lore: %w", err)
	}

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]atlasportal.Result, len(matches))
	for i, match := range matches {
		results[i] = atlasportal.Result{
			Title: truncateTitle(match.Content),
			URL:   "lore://" + match.ID,
		}
	}

	l.logger.Debug("Search done", "query", query, "results", len(results))

	return results, nil
}

const maxTitleBytes = 80

// truncateTitle caps a chunk's content at maxTitleBytes without splitting a
// multi-byte rune.
func truncateTitle(content string) string {
	if len(content) <= maxTitleBytes {
		return content
	}
	cut := maxTitleBytes
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
