package atlasportal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// LoreHandler provides the chunking strategy for lore documents.
type LoreHandler interface {
	// ChunksLore splits a lore document's content into smaller chunks,
	// without assigning IDs (IDs are generated in IndexLore).
	ChunksLore(content string) ([]LoreChunk, error)
}

// IndexLore walks a directory of markdown lore documents, chunks each file,
// and upserts the chunks into the vector and key-value storages so the local
// searcher can serve them. Files matched by a .gitignore at the directory
// root are skipped.
func IndexLore(dir string, handler LoreHandler, storage Storage, logger *slog.Logger) error {
	logger = logger.With(
		slog.String("package", "atlasportal"),
		slog.String("function", "IndexLore"),
	)

	matcher, err := loadIgnoreMatcher(dir)
	if err != nil {
		return err
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			logger.Debug("Skipping ignored lore file", "path", rel)
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read lore file: %w", err)
		}

		if err := indexLoreDocument(rel, string(content), handler, storage, logger); err != nil {
			return fmt.Errorf("failed to index lore file %q: %w", rel, err)
		}

		return nil
	})
}

func indexLoreDocument(
	relPath, content string,
	handler LoreHandler,
	storage Storage,
	logger *slog.Logger,
) error {
	chunks, err := handler.ChunksLore(content)
	if err != nil {
		return fmt.Errorf("failed to chunk lore: %w", err)
	}

	// The chunks returned from ChunksLore don't have an ID, generate one
	// here based on the document path and the order of the chunks.
	docID := PieceID(relPath)
	chunksWithID := make([]LoreChunk, len(chunks))
	for i, chunk := range chunks {
		chunksWithID[i] = LoreChunk{
			ID:         chunk.genID(docID),
			Content:    chunk.Content,
			TokenSize:  chunk.TokenSize,
			OrderIndex: chunk.OrderIndex,
		}
	}

	logger.Info("Upserting lore chunks", "document", relPath, "count", len(chunksWithID))

	if err := storage.KVUpsertLoreChunks(chunksWithID); err != nil {
		return fmt.Errorf("failed to upsert lore chunks kv: %w", err)
	}

	for _, chunk := range chunksWithID {
		if err := storage.VectorUpsertLoreChunk(chunk.ID, chunk.Content); err != nil {
			return fmt.Errorf("failed to upsert lore chunk vector: %w", err)
		}
	}

	return nil
}

func loadIgnoreMatcher(dir string) (*ignore.GitIgnore, error) {
	ignorePath := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(ignorePath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat .gitignore: %w", err)
	}

	matcher, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("error compiling .gitignore at %s: %w", ignorePath, err)
	}

	return matcher, nil
}
