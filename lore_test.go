package atlasportal_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	atlasportal "github.com/bridgeworld/atlas-portal"
)

func writeLoreFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create lore dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write lore file: %v", err)
	}
}

func TestIndexLore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Indexes markdown documents", func(t *testing.T) {
		dir := t.TempDir()
		writeLoreFile(t, dir, "founding.md", "In the beginning there was MAGIC.")
		writeLoreFile(t, dir, "notes.txt", "not lore")

		handler := &MockLoreHandler{
			chunks: []atlasportal.LoreChunk{
				{Content: "In the beginning", TokenSize: 4, OrderIndex: 0},
				{Content: "there was MAGIC.", TokenSize: 4, OrderIndex: 1},
			},
		}
		storage := &MockStorage{}

		if err := atlasportal.IndexLore(dir, handler, storage, logger); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		// Chunk IDs derive from the document path and the chunk order.
		chunk, err := storage.KVLoreChunk("founding-md-chunk-0")
		if err != nil {
			t.Fatalf("Expected first chunk to be stored, got %v", err)
		}
		if chunk.Content != "In the beginning" {
			t.Errorf("Unexpected chunk content %q", chunk.Content)
		}
		if _, err := storage.KVLoreChunk("founding-md-chunk-1"); err != nil {
			t.Errorf("Expected second chunk to be stored, got %v", err)
		}

		if len(storage.vectorChunks) != 2 {
			t.Errorf("Expected 2 vector chunks, got %d", len(storage.vectorChunks))
		}
		if _, exists := storage.vectorChunks["notes-txt-chunk-0"]; exists {
			t.Error("Expected non-markdown files to be skipped")
		}
	})

	t.Run("Honors gitignore", func(t *testing.T) {
		dir := t.TempDir()
		writeLoreFile(t, dir, ".gitignore", "drafts/\n")
		writeLoreFile(t, dir, "founding.md", "kept")
		writeLoreFile(t, dir, filepath.Join("drafts", "unfinished.md"), "skipped")

		handler := &MockLoreHandler{
			chunks: []atlasportal.LoreChunk{
				{Content: "chunk", TokenSize: 1, OrderIndex: 0},
			},
		}
		storage := &MockStorage{}

		if err := atlasportal.IndexLore(dir, handler, storage, logger); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if _, err := storage.KVLoreChunk("founding-md-chunk-0"); err != nil {
			t.Errorf("Expected kept document to be indexed, got %v", err)
		}
		if _, err := storage.KVLoreChunk("drafts-unfinished-md-chunk-0"); err == nil {
			t.Error("Expected ignored document to be skipped")
		}
	})

	t.Run("Chunking failure propagates", func(t *testing.T) {
		dir := t.TempDir()
		writeLoreFile(t, dir, "founding.md", "content")

		handler := &MockLoreHandler{chunkErr: errors.New("tokenizer broke")}
		storage := &MockStorage{}

		if err := atlasportal.IndexLore(dir, handler, storage, logger); err == nil {
			t.Fatal("Expected an error")
		}
	})
}
