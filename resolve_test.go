package atlasportal_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/bridgeworld/atlas-portal/internal"
)

func TestResolve(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Successful resolution", func(t *testing.T) {
		searcher := &MockSearcher{
			results: []atlasportal.Result{
				{Title: "Atlas Mine docs", URL: "https://docs.example.com/atlas-mine"},
				{Title: "Atlas Mine mirror", URL: "https://mirror.example.com/atlas-mine"},
			},
		}
		storage := &MockStorage{}
		handler := MockResolveHandler{productTerm: "Bridgeworld Atlas Mines"}

		report, err := atlasportal.Resolve(
			[]string{"Atlas Mine staking contract address"},
			handler, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if report.ID == "" {
			t.Error("Expected report to have an ID")
		}
		if len(report.Pieces) != 1 {
			t.Fatalf("Expected 1 piece, got %d", len(report.Pieces))
		}

		piece := report.Pieces[0]
		if piece.Status != atlasportal.StatusFound {
			t.Errorf("Expected status %s, got %s", atlasportal.StatusFound, piece.Status)
		}
		if piece.Category != atlasportal.CategoryContract {
			t.Errorf("Expected category %s, got %s", atlasportal.CategoryContract, piece.Category)
		}
		if piece.ID != "atlas-mine-staking-contract-address" {
			t.Errorf("Unexpected piece ID %q", piece.ID)
		}
		if len(piece.Sources) != 2 {
			t.Errorf("Expected 2 sources, got %d", len(piece.Sources))
		}

		if !storage.kvUpsertReportCalled {
			t.Error("Expected KVUpsertReport to be called")
		}

		// The piece and its source links must land in the provenance graph.
		graphPiece, err := storage.GraphPiece("Atlas Mine staking contract address")
		if err != nil {
			t.Fatalf("Expected graph piece to be stored, got %v", err)
		}
		if graphPiece.Status != string(atlasportal.StatusFound) {
			t.Errorf("Expected graph status %s, got %s", atlasportal.StatusFound, graphPiece.Status)
		}
		sources, _ := storage.GraphPieceSources("Atlas Mine staking contract address")
		if len(sources) != 2 {
			t.Errorf("Expected 2 linked sources, got %d", len(sources))
		}

		if len(searcher.calls) != 1 {
			t.Fatalf("Expected 1 search call, got %d", len(searcher.calls))
		}
		wantQuery := "Bridgeworld Atlas Mines Atlas Mine staking contract address"
		if searcher.calls[0] != wantQuery {
			t.Errorf("Expected query %q, got %q", wantQuery, searcher.calls[0])
		}
	})

	t.Run("Empty results mark pieces missing", func(t *testing.T) {
		searcher := &MockSearcher{results: []atlasportal.Result{}}
		storage := &MockStorage{}

		report, err := atlasportal.Resolve(atlasportal.DefaultMissingPieces,
			MockResolveHandler{}, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(report.Pieces) != len(atlasportal.DefaultMissingPieces) {
			t.Fatalf("Expected %d pieces, got %d",
				len(atlasportal.DefaultMissingPieces), len(report.Pieces))
		}
		for _, piece := range report.Pieces {
			if piece.Status != atlasportal.StatusMissing {
				t.Errorf("Expected piece %q to be missing, got %s", piece.Name, piece.Status)
			}
			if len(piece.Sources) != 0 {
				t.Errorf("Expected piece %q to have no sources, got %d", piece.Name, len(piece.Sources))
			}
		}
	})

	t.Run("Pieces keep input order under concurrency", func(t *testing.T) {
		searcher := &MockSearcher{
			results: []atlasportal.Result{{Title: "hit", URL: "https://example.com"}},
		}
		storage := &MockStorage{}
		handler := MockResolveHandler{concurrencyCount: 4}

		report, err := atlasportal.Resolve(atlasportal.DefaultMissingPieces,
			handler, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		for i, name := range atlasportal.DefaultMissingPieces {
			if report.Pieces[i].Name != name {
				t.Errorf("Expected piece %d to be %q, got %q", i, name, report.Pieces[i].Name)
			}
		}
	})

	t.Run("Duplicate source URLs are deduplicated", func(t *testing.T) {
		searcher := &MockSearcher{
			results: []atlasportal.Result{
				{Title: "first", URL: "https://example.com/page"},
				{Title: "second", URL: "https://example.com/page"},
			},
		}
		storage := &MockStorage{}

		report, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			MockResolveHandler{}, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(report.Pieces[0].Sources) != 1 {
			t.Errorf("Expected 1 unique source, got %d", len(report.Pieces[0].Sources))
		}
	})

	t.Run("Cache hit skips the searcher", func(t *testing.T) {
		cached := []atlasportal.Result{{Title: "cached", URL: "https://cache.example.com"}}
		storage := &MockStorage{
			cache: map[string][]atlasportal.Result{
				internal.HashQuery("Guardian path bonus table"): cached,
			},
		}
		searcher := &MockSearcher{searchErr: errSearchUnavailable}

		// Empty product term keeps the query equal to the piece name.
		report, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			MockResolveHandler{}, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(searcher.calls) != 0 {
			t.Errorf("Expected no search calls, got %d", len(searcher.calls))
		}
		if report.Pieces[0].Status != atlasportal.StatusFound {
			t.Errorf("Expected cached piece to be found, got %s", report.Pieces[0].Status)
		}
		if len(report.Pieces[0].Sources) != 1 ||
			report.Pieces[0].Sources[0] != "https://cache.example.com" {
			t.Errorf("Expected cached source, got %v", report.Pieces[0].Sources)
		}
	})

	t.Run("Search results are cached", func(t *testing.T) {
		searcher := &MockSearcher{
			results: []atlasportal.Result{{Title: "hit", URL: "https://example.com"}},
		}
		storage := &MockStorage{}

		_, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			MockResolveHandler{}, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		key := internal.HashQuery("Guardian path bonus table")
		if _, err := storage.KVCachedResults(key); err != nil {
			t.Errorf("Expected results to be cached, got %v", err)
		}
	})

	t.Run("Search failure propagates without retries", func(t *testing.T) {
		searcher := &MockSearcher{searchErr: errSearchUnavailable}
		storage := &MockStorage{}

		_, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			MockResolveHandler{}, searcher, storage, logger)
		if err == nil {
			t.Fatal("Expected an error")
		}
		if !errors.Is(err, errSearchUnavailable) {
			t.Errorf("Expected wrapped search error, got %v", err)
		}
		if len(searcher.calls) != 1 {
			t.Errorf("Expected a single search call, got %d", len(searcher.calls))
		}
	})

	t.Run("Transient failures are retried", func(t *testing.T) {
		searcher := &MockSearcher{
			failCount: 2,
			results:   []atlasportal.Result{{Title: "hit", URL: "https://example.com"}},
		}
		storage := &MockStorage{}
		handler := MockResolveHandler{maxRetries: 3}

		report, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			handler, searcher, storage, logger)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(searcher.calls) != 3 {
			t.Errorf("Expected 3 search calls, got %d", len(searcher.calls))
		}
		if report.Pieces[0].Status != atlasportal.StatusFound {
			t.Errorf("Expected piece to be found after retries, got %s", report.Pieces[0].Status)
		}
	})

	t.Run("Retries exhausted", func(t *testing.T) {
		searcher := &MockSearcher{failCount: 3}
		storage := &MockStorage{}
		handler := MockResolveHandler{maxRetries: 2}

		_, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			handler, searcher, storage, logger)
		if err == nil {
			t.Fatal("Expected an error")
		}
		if len(searcher.calls) != 3 {
			t.Errorf("Expected 3 search calls, got %d", len(searcher.calls))
		}
	})

	t.Run("Report upsert failure propagates", func(t *testing.T) {
		searcher := &MockSearcher{results: []atlasportal.Result{}}
		storage := &MockStorage{kvUpsertReportErr: errors.New("disk full")}

		_, err := atlasportal.Resolve([]string{"Guardian path bonus table"},
			MockResolveHandler{}, searcher, storage, logger)
		if err == nil {
			t.Fatal("Expected an error")
		}
	})
}
