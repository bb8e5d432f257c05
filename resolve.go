package atlasportal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bridgeworld/atlas-portal/internal"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ResolveHandler provides the tunables for a resolution pass.
type ResolveHandler interface {
	// ProductTerm returns the fixed product term prefixed to every piece
	// name before it is sent to the search backend.
	ProductTerm() string
	// ResultLimit returns the maximum number of results requested per query.
	ResultLimit() int
	// MaxRetries determines how many times a failed search call is retried
	// before the failure propagates. Zero means a failure propagates
	// immediately.
	MaxRetries() int
	// ConcurrencyCount determines the number of concurrent search requests.
	ConcurrencyCount() int
	// BackoffDuration determines the delay between search retries.
	BackoffDuration() time.Duration
}

// Report holds the outcome of a single resolution pass over a list of piece
// names. Pieces keep the order of the input names.
type Report struct {
	ID        string
	CreatedAt time.Time
	Pieces    []Piece
}

// Resolve issues one search query per piece name and records whether results
// were found. Each piece is tagged with a category inferred from its name and
// a found/missing status. Results are cached in the key-value storage keyed
// by a hash of the query, and found pieces are written to the provenance
// graph together with their source URLs. The finished report is persisted
// before it is returned.
func Resolve(
	names []string,
	handler ResolveHandler,
	searcher Searcher,
	storage Storage,
	logger *slog.Logger,
) (Report, error) {
	logger = logger.With(
		slog.String("package", "atlasportal"),
		slog.String("function", "Resolve"),
	)

	concurrencyCount := handler.ConcurrencyCount()
	if concurrencyCount == 0 {
		concurrencyCount = 1
	}

	logger.Info("Resolving pieces", "count", len(names), "concurrency", concurrencyCount)

	pieces := make([]Piece, len(names))

	eg := new(errgroup.Group)
	// Semaphore to limit concurrent search calls
	sem := make(chan struct{}, concurrencyCount)

	for i, name := range names {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			piece, err := resolvePiece(name, handler, searcher, storage, logger)
			if err != nil {
				return fmt.Errorf("failed to resolve piece %q: %w", name, err)
			}
			pieces[i] = piece

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Pieces:    pieces,
	}

	if err := storage.KVUpsertReport(report); err != nil {
		return Report{}, fmt.Errorf("failed to upsert report: %w", err)
	}

	logger.Info("Resolved pieces", "report", report.ID)

	return report, nil
}

func resolvePiece(
	name string,
	handler ResolveHandler,
	searcher Searcher,
	storage Storage,
	logger *slog.Logger,
) (Piece, error) {
	query := name
	if term := handler.ProductTerm(); term != "" {
		query = term + " " + name
	}

	results, err := searchWithCache(query, handler, searcher, storage, logger)
	if err != nil {
		return Piece{}, err
	}

	status := StatusMissing
	sources := []string{}
	for _, res := range results {
		sources = appendIfUnique(sources, res.URL)
	}
	if len(results) > 0 {
		status = StatusFound
	}

	piece := Piece{
		ID:       PieceID(name),
		Category: CategoryForName(name),
		Name:     name,
		Status:   status,
		Sources:  sources,
	}

	logger.Debug("Resolved piece", "name", name, "category", piece.Category, "status", status)

	if err := recordProvenance(piece, storage); err != nil {
		return Piece{}, err
	}

	return piece, nil
}

func searchWithCache(
	query string,
	handler ResolveHandler,
	searcher Searcher,
	storage Storage,
	logger *slog.Logger,
) ([]Result, error) {
	key := internal.HashQuery(query)

	cached, err := storage.KVCachedResults(key)
	if err == nil {
		logger.Debug("Cache hit", "query", query)
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, fmt.Errorf("failed to read cached results: %w", err)
	}

	retry := 0

	for {
		// If this is not a first attempt, add backoff delay.
		if retry > 0 {
			time.Sleep(handler.BackoffDuration())
		}

		results, err := searcher.Search(query, handler.ResultLimit())
		if err != nil {
			if retry >= handler.MaxRetries() {
				return nil, fmt.Errorf("failed to search: %w", err)
			}
			retry++
			logger.Warn("Retry search", "retry", retry, "error", err)
			continue
		}

		if err := storage.KVCacheResults(key, results); err != nil {
			return nil, fmt.Errorf("failed to cache results: %w", err)
		}

		return results, nil
	}
}

func recordProvenance(piece Piece, storage Storage) error {
	if err := storage.GraphUpsertPiece(GraphPiece{
		Name:      piece.Name,
		Category:  string(piece.Category),
		Status:    string(piece.Status),
		CreatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to upsert graph piece: %w", err)
	}

	for _, url := range piece.Sources {
		if err := storage.GraphLinkSource(piece.Name, url); err != nil {
			return fmt.Errorf("failed to link source: %w", err)
		}
	}

	return nil
}
