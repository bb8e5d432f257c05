package atlasportal_test

import (
	"errors"
	"sync"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
)

var errSearchUnavailable = errors.New("search unavailable")

type MockSearcher struct {
	results   []atlasportal.Result
	searchErr error

	// Fail the first failCount calls before succeeding, to exercise retries.
	failCount int

	// For tracking interactions
	mu    sync.Mutex
	calls []string
}

type MockLLM struct {
	chatResponse string
	chatErr      error

	// For tracking interactions
	chatCalls [][]string
}

type MockResolveHandler struct {
	productTerm      string
	resultLimit      int
	maxRetries       int
	concurrencyCount int
	backoffDuration  time.Duration
}

type MockLoreHandler struct {
	chunks   []atlasportal.LoreChunk
	chunkErr error
}

type MockStorage struct {
	graphUpsertPieceErr error
	graphLinkSourceErr  error
	kvUpsertReportErr   error
	kvCacheResultsErr   error

	// Track calls to methods
	kvUpsertReportCalled bool

	mu sync.Mutex

	// Track graph state
	graphPieces  map[string]atlasportal.GraphPiece
	pieceSources map[string][]string

	// Track kv state
	reports map[string]atlasportal.Report
	cache   map[string][]atlasportal.Result
	chunks  map[string]atlasportal.LoreChunk

	// Track vector state
	vectorChunks map[string]string
	loreMatches  []atlasportal.LoreMatch
}

func (m *MockSearcher) Search(query string, _ int) ([]atlasportal.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	failing := m.failCount > 0
	if failing {
		m.failCount--
	}
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if failing {
		return nil, errSearchUnavailable
	}
	return m.results, nil
}

func (m *MockLLM) Chat(messages []string) (string, error) {
	m.chatCalls = append(m.chatCalls, messages)

	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatResponse, nil
}

func (m MockResolveHandler) ProductTerm() string {
	return m.productTerm
}

func (m MockResolveHandler) ResultLimit() int {
	return m.resultLimit
}

func (m MockResolveHandler) MaxRetries() int {
	return m.maxRetries
}

func (m MockResolveHandler) ConcurrencyCount() int {
	return m.concurrencyCount
}

func (m MockResolveHandler) BackoffDuration() time.Duration {
	return m.backoffDuration
}

func (m *MockLoreHandler) ChunksLore(string) ([]atlasportal.LoreChunk, error) {
	if m.chunkErr != nil {
		return nil, m.chunkErr
	}
	return m.chunks, nil
}

func (m *MockStorage) GraphPiece(name string) (atlasportal.GraphPiece, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if piece, exists := m.graphPieces[name]; exists {
		return piece, nil
	}
	return atlasportal.GraphPiece{}, atlasportal.ErrPieceNotFound
}

func (m *MockStorage) GraphUpsertPiece(piece atlasportal.GraphPiece) error {
	if m.graphUpsertPieceErr != nil {
		return m.graphUpsertPieceErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.graphPieces == nil {
		m.graphPieces = make(map[string]atlasportal.GraphPiece)
	}
	m.graphPieces[piece.Name] = piece
	return nil
}

func (m *MockStorage) GraphLinkSource(pieceName, url string) error {
	if m.graphLinkSourceErr != nil {
		return m.graphLinkSourceErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pieceSources == nil {
		m.pieceSources = make(map[string][]string)
	}
	m.pieceSources[pieceName] = append(m.pieceSources[pieceName], url)
	return nil
}

func (m *MockStorage) GraphPieceSources(pieceName string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pieceSources[pieceName], nil
}

func (m *MockStorage) VectorUpsertLoreChunk(id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vectorChunks == nil {
		m.vectorChunks = make(map[string]string)
	}
	m.vectorChunks[id] = content
	return nil
}

func (m *MockStorage) VectorQueryLore(string) ([]atlasportal.LoreMatch, error) {
	return m.loreMatches, nil
}

func (m *MockStorage) KVReport(id string) (atlasportal.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if report, exists := m.reports[id]; exists {
		return report, nil
	}
	return atlasportal.Report{}, atlasportal.ErrReportNotFound
}

func (m *MockStorage) KVUpsertReport(report atlasportal.Report) error {
	m.kvUpsertReportCalled = true
	if m.kvUpsertReportErr != nil {
		return m.kvUpsertReportErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reports == nil {
		m.reports = make(map[string]atlasportal.Report)
	}
	m.reports[report.ID] = report
	return nil
}

func (m *MockStorage) KVCachedResults(key string) ([]atlasportal.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if results, exists := m.cache[key]; exists {
		return results, nil
	}
	return nil, atlasportal.ErrCacheMiss
}

func (m *MockStorage) KVCacheResults(key string, results []atlasportal.Result) error {
	if m.kvCacheResultsErr != nil {
		return m.kvCacheResultsErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache == nil {
		m.cache = make(map[string][]atlasportal.Result)
	}
	m.cache[key] = results
	return nil
}

func (m *MockStorage) KVLoreChunk(id string) (atlasportal.LoreChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if chunk, exists := m.chunks[id]; exists {
		return chunk, nil
	}
	return atlasportal.LoreChunk{}, atlasportal.ErrLoreChunkNotFound
}

func (m *MockStorage) KVUpsertLoreChunks(chunks []atlasportal.LoreChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chunks == nil {
		m.chunks = make(map[string]atlasportal.LoreChunk)
	}
	for _, chunk := range chunks {
		m.chunks[chunk.ID] = chunk
	}
	return nil
}
