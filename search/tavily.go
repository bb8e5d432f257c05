package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
)

// Tavily provides an implementation of the Searcher interface backed by the
// Tavily search API.
type Tavily struct {
	apiKey string
	params Parameters

	client *http.Client
	logger *slog.Logger
}

type tavilySearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`

	SearchDepth *string `json:"search_depth,omitempty"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

const tavilyAPIEndpoint = "https://api.tavily.com"

// NewTavily creates a new Tavily instance with the specified API key. It
// initializes an HTTP client for API communication and returns a configured
// Tavily instance ready for search queries.
func NewTavily(apiKey string, params Parameters, logger *slog.Logger) Tavily {
	return Tavily{
		apiKey: apiKey,
		params: params,
		client: &http.Client{},
		logger: logger.With(slog.String("module", "tavily")),
	}
}

// Search sends a query to the Tavily search API and returns the matching
// results, at most limit of them.
func (t Tavily) Search(query string, limit int) ([]atlasportal.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := t.doRequest(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed tavilySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	results := make([]atlasportal.Result, 0, len(parsed.Results))
	for _, res := range parsed.Results {
		results = append(results, atlasportal.Result{
			Title: res.Title,
			URL:   res.URL,
		})
	}

	t.logger.Debug("Search done", "query", query, "results", len(results))

	return results, nil
}

func (t Tavily) doRequest(ctx context.Context, query string, limit int) (*http.Response, error) {
	reqBody := tavilySearchRequest{
		Query:       query,
		MaxResults:  limit,
		SearchDepth: t.params.SearchDepth,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.endpoint()+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	return t.client.Do(req)
}

func (t Tavily) endpoint() string {
	if t.params.Endpoint != nil {
		return *t.params.Endpoint
	}
	return tavilyAPIEndpoint
}
