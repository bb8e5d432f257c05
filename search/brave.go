package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
)

// Brave provides an implementation of the Searcher interface backed by the
// Brave Web Search API.
type Brave struct {
	apiKey string
	params Parameters

	client *http.Client
	logger *slog.Logger
}

type braveSearchResponse struct {
	Web struct {
		Results []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"results"`
	} `json:"web"`
}

const braveAPIEndpoint = "https://api.search.brave.com/res/v1"

// NewBrave creates a new Brave instance with the specified API key. It
// initializes an HTTP client for API communication and returns a configured
// Brave instance ready for search queries.
func NewBrave(apiKey string, params Parameters, logger *slog.Logger) Brave {
	return Brave{
		apiKey: apiKey,
		params: params,
		client: &http.Client{},
		logger: logger.With(slog.String("module", "brave")),
	}
}

// Search sends a query to the Brave Web Search API and returns the matching
// results, at most limit of them.
func (b Brave) Search(query string, limit int) ([]atlasportal.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := b.doRequest(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed braveSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	results := make([]atlasportal.Result, 0, len(parsed.Web.Results))
	for _, res := range parsed.Web.Results {
		results = append(results, atlasportal.Result{
			Title: res.Title,
			URL:   res.URL,
		})
	}

	b.logger.Debug("Search done", "query", query, "results", len(results))

	return results, nil
}

func (b Brave) doRequest(ctx context.Context, query string, limit int) (*http.Response, error) {
	values := url.Values{}
	values.Set("q", query)
	if limit > 0 {
		values.Set("count", strconv.Itoa(limit))
	}
	if b.params.Country != nil {
		values.Set("country", *b.params.Country)
	}
	if b.params.SearchLang != nil {
		values.Set("search_lang", *b.params.SearchLang)
	}
	if b.params.SafeSearch != nil {
		values.Set("safesearch", *b.params.SafeSearch)
	}
	if b.params.Freshness != nil {
		values.Set("freshness", *b.params.Freshness)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.endpoint()+"/web/search?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	return b.client.Do(req)
}

func (b Brave) endpoint() string {
	if b.params.Endpoint != nil {
		return *b.params.Endpoint
	}
	return braveAPIEndpoint
}
