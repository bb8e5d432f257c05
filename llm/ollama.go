package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the LLM interface for chatting with
// models served by an Ollama instance. Streamed completions are collected
// into a single response.
type Ollama struct {
	model  string
	params Parameters

	client *api.Client
	logger *slog.Logger
}

// NewOllama creates a new Ollama instance for the given server host and model
// name. It returns an error if the host is not a valid URL.
func NewOllama(host, model string, params Parameters, logger *slog.Logger) (Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return Ollama{}, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return Ollama{
		model:  model,
		params: params,
		client: api.NewClient(u, &http.Client{}),
		logger: logger.With(slog.String("module", "ollama")),
	}, nil
}

// Chat sends a chat message to the Ollama API.
func (o Ollama) Chat(messages []string) (string, error) {
	req := api.ChatRequest{
		Model:    o.model,
		Messages: make([]api.Message, len(messages)),
		Options:  o.options(),
	}
	for i, msg := range messages {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		req.Messages[i] = api.Message{
			Role:    role,
			Content: msg,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var result strings.Builder

	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		result.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	o.logger.Debug("Chat done", "model", o.model, "responseLength", result.Len())

	return result.String(), nil
}

func (o Ollama) options() map[string]any {
	opts := make(map[string]any)

	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.Seed != nil {
		opts["seed"] = *o.params.Seed
	}
	if o.params.Stop != nil {
		opts["stop"] = o.params.Stop
	}
	if o.params.TopK != nil {
		opts["top_k"] = *o.params.TopK
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	if o.params.MinP != nil {
		opts["min_p"] = *o.params.MinP
	}

	return opts
}
