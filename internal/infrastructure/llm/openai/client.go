package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hydroflow/hydroflow/internal/infrastructure/resilience"
)

// Client holds the shared transport for an OpenAI-compatible API. Generator
// and Embedder wrap it for the two endpoints the pipeline needs.
type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, apiKey, chatModel, embedModel string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		chatModel:  chatModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       resilience.NewExecutor(resilience.SingleAttemptConfig()),
	}
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateText(ctx context.Context, system, user string) (string, error) {
	return g.client.chat(ctx, system, user, false)
}

func (g *Generator) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	out, err := g.client.chat(ctx, system, user, true)
	if err != nil {
		return "", err
	}
	return extractJSONObject(out), nil
}

type Embedder struct {
	client  *Client
	limiter *rate.Limiter
}

// NewEmbedder caps embedding calls at requestsPerSecond. Bulk indexing runs
// through the same account as interactive queries, so the limiter keeps a
// knowledge-base rebuild from starving them.
func NewEmbedder(client *Client, requestsPerSecond float64) *Embedder {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Embedder{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	err := e.client.exec.Execute(ctx, "embeddings", func(ctx context.Context) error {
		return e.client.postJSON(ctx, "/v1/embeddings", request, &response, "embeddings")
	}, classifyHTTPError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embeddings", err)
	}

	vectors := make([][]float32, 0, len(response.Data))
	for _, item := range response.Data {
		vectors = append(vectors, item.Embedding)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embeddings count mismatch: sent %d texts, got %d vectors", len(texts), len(vectors))
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": user})

	request := map[string]any{
		"model":    c.chatModel,
		"messages": messages,
	}
	if jsonMode {
		request["response_format"] = map[string]string{"type": "json_object"}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	err := c.exec.Execute(ctx, "chat", func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/chat/completions", request, &response, "chat")
	}, classifyHTTPError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("chat", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
