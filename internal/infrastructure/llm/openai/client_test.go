package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

func TestGenerateJSONRequestsJSONMode(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"prefix {\"parameters\":{\"ph\":7.2}} suffix"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "key", "chat-model", "embed-model")
	gen := NewGenerator(client)
	out, err := gen.GenerateJSON(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}

	format, ok := captured["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("expected json_object response_format, got %v", captured["response_format"])
	}
	if out != `{"parameters":{"ph":7.2}}` {
		t.Fatalf("expected bare JSON object, got %q", out)
	}
}

func TestGenerateTextSendsSystemAndUserMessages(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  answer text  "}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "key", "chat-model", "embed-model")
	gen := NewGenerator(client)
	out, err := gen.GenerateText(context.Background(), "you are an engineer", "design a system")
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if out != "answer text" {
		t.Fatalf("expected trimmed content, got %q", out)
	}

	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if _, ok := captured["response_format"]; ok {
		t.Fatalf("plain text call must not request a response_format")
	}
}

func TestEmbedReturnsVectorsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,0]},{"embedding":[0,1]}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "key", "chat-model", "embed-model")
	embedder := NewEmbedder(client, 100)
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedWrapsRetryableStatusAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "key", "chat-model", "embed-model")
	embedder := NewEmbedder(client, 100)
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
