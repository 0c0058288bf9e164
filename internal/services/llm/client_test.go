package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sheetwatch/internal/config"
	"sheetwatch/internal/services"
	"sheetwatch/internal/services/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*llm.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := llm.NewClient(config.LLM{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o",
	},
		llm.WithSleeper(func(time.Duration) {}),
	)
	return client, server
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":` + encodeJSONString(content) + `},"finish_reason":"stop"}]}`
}

func encodeJSONString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

func TestCompleteTextOnlyPayload(t *testing.T) {
	var captured []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		io.WriteString(w, completionBody("LM317T"))
	})

	content, err := client.Complete(context.Background(), "Identify the vendor code.", nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "LM317T" {
		t.Fatalf("content = %q", content)
	}

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(captured, &req); err != nil {
		t.Fatalf("decode captured request: %v", err)
	}
	if req.Model != "gpt-4o" {
		t.Fatalf("model = %q", req.Model)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	var plain string
	if err := json.Unmarshal(req.Messages[0].Content, &plain); err != nil {
		t.Fatalf("expected plain string content: %v", err)
	}
}

func TestCompleteVisionPayload(t *testing.T) {
	var captured []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		io.WriteString(w, completionBody("analysis text"))
	})

	images := []string{"data:image/png;base64,AAAA", "data:image/png;base64,BBBB"}
	if _, err := client.Complete(context.Background(), "Analyze this datasheet.", images); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	var req struct {
		Messages []struct {
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL *struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(captured, &req); err != nil {
		t.Fatalf("decode captured request: %v", err)
	}
	parts := req.Messages[0].Content
	if len(parts) != 3 {
		t.Fatalf("part count = %d, want 3", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "Analyze this datasheet." {
		t.Fatalf("text part = %+v", parts[0])
	}
	for i, want := range images {
		part := parts[i+1]
		if part.Type != "image_url" || part.ImageURL == nil || part.ImageURL.URL != want {
			t.Fatalf("image part %d = %+v", i, part)
		}
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, completionBody("recovered"))
	})

	content, err := client.Complete(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "recovered" {
		t.Fatalf("content = %q", content)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("call count = %d, want 3", got)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad api key", http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), "prompt", nil)
	if !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected ErrRemoteService, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("call count = %d, want 1", got)
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "still down", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := llm.NewClient(config.LLM{APIKey: "k", BaseURL: server.URL, Model: "m"},
		llm.WithRetryMaxAttempts(2),
		llm.WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Complete(context.Background(), "prompt", nil)
	if !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected ErrRemoteService, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("call count = %d, want 2", got)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := llm.NewClient(config.LLM{Model: "m"})
	_, err := client.Complete(context.Background(), "prompt", nil)
	if !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected ErrRemoteService, got %v", err)
	}
}

func TestCompleteToleratesDeltaSchema(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[{"delta":{"content":"from delta"}}]}`)
	})
	content, err := client.Complete(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "from delta" {
		t.Fatalf("content = %q", content)
	}
}

func TestCompleteHonorsContextCancel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "retry me", http.StatusInternalServerError)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Complete(ctx, "prompt", nil)
	if err == nil {
		t.Fatal("expected error after cancel")
	}
}
