package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAIClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
	return srv, client
}

func completionResponse(content string) string {
	resp := map[string]interface{}{
		"id":    "chatcmpl-1",
		"model": "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestCompleteWithSystem(t *testing.T) {
	var gotReq openAIRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("  {\"ok\": true}  ")))
	})

	out, err := client.CompleteWithSystem(context.Background(), "sys", "user text")
	require.NoError(t, err)

	// Response is trimmed.
	assert.Equal(t, `{"ok": true}`, out)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "sys", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.InDelta(t, 0.1, gotReq.Temperature, 1e-9)
}

func TestCompleteOmitsEmptySystemMessage(t *testing.T) {
	var gotReq openAIRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionResponse("hi")))
	})

	_, err := client.Complete(context.Background(), "just user")
	require.NoError(t, err)

	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := NewOpenAIClient("")
	_, err := client.Complete(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestCompleteHTTPError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid key"}}`, http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestCompleteAPIErrorBody(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
	})

	_, err := client.Complete(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestCompleteNoChoices(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "x", "choices": []}`))
	})

	_, err := client.Complete(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion returned")
}

func TestCompleteContextCancelled(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(completionResponse("late")))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "text")
	assert.Error(t, err)
}

func TestSetGetModel(t *testing.T) {
	client := NewOpenAIClient("k")
	assert.Equal(t, "gpt-4o-mini", client.GetModel())
	client.SetModel("other")
	assert.Equal(t, "other", client.GetModel())
}
