package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatClientComplete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"name\":\"X\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewCompatClient("test-key", srv.URL)
	text, err := c.Complete(context.Background(), Request{
		System:      "sys",
		User:        "usr",
		Model:       "deepseek-chat",
		Temperature: 0.7,
		MaxTokens:   3000,
		JSONOnly:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"X"}`, text)

	assert.Equal(t, "deepseek-chat", gotBody["model"])
	assert.Equal(t, 0.7, gotBody["temperature"])
	assert.Equal(t, float64(3000), gotBody["max_tokens"])
	rf, _ := gotBody["response_format"].(map[string]any)
	require.NotNil(t, rf)
	assert.Equal(t, "json_object", rf["type"])
	msgs, _ := gotBody["messages"].([]any)
	require.Len(t, msgs, 2)
}

func TestCompatClientFailureClassification(t *testing.T) {
	tests := []struct {
		status int
		want   FailureKind
	}{
		{401, FailAuth},
		{403, FailAuth},
		{429, FailQuota},
		{408, FailTimeout},
		{504, FailTimeout},
		{500, FailServiceUnavailable},
		{503, FailServiceUnavailable},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewCompatClient("k", srv.URL)
		_, err := c.Complete(context.Background(), Request{Model: "m"})
		srv.Close()

		var llmErr *Error
		require.ErrorAs(t, err, &llmErr, "status %d", tt.status)
		assert.Equal(t, tt.want, llmErr.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, llmErr.Status)
	}
}

func TestCompatClientEmptyCompletion(t *testing.T) {
	for _, body := range []string{`{"choices":[]}`, `{"choices":[{"message":{"role":"assistant","content":""}}]}`, `not json`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		c := NewCompatClient("k", srv.URL)
		_, err := c.Complete(context.Background(), Request{Model: "m"})
		srv.Close()

		var llmErr *Error
		require.ErrorAs(t, err, &llmErr, "body=%s", body)
		assert.Equal(t, FailMalformedResponse, llmErr.Kind, "body=%s", body)
	}
}

func TestCompatClientUnreachable(t *testing.T) {
	c := NewCompatClient("k", "http://127.0.0.1:1")
	_, err := c.Complete(context.Background(), Request{Model: "m"})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, FailServiceUnavailable, llmErr.Kind)
}

func TestCompatClientContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCompatClient("k", srv.URL)
	_, err := c.Complete(ctx, Request{Model: "m"})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, FailTimeout, llmErr.Kind)
}

func TestFromProvider(t *testing.T) {
	_, ok := FromProvider("openai", "k", "").(*OpenAIClient)
	assert.True(t, ok)
	_, ok = FromProvider("compat", "k", "").(*CompatClient)
	assert.True(t, ok)
	_, ok = FromProvider("", "k", "").(*CompatClient)
	assert.True(t, ok)
}
