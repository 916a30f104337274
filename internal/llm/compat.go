package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// CompatClient implements Client over the plain chat-completions HTTP API.
// It works with any OpenAI-compatible provider (DeepSeek, Groq, Mistral,
// OpenRouter, local models, etc.) without an SDK.
type CompatClient struct {
	HTTPClient *http.Client
	APIKey     string
	BaseURL    string
}

func NewCompatClient(apiKey, baseURL string) *CompatClient {
	return &CompatClient{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		APIKey:     apiKey,
		BaseURL:    baseURL,
	}
}

func (c *CompatClient) Complete(ctx context.Context, req Request) (string, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}

	body := map[string]any{
		"model": req.Model,
		"messages": []map[string]any{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSONOnly {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Kind: FailMalformedResponse, Msg: "marshal request: " + err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &Error{Kind: FailServiceUnavailable, Msg: "create request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: classifyTransport(err), Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", &Error{Kind: classifyStatus(resp.StatusCode), Status: resp.StatusCode, Msg: string(errBody)}
	}

	var completion compatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", &Error{Kind: FailMalformedResponse, Msg: "parse completion: " + err.Error()}
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", &Error{Kind: FailMalformedResponse, Msg: "no text in completion"}
	}
	return completion.Choices[0].Message.Content, nil
}

// Chat-completions response types (non-streaming).

type compatCompletion struct {
	Choices []compatChoice `json:"choices"`
}

type compatChoice struct {
	Message      compatMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type compatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
