package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campgen/campgen/internal/campaign"
	"github.com/campgen/campgen/internal/llm"
)

// mockClient is a scripted stand-in for a generation provider.
type mockClient struct {
	resp    string
	err     error
	lastReq llm.Request
}

func (m *mockClient) Complete(_ context.Context, req llm.Request) (string, error) {
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.resp, nil
}

func TestGenerateModelPath(t *testing.T) {
	sources, channels := connectedFixture()
	mock := &mockClient{resp: `{"name":"Welcome Series","channels":[{"type":"email"}],"content":{"message":"Hello!"}}`}
	gen := &Generator{Client: mock, Model: "gpt-4"}

	result := gen.Generate(context.Background(), "welcome new users", sources, channels)

	assert.False(t, result.Fallback)
	assert.Equal(t, "Welcome Series", result.Campaign.Name)
	assert.Contains(t, result.Explanation, "welcome new users")
	require.NoError(t, result.Campaign.Validate(sources, channels))

	// The adapter call carries the compiled instruction and the defaults.
	assert.True(t, mock.lastReq.JSONOnly)
	assert.Equal(t, DefaultTemperature, mock.lastReq.Temperature)
	assert.Equal(t, int64(DefaultMaxTokens), mock.lastReq.MaxTokens)
	assert.Equal(t, "welcome new users", mock.lastReq.User)
	assert.Contains(t, mock.lastReq.System, "Email Marketing")
}

func TestGenerateFallsBackOnEveryFailureKind(t *testing.T) {
	sources, channels := connectedFixture()
	kinds := []llm.FailureKind{
		llm.FailServiceUnavailable,
		llm.FailAuth,
		llm.FailQuota,
		llm.FailTimeout,
		llm.FailMalformedResponse,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			gen := &Generator{Client: &mockClient{err: &llm.Error{Kind: kind, Msg: "boom"}}}
			result := gen.Generate(context.Background(), "spring sale", sources, channels)

			assert.True(t, result.Fallback)
			assert.Equal(t, fallbackExplanation, result.Explanation)

			// Schema-identical to the synthetic generator's output.
			want := campaign.Synthesize("spring sale", sources, channels)
			assert.Equal(t, want.Description, result.Campaign.Description)
			assert.Equal(t, want.Audience, result.Campaign.Audience)
			assert.Equal(t, want.Content, result.Campaign.Content)
			assert.Equal(t, campaign.StatusDraft, result.Campaign.Status)
			require.NoError(t, result.Campaign.Validate(sources, channels))
		})
	}
}

func TestGenerateSubsetInvariant(t *testing.T) {
	sources, channels := connectedFixture()
	// The model names channels and data sources the caller never connected.
	mock := &mockClient{resp: `{
		"channels": [{"type":"email"},{"type":"whatsapp"},{"type":"voice"}],
		"dataSources": [{"type":"gtm"},{"type":"crm"},{"type":"twitter"}],
		"content": {"message":"m"}
	}`}
	gen := &Generator{Client: mock}

	result := gen.Generate(context.Background(), "p", sources, channels)

	require.NoError(t, result.Campaign.Validate(sources, channels))
	require.Len(t, result.Campaign.Channels, 1)
	assert.Equal(t, "c1", result.Campaign.Channels[0].ID)
	require.Len(t, result.Campaign.DataSources, 1)
	assert.Equal(t, "ds1", result.Campaign.DataSources[0].ID)
}

func TestGenerateMessageAlwaysPresent(t *testing.T) {
	sources, channels := connectedFixture()
	for _, resp := range []string{`{}`, `{"content":{}}`, "garbage", `{"content":{"message":""}}`} {
		gen := &Generator{Client: &mockClient{resp: resp}}
		result := gen.Generate(context.Background(), "p", sources, channels)
		assert.NotEmpty(t, result.Campaign.Content.Message, "resp=%s", resp)
		assert.Equal(t, campaign.StatusDraft, result.Campaign.Status)
	}
}

func TestPromptBuilder(t *testing.T) {
	sources, channels := connectedFixture()
	prompt := (&PromptBuilder{
		UserPrompt:  "boost repeat purchases",
		DataSources: sources,
		Channels:    channels,
	}).Build()

	assert.Contains(t, prompt, `"boost repeat purchases"`)
	assert.Contains(t, prompt, "Google Tag Manager, Shopify Store")
	assert.Contains(t, prompt, "Email Marketing, SMS Campaigns")
	assert.Contains(t, prompt, "REQUIRED JSON STRUCTURE")
	assert.Contains(t, prompt, "Return ONLY the JSON object")

	// Deterministic: same inputs, same prompt.
	again := (&PromptBuilder{UserPrompt: "boost repeat purchases", DataSources: sources, Channels: channels}).Build()
	assert.Equal(t, prompt, again)
}

func TestPromptBuilderEmptyEntities(t *testing.T) {
	prompt := (&PromptBuilder{UserPrompt: "p"}).Build()
	assert.Equal(t, 2, strings.Count(prompt, "(none)"))
}
