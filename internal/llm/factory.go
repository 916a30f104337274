package llm

// FromProvider builds a client for a configured provider. clientType is
// "openai" for the SDK client or "compat" for the plain chat-completions
// client; anything else falls back to compat.
func FromProvider(clientType, apiKey, baseURL string) Client {
	if clientType == "openai" {
		return NewOpenAIClient(apiKey, baseURL)
	}
	return NewCompatClient(apiKey, baseURL)
}
