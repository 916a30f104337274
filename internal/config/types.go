package config

type Config struct {
	Server    ServerConfig              `yaml:"server" json:"server"`
	Generator GeneratorConfig           `yaml:"generator" json:"generator"`
	Providers map[string]ProviderConfig `yaml:"providers" json:"providers"`
	Catalog   CatalogConfig             `yaml:"catalog" json:"catalog"`
}

type ServerConfig struct {
	Port int        `yaml:"port" json:"port"`
	Auth AuthConfig `yaml:"auth" json:"auth"`
}

type AuthConfig struct {
	Token string `yaml:"token" json:"token"`
}

// GeneratorConfig selects the provider and model parameters for campaign
// generation.
type GeneratorConfig struct {
	Provider    string  `yaml:"provider" json:"provider"`
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int64   `yaml:"maxTokens" json:"maxTokens"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"apiKey" json:"apiKey"`
	BaseURL string `yaml:"baseURL" json:"baseURL"`
	Type    string `yaml:"type" json:"type"` // "openai" (SDK) | "compat" (plain HTTP); default inferred from provider name
}

// ClientType returns which generation client to use for this provider.
func (p ProviderConfig) ClientType(providerName string) string {
	if p.Type != "" {
		return p.Type
	}
	if providerName == "openai" {
		return "openai"
	}
	return "compat"
}

type CatalogConfig struct {
	SyncSchedule string           `yaml:"syncSchedule" json:"syncSchedule"` // cron spec for the lastSync refresher
	Preconnect   PreconnectConfig `yaml:"preconnect" json:"preconnect"`
}

// PreconnectConfig lists entity type tags to connect at startup, so a fresh
// server has a working catalog before any UI interaction.
type PreconnectConfig struct {
	DataSources []string `yaml:"dataSources" json:"dataSources"`
	Channels    []string `yaml:"channels" json:"channels"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8710,
		},
		Generator: GeneratorConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.7,
			MaxTokens:   3000,
		},
		Providers: map[string]ProviderConfig{
			"openai":   {Type: "openai"},
			"deepseek": {BaseURL: "https://api.deepseek.com", Type: "compat"},
		},
		Catalog: CatalogConfig{
			SyncSchedule: "@every 5m",
		},
	}
}
