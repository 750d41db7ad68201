package config

// Config is the top-level configuration
type Config struct {
	Providers ProvidersConfig `json:"providers"`
	Generate  GenerateConfig  `json:"generate"`
	Twitter   TwitterConfig   `json:"twitter"`
	CrossPost CrossPostConfig `json:"crossPost"`
	Gateway   GatewayConfig   `json:"gateway"`
	DataDir   string          `json:"dataDir"`
}

// ProvidersConfig holds API keys and settings for LLM providers
type ProvidersConfig struct {
	OpenAI    ProviderConfig `json:"openai"`
	Anthropic ProviderConfig `json:"anthropic"`
}

type ProviderConfig struct {
	APIKey       string `json:"apiKey"`
	BaseURL      string `json:"baseUrl"`
	DefaultModel string `json:"defaultModel"`
}

// GenerateConfig holds defaults for post generation.
type GenerateConfig struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

// TwitterConfig holds credentials for the primary posting platform.
type TwitterConfig struct {
	APIKey       string `json:"apiKey"`
	APISecret    string `json:"apiSecret"`
	AccessToken  string `json:"accessToken"`
	AccessSecret string `json:"accessSecret"`
	BearerToken  string `json:"bearerToken"`
}

// CrossPostConfig holds optional secondary publish targets.
type CrossPostConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
	Slack    SlackConfig    `json:"slack"`
}

type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID string `json:"chatId"`
}

type DiscordConfig struct {
	Token     string `json:"token"`
	ChannelID string `json:"channelId"`
}

type SlackConfig struct {
	BotToken string `json:"botToken"`
	Channel  string `json:"channel"`
}

// GatewayConfig describes the publisher gateway process: where it
// listens, and where clients reach it.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	URL  string `json:"url"` // client-side base URL, e.g. http://localhost:3001
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Generate: GenerateConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0.7,
		},
		Gateway: GatewayConfig{
			Host: "localhost",
			Port: 3001,
			URL:  "http://localhost:3001",
		},
		DataDir: "~/.postpilot",
	}
}
