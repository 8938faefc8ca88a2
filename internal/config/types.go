package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGoogle     ProviderType = "google"
)

// PropertyRule maps an inbound routing hint (recipient number, webhook path
// segment, sender prefix) to a property and its city. Rules are evaluated in
// order; the first case-insensitive substring match wins.
type PropertyRule struct {
	Match      string `yaml:"match" koanf:"match"`
	PropertyID string `yaml:"property_id" koanf:"property_id"`
	City       string `yaml:"city" koanf:"city"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// WhatsAppConfig holds the WhatsApp-style channel settings.
type WhatsAppConfig struct {
	VerifyToken string `yaml:"verify_token" koanf:"verify_token"`
	AppSecret   string `yaml:"app_secret" koanf:"app_secret"`
	TriggerWord string `yaml:"trigger_word" koanf:"trigger_word"`
	APIURL      string `yaml:"api_url" koanf:"api_url"`
	APIToken    string `yaml:"api_token" koanf:"api_token"`
}

// SMSConfig holds the SMS carrier channel settings.
type SMSConfig struct {
	AccountSID string `yaml:"account_sid" koanf:"account_sid"`
	AuthToken  string `yaml:"auth_token" koanf:"auth_token"`
	FromNumber string `yaml:"from_number" koanf:"from_number"`
	APIURL     string `yaml:"api_url" koanf:"api_url"`

	// PublicURL is the externally visible webhook URL the carrier signs
	// against. Set it when a proxy terminates TLS in front of the server;
	// when empty the URL is reconstructed from the request.
	PublicURL string `yaml:"public_url" koanf:"public_url"`
}

// RetryConfig bounds the outbound delivery retry loop.
type RetryConfig struct {
	Attempts       uint `yaml:"attempts" koanf:"attempts"`
	InitialDelayMS int  `yaml:"initial_delay_ms" koanf:"initial_delay_ms"`
	MaxDelayMS     int  `yaml:"max_delay_ms" koanf:"max_delay_ms"`
}

// Config is the top-level concierge configuration, corresponding to
// .concierge.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	DataDir         string `yaml:"data_dir" koanf:"data_dir"`
	PropertyDataDir string `yaml:"property_data_dir" koanf:"property_data_dir"`

	TopK          int     `yaml:"top_k" koanf:"top_k"`
	ChunkSize     int     `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	HistoryWindow int     `yaml:"history_window" koanf:"history_window"`
	MaxTokens     int     `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature   float64 `yaml:"temperature" koanf:"temperature"`

	// RateLimitRPM caps generation requests per minute across all channels.
	// Zero disables the cap.
	RateLimitRPM int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	LogLevel  string `yaml:"log_level" koanf:"log_level"`
	LogFormat string `yaml:"log_format" koanf:"log_format"`

	// DebugSkipVerify disables webhook signature verification. It exists for
	// local carrier simulators only; every bypassed request is logged.
	DebugSkipVerify bool `yaml:"debug_skip_verify" koanf:"debug_skip_verify"`

	DefaultProperty string         `yaml:"default_property" koanf:"default_property"`
	DefaultCity     string         `yaml:"default_city" koanf:"default_city"`
	Properties      []PropertyRule `yaml:"properties" koanf:"properties"`

	Server   ServerConfig   `yaml:"server" koanf:"server"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp" koanf:"whatsapp"`
	SMS      SMSConfig      `yaml:"sms" koanf:"sms"`
	Retry    RetryConfig    `yaml:"retry" koanf:"retry"`
}
