package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenRouter,
		Model:             "meta-llama/llama-3.3-70b-instruct",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",

		DataDir:         "data",
		PropertyDataDir: "property_data",

		TopK:          5,
		ChunkSize:     500,
		ChunkOverlap:  50,
		HistoryWindow: 10,
		MaxTokens:     400,
		Temperature:   0.4,
		RateLimitRPM:  60,

		LogLevel:  "info",
		LogFormat: "console",

		DefaultCity: "the local area",

		Server: ServerConfig{
			Port: 8080,
		},
		WhatsApp: WhatsAppConfig{
			TriggerWord: "lucy",
		},
		Retry: RetryConfig{
			Attempts:       3,
			InitialDelayMS: 500,
			MaxDelayMS:     4000,
		},
	}
}
