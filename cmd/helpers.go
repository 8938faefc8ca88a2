package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/config"
	"github.com/hoststack/concierge/internal/embeddings"
	"github.com/hoststack/concierge/internal/llm"
	"github.com/hoststack/concierge/internal/logging"
	"github.com/hoststack/concierge/internal/properties"
	"github.com/hoststack/concierge/internal/vectordb"
)

// loadConfig loads configuration and builds the logger, honoring --verbose.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.LogFormat)
	return cfg, logger, nil
}

// newEmbedder builds the configured embedding client. The API key comes from
// the provider's environment variable.
func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	envVar := config.APIKeyEnvVar(cfg.EmbeddingProvider)
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set", envVar)
	}

	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderGoogle:
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(cfg.EmbeddingModel)), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

// newProvider builds the configured generation provider. A missing API key
// returns nil so the pipeline can degrade to its fallback reply instead of
// refusing to start.
func newProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		logger.Warn("generation provider unavailable, answers will use fallback wording", zap.Error(err))
		return nil
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return provider
}

// newStore opens the vector index under the data directory.
func newStore(cfg *config.Config, embedder embeddings.Embedder) vectordb.Store {
	return vectordb.NewChromemStore(filepath.Join(cfg.DataDir, "index"), embedder)
}

// newResolver builds the property and city rule tables from configuration.
func newResolver(cfg *config.Config) *properties.Resolver {
	var propertyRules, cityRules []properties.Rule
	for _, rule := range cfg.Properties {
		if rule.PropertyID != "" {
			propertyRules = append(propertyRules, properties.Rule{Match: rule.Match, Value: rule.PropertyID})
		}
		if rule.City != "" {
			cityRules = append(cityRules, properties.Rule{Match: rule.PropertyID, Value: rule.City})
		}
	}
	cityRules = append(cityRules, properties.DefaultCityRules...)
	return properties.New(propertyRules, cityRules, cfg.DefaultProperty, cfg.DefaultCity)
}
