package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/rag"
)

var askProperty string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the command line",
	Long:  "Runs a single question through the full answer pipeline, useful for testing an index without a channel.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProperty, "property", "p", "", "property id to scope the question to")
	askCmd.MarkFlagRequired("property")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("building embedder: %w", err)
	}

	store := newStore(cfg, embedder)
	if err := store.EnsureReady(cmd.Context()); err != nil {
		logger.Warn("vector index not ready, retrieval will degrade", zap.Error(err))
	}

	provider := newProvider(cfg, logger)
	resolver := newResolver(cfg)

	retriever := rag.NewRetriever(embedder, store, cfg.TopK, logger)
	composer := rag.NewComposer(provider, cfg.Model, cfg.MaxTokens, cfg.Temperature, cfg.HistoryWindow, logger)
	engine := rag.NewEngine(retriever, composer, resolver, logger)

	question := strings.Join(args, " ")
	answer := engine.Answer(cmd.Context(), askProperty, question, nil)

	fmt.Println(answer.Text)
	return nil
}
