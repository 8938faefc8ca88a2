package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/channels"
	"github.com/hoststack/concierge/internal/db"
	"github.com/hoststack/concierge/internal/delivery"
	"github.com/hoststack/concierge/internal/rag"
	"github.com/hoststack/concierge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Long:  "Starts the HTTP server that receives guest messages over every configured channel and answers them.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
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
		logger.Warn("vector index not ready at startup, retrieval will degrade", zap.Error(err))
	}

	provider := newProvider(cfg, logger)
	resolver := newResolver(cfg)

	retriever := rag.NewRetriever(embedder, store, cfg.TopK, logger)
	composer := rag.NewComposer(provider, cfg.Model, cfg.MaxTokens, cfg.Temperature, cfg.HistoryWindow, logger)
	engine := rag.NewEngine(retriever, composer, resolver, logger)

	database, err := db.Open(filepath.Join(cfg.DataDir, "concierge.db"))
	if err != nil {
		return fmt.Errorf("opening delivery database: %w", err)
	}
	defer database.Close()
	attempts := delivery.NewStore(database)

	policy := channels.RetryPolicy{
		Attempts:     cfg.Retry.Attempts,
		InitialDelay: cfg.Retry.InitialDelay(),
		MaxDelay:     cfg.Retry.MaxDelay(),
	}
	dispatcher := channels.NewDispatcher(2, 64, policy, attempts, logger)
	defer dispatcher.Close()

	gateway := channels.NewGateway(engine, resolver, cfg.HistoryWindow, logger)

	routes := channels.Routes{
		WebChat: channels.NewWebChatHandler(gateway, cfg.Server.AllowAllOrigins, logger),
	}
	if cfg.WhatsApp.VerifyToken != "" || cfg.WhatsApp.AppSecret != "" {
		var client channels.CarrierClient
		if cfg.WhatsApp.APIURL != "" {
			client = channels.NewWhatsAppClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.APIToken)
		}
		routes.WhatsApp = channels.NewWhatsAppHandler(
			cfg.WhatsApp.VerifyToken, cfg.WhatsApp.AppSecret, cfg.WhatsApp.TriggerWord,
			cfg.DebugSkipVerify, gateway, client, dispatcher, logger)
	}
	if cfg.SMS.AuthToken != "" {
		var client channels.CarrierClient
		if cfg.SMS.APIURL != "" {
			client = channels.NewSMSClient(cfg.SMS.APIURL, cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
		}
		routes.SMS = channels.NewSMSHandler(
			cfg.SMS.AuthToken, cfg.SMS.PublicURL, cfg.DebugSkipVerify, gateway, client, dispatcher, logger)
	}

	srv := server.New(cfg.Server.Port, cfg.Server.AllowAllOrigins, routes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	// Let in-flight deliveries finish before the process exits.
	dispatcher.Wait()
	return nil
}
