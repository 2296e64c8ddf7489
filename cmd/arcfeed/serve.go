package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arcfeed/internal/aggregator"
	"arcfeed/internal/config"
	"arcfeed/internal/db"
	"arcfeed/internal/event"
	"arcfeed/internal/httpapi"
	"arcfeed/internal/saved"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresher and the HTTP API",
	Long: `Start the periodic feed refresher, the HTTP API and, when RabbitMQ is
configured, the event publisher and the saved-articles change watcher.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stdout)

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	// Mongo
	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	dbInstance := mongoClient.Database(cfg.MongoDBName)

	savedRepo, err := saved.NewMongoRepository(dbInstance, logger)
	if err != nil {
		return fmt.Errorf("failed to init repository: %w", err)
	}
	logger.Println("saved repository initialised")

	wikiClient := newWikiClient(cfg, logger)
	feedService := aggregator.NewService(wikiClient, cfg.MaxPastDays, logger)

	// Event publisher (RabbitMQ), optional
	var notifier aggregator.Notifier
	var eventsService *event.Service
	if cfg.RabbitURI != "" {
		publisher, err := event.NewRabbitPublisher(
			cfg.RabbitURI,
			cfg.RabbitExchange,
			event.RoutingKeys{FeedRefreshed: cfg.FeedRoutingKey, SavedChanged: cfg.SavedRoutingKey},
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to init rabbit publisher: %w", err)
		}
		defer publisher.Close()

		notifier = publisher
		eventsService = event.NewService(dbInstance.Collection(saved.CollectionName), publisher, logger)
	} else {
		logger.Println("RABBIT_URI empty, event publishing disabled")
	}

	refresher := aggregator.NewRefresher(feedService, notifier, logger)

	handler := httpapi.NewHandler(refresher, wikiClient, savedRepo, logger)
	srv := listen(cfg.HTTPAddr, handler.Router(), logger)

	// Start background workers
	go refresher.StartPolling(ctx, cfg.RefreshInterval)
	if eventsService != nil {
		go eventsService.Run(ctx)
	}

	logger.Println("service started")

	// Block until we receive a signal / ctx cancelled
	<-ctx.Done()
	logger.Println("shutdown signal received, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("HTTP server shutdown error: %v", err)
	}

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Printf("mongo disconnect error: %v", err)
	}

	logger.Println("shutdown complete")
	return nil
}

func listen(addr string, h http.Handler, logger *log.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	return srv
}
