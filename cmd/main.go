/**
 * @description
 * This is the main entry point for the aggregator-service. Its responsibility
 * is to initialize all necessary components and start the HTTP server that
 * receives provider webhooks, plus the scheduled reconciliation job.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Establishes and manages a connection pool to the PostgreSQL database.
 * - Initializes clients for external services (Method, Quiltt) and constructs
 *   them explicitly: client lifecycle is owned here, not by module globals.
 * - Wires the dispatch table with the webhook event handlers.
 * - Schedules the nightly reconciliation run and implements graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, storage, and external clients.
 * - pgxpool for database connection, godotenv for local config, robfig/cron for scheduling.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/wealthloop/aggregator-service/internal/api"
	"github.com/wealthloop/aggregator-service/internal/app"
	"github.com/wealthloop/aggregator-service/internal/config"
	"github.com/wealthloop/aggregator-service/internal/store"
	"github.com/wealthloop/aggregator-service/pkg/methodclient"
	"github.com/wealthloop/aggregator-service/pkg/quilttclient"
	"github.com/wealthloop/aggregator-service/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Establish database connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v\n", err)
	}

	dbConfig.MaxConns = 20
	dbConfig.MinConns = 5
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	// Set up dependencies.
	repo := store.NewPostgresRepository(dbpool)
	methodClient := methodclient.NewClient(cfg.MethodAPIBaseURL, cfg.MethodAPIKey)
	quilttClient := quilttclient.NewClient(cfg.QuilttAPIBaseURL, cfg.QuilttAPISecret)

	var publisher app.EventPublisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer producer.Close()
		publisher = producer
	} else {
		log.Println("RABBITMQ_URL not set; internal events will not be published")
	}

	// Setup services and the dispatch table.
	syncService := app.NewSyncService(quilttClient, methodClient, publisher)
	reconciler := app.NewReconcileService(methodClient, repo, publisher)
	handlers := app.NewEventHandlers(syncService, quilttClient, repo)

	dispatcher := app.NewDispatcher()
	handlers.RegisterAll(dispatcher)

	// Schedule the nightly reconciliation run.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ReconcileSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := reconciler.Reconcile(ctx); err != nil {
			log.Printf("Scheduled reconciliation failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid reconcile schedule %q: %v", cfg.ReconcileSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("Scheduled reconciliation with spec %q", cfg.ReconcileSchedule)

	// Setup and start HTTP server.
	router := api.NewRouter(cfg, dispatcher, reconciler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	log.Println("Aggregator service is running with webhook ingress and scheduled reconciliation.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down aggregator-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
