package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"

	"deal-finder-service/internal/adapters/craigslist"
	logger_adapter "deal-finder-service/internal/adapters/logger"
	"deal-finder-service/internal/adapters/memstorage"
	postgres_adapter "deal-finder-service/internal/adapters/postgres"
	"deal-finder-service/internal/adapters/rest"
	"deal-finder-service/internal/adapters/sources"
	"deal-finder-service/internal/adapters/valuation"
	"deal-finder-service/internal/configs"
	"deal-finder-service/internal/core/port"
	"deal-finder-service/internal/core/usecase"
	"deal-finder-service/pkg/fluentlogger"
	"deal-finder-service/pkg/postgres"
)

// App holds the wired application.
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

// NewApp is the composition root: every dependency is created and wired here.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// Loggers first, everything else logs through them.
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// Deal store: Postgres when DATABASE_URL is set, in-memory otherwise.
	var dealStore port.DealStorePort
	var dbPool *pgxpool.Pool
	if appConfig.Database.URL != "" {
		dbPool, err = postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

		storageAdapter, err := postgres_adapter.NewListingStorageAdapter(context.Background(), dbPool)
		if err != nil {
			appLogger.Error("Failed to create postgres storage adapter", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create postgres storage adapter: %w", err)
		}
		dealStore = storageAdapter
		appLogger.Info("Postgres storage adapter initialized.", nil)
	} else {
		dealStore = memstorage.NewMemStorageAdapter()
		appLogger.Warn("DATABASE_URL is not set, using in-memory deal store", nil)
	}

	valuationEngine, err := valuation.NewTableEngine(dealStore, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create valuation engine: %w", err)
	}

	craigslistFetcher, err := craigslist.NewCraigslistFetcherAdapter(appConfig.Scrape.CraigslistBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create craigslist fetcher: %w", err)
	}

	sourceRegistry := sources.NewRegistry()
	sourceRegistry.Register(craigslist.SourceName, craigslistFetcher)
	appLogger.Info("Source registry initialized.", port.Fields{"sources": sourceRegistry.Names()})

	ingestUseCase := usecase.NewIngestListingsUseCase(sourceRegistry, valuationEngine, dealStore, usecase.IngestConfig{
		Concurrency:       appConfig.Scrape.Concurrency,
		Timeout:           appConfig.Scrape.Timeout,
		MaxResultsCap:     appConfig.Scrape.MaxResultsCap,
		KeepLowConfidence: appConfig.Scrape.KeepLowConfidence,
	})
	getDealsUseCase := usecase.NewGetDealsUseCase(dealStore)
	getDealByIDUseCase := usecase.NewGetDealByIDUseCase(dealStore)
	appLogger.Info("All use cases initialized.", nil)

	scrapeHandler := rest.NewScrapeHandler(ingestUseCase)
	dealsHandler := rest.NewDealsHandler(getDealsUseCase, getDealByIDUseCase)

	apiServer := rest.NewServer(appConfig.HTTP.Port, appConfig.AppName, scrapeHandler, dealsHandler, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return &App{
		config:       appConfig,
		dbPool:       dbPool,
		apiServer:    apiServer,
		fluentClient: fluentClient,
		logger:       appLogger,
	}, nil
}

// Run starts the HTTP server and blocks until a shutdown signal or a server
// error, then tears everything down in order.
func (a *App) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Log to stdout, fluent may already be unreachable.
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.HTTP.Port})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	}

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
