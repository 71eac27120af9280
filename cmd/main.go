package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/sbilibin2017/gw-rate-predictor/internal/facades"
	"github.com/sbilibin2017/gw-rate-predictor/internal/handlers"
	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/middlewares"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
	"github.com/sbilibin2017/gw-rate-predictor/internal/repositories"
	"github.com/sbilibin2017/gw-rate-predictor/internal/scheduler"
	"github.com/sbilibin2017/gw-rate-predictor/internal/services"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-rate-predictor API
// @version 1.0.0
// @description Service for collecting currency exchange rates and predicting them with a rolling-average model
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		dataDir, modelDir, logDir,
		apiKey, apiURL,
		baseCurrency, earliestDate, rateSource,
		simulationSeed, fetchDelayMS, updateCron,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		dataDir, modelDir, logDir,
		apiKey, apiURL,
		baseCurrency, earliestDate, rateSource,
		simulationSeed, fetchDelayMS, updateCron,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, storage, rate source, and scheduling configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	dataDir, modelDir, logDir string,
	apiKey, apiURL string,
	baseCurrency string, earliestDate time.Time, rateSource string,
	simulationSeed int64, fetchDelayMS int, updateCron string,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Storage config
	dataDir = getEnv("DATA_DIR", "data")
	modelDir = getEnv("MODEL_DIR", "models")
	logDir = getEnv("LOG_DIR", "logs")

	// Rate source config
	apiKey = getEnv("EXCHANGE_API_KEY", "")
	apiURL = getEnv("EXCHANGE_API_URL", facades.DefaultAPIBaseURL)
	baseCurrency = getEnv("BASE_CURRENCY", "USD")
	rateSource = getEnv("RATE_SOURCE", "auto")
	if earliestDate, err = time.Parse(models.DateLayout, getEnv("EARLIEST_DATE", "2020-01-01")); err != nil {
		return
	}
	if simulationSeed, err = strconv.ParseInt(getEnv("SIMULATION_SEED", "42"), 10, 64); err != nil {
		return
	}
	if fetchDelayMS, err = strconv.Atoi(getEnv("FETCH_DELAY_MS", "100")); err != nil {
		return
	}

	// Scheduler config; empty disables periodic updates
	updateCron = getEnv("UPDATE_CRON", "")

	return
}

// run initializes the logger, storage, rate source, services, and HTTP
// server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	dataDir, modelDir, logDir string,
	apiKey, apiURL string,
	baseCurrency string, earliestDate time.Time, rateSource string,
	simulationSeed int64, fetchDelayMS int, updateCron string,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Initialize repositories
	ratesRepo := repositories.NewRatesRepository(dataDir)
	modelRepo := repositories.NewModelStateRepository(modelDir)
	auditRepo := repositories.NewPredictionLogRepository(logDir)

	// Select the rate source: the real API when a key is configured,
	// otherwise the deterministic simulation.
	var source services.RateSource
	switch {
	case rateSource == "simulated" || (rateSource == "auto" && apiKey == ""):
		source = facades.NewSimulatedSource(facades.DefaultRateSnapshot, simulationSeed)
	default:
		source = facades.NewExchangeRateAPIFacade(apiURL, apiKey)
	}
	logger.Log.Infof("Using rate source %q", source.Name())

	// Initialize services
	fetchService := services.NewFetchService(source, ratesRepo, baseCurrency,
		earliestDate, time.Duration(fetchDelayMS)*time.Millisecond)
	ratesService := services.NewRatesService(ratesRepo, source, baseCurrency)
	predictorService := services.NewPredictorService(ratesRepo, modelRepo, auditRepo)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Get("/api/pairs", handlers.NewPairsHandler(ratesService))
	r.Get("/api/currencies", handlers.NewCurrenciesHandler(ratesService))
	r.Get("/api/range", handlers.NewDateRangeHandler(ratesService))
	r.Get("/api/series", handlers.NewSeriesHandler(ratesService))

	r.Post("/api/train", handlers.NewTrainHandler(predictorService))
	r.Post("/api/retrain", handlers.NewRetrainHandler(predictorService))
	r.Post("/api/predict", handlers.NewPredictHandler(predictorService))
	r.Post("/api/evaluate", handlers.NewEvaluateHandler(predictorService))

	r.Post("/api/fetch", handlers.NewFetchHandler(fetchService))
	r.Get("/api/fetch/progress", handlers.NewFetchProgressHandler(fetchService))
	r.Delete("/api/data", handlers.NewDeleteDataHandler(ratesService))

	r.Get("/api/logs", handlers.NewLogsHandler(auditRepo))
	r.Post("/api/logs/clear", handlers.NewClearLogsHandler(auditRepo))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Optional periodic rate updates
	var sched *scheduler.Scheduler
	if updateCron != "" {
		sched = scheduler.New(ctx, fetchService)
		if err := sched.Register(updateCron); err != nil {
			return fmt.Errorf("register update schedule: %w", err)
		}
		sched.Start()
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	if sched != nil {
		sched.Stop()
	}
	fetchService.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
