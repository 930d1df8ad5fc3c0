// Package main runs the halal stock screening service: an HTTP API that
// classifies tickers as compliant, non-compliant, doubtful or error against
// a shariah investment screen and caches each verdict.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Innominate-Dev/Halal-Stock-Screener/config"
	"github.com/Innominate-Dev/Halal-Stock-Screener/internal/api"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
	"github.com/Innominate-Dev/Halal-Stock-Screener/repository"
	"github.com/Innominate-Dev/Halal-Stock-Screener/screening"
	"github.com/Innominate-Dev/Halal-Stock-Screener/services"
)

func main() {
	// Load .env file if present; real deployments set the environment directly
	_ = godotenv.Load()

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Verdict store: PostgreSQL when configured, otherwise an in-memory
	// store so the service still answers (verdicts just do not survive a
	// restart).
	var store repository.VerdictRepositoryInterface
	if cfg.HasDatabase() {
		repo, err := repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Fatal("failed to connect to database", "error", err)
		}
		store = repo
		observability.Info("connected to database")
	} else {
		observability.Warn("DATABASE_URL not set, using in-memory verdict store")
		store = repository.NewMemoryStore()
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		observability.Fatal("failed to initialize verdict store", "error", err)
	}

	if !cfg.HasFMP() {
		observability.Warn("FMP_API_KEY not set, market data requests will fail")
	}
	marketData := services.NewFMPService(cfg.FMP.APIKey)

	textual, err := buildTextualEvaluator(ctx, cfg)
	if err != nil {
		observability.Fatal("failed to build textual evaluator", "error", err)
	}

	screener := screening.NewScreener(marketData, store, textual, &cfg.Screening)

	handler := api.NewHandler(screener, store, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // batch screens wait on upstream providers
	}

	go func() {
		observability.Info("starting halal screener",
			"port", cfg.HTTP.Port,
			"url", fmt.Sprintf("http://localhost:%s", cfg.HTTP.Port),
			"text_strategy", cfg.Screening.TextStrategy)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("halal screener stopped")
}

// buildTextualEvaluator selects the textual strategy from configuration:
// keyword matching over news headlines, or a Bedrock-backed classifier over
// the business summary.
func buildTextualEvaluator(ctx context.Context, cfg *config.Config) (screening.TextualEvaluator, error) {
	switch cfg.Screening.TextStrategy {
	case config.TextStrategyClassifier:
		if !cfg.HasBedrock() {
			return nil, fmt.Errorf("classifier strategy requires AWS_REGION and BEDROCK_MODEL_ID")
		}
		classifier, err := services.NewBedrockClassifier(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID)
		if err != nil {
			return nil, fmt.Errorf("failed to create classifier: %w", err)
		}
		return screening.NewClassifierEvaluator(classifier), nil

	default:
		var news services.NewsAPIServiceInterface
		if cfg.HasNewsAPI() {
			news = services.NewNewsAPIService(cfg.NewsAPI.APIKey)
		} else {
			observability.Warn("NEWS_API_KEY not set, textual check will run without headlines")
		}
		return screening.NewKeywordEvaluator(news,
			cfg.Screening.ClearViolationTerms,
			cfg.Screening.DoubtfulTerms,
			cfg.Screening.NewsArticleLimit), nil
	}
}
