package services

import (
	"context"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
)

// MarketDataServiceInterface defines the interface for market data operations
type MarketDataServiceInterface interface {
	GetCompanyProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
	GetFinancialSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error)
}

// NewsAPIServiceInterface defines the interface for news retrieval operations
type NewsAPIServiceInterface interface {
	GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error)
}

// TextClassifierInterface defines the interface for free-text compliance classification
type TextClassifierInterface interface {
	Classify(ctx context.Context, text string) (models.TextualLabel, error)
}
