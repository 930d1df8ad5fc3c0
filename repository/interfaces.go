package repository

import (
	"context"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
)

// VerdictRepositoryInterface defines all verdict storage operations
type VerdictRepositoryInterface interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close()
	Health(ctx context.Context) error

	// Verdicts
	GetVerdict(ctx context.Context, ticker string) (*models.Verdict, error)
	PutVerdict(ctx context.Context, verdict *models.Verdict) error
	ListVerdicts(ctx context.Context, status models.VerdictStatus, limit int) ([]models.Verdict, error)
}

// Compile-time interface verification
var _ VerdictRepositoryInterface = (*Repository)(nil)
var _ VerdictRepositoryInterface = (*MemoryStore)(nil)
