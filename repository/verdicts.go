package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
)

// GetVerdict returns the stored verdict for a ticker, or nil when the ticker
// has never been screened.
func (r *Repository) GetVerdict(ctx context.Context, ticker string) (*models.Verdict, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "halal_verdicts")

	row := r.db.QueryRow(ctx, `
		SELECT id, ticker, company_name, status, reason, ratios, created_at
		FROM halal_verdicts WHERE ticker = $1
	`, ticker)

	verdict, err := scanVerdict(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "halal_verdicts")
		return nil, fmt.Errorf("failed to query verdict: %w", err)
	}

	return verdict, nil
}

// PutVerdict stores a verdict for a ticker. The first write wins: a verdict
// already stored for the ticker is never overwritten.
func (r *Repository) PutVerdict(ctx context.Context, verdict *models.Verdict) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("insert", "halal_verdicts")

	var ratiosJSON []byte
	if verdict.Ratios != nil {
		var err error
		ratiosJSON, err = json.Marshal(verdict.Ratios)
		if err != nil {
			return fmt.Errorf("failed to marshal ratios: %w", err)
		}
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO halal_verdicts (id, ticker, company_name, status, reason, ratios, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker) DO NOTHING
	`, verdict.ID, verdict.Ticker, verdict.CompanyName, verdict.Status, verdict.Reason, ratiosJSON, verdict.CreatedAt)

	if err != nil {
		metrics.RecordDBError("insert", "halal_verdicts")
		return fmt.Errorf("failed to store verdict: %w", err)
	}

	if tag.RowsAffected() == 0 {
		observability.Debug("verdict already stored, keeping first write",
			"ticker", verdict.Ticker)
	}

	return nil
}

// ListVerdicts returns the most recently stored verdicts, optionally filtered
// by status.
func (r *Repository) ListVerdicts(ctx context.Context, status models.VerdictStatus, limit int) ([]models.Verdict, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "halal_verdicts")

	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error

	if status == "" {
		rows, err = r.db.Query(ctx, `
			SELECT id, ticker, company_name, status, reason, ratios, created_at
			FROM halal_verdicts
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, ticker, company_name, status, reason, ratios, created_at
			FROM halal_verdicts
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, status, limit)
	}

	if err != nil {
		metrics.RecordDBError("select", "halal_verdicts")
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []models.Verdict
	for rows.Next() {
		verdict, err := scanVerdict(rows)
		if err != nil {
			metrics.RecordDBError("select", "halal_verdicts")
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, *verdict)
	}

	return verdicts, nil
}

// scanVerdict scans a verdict row into a Verdict struct
func scanVerdict(row pgx.Row) (*models.Verdict, error) {
	var verdict models.Verdict
	var ratiosJSON []byte

	err := row.Scan(&verdict.ID, &verdict.Ticker, &verdict.CompanyName,
		&verdict.Status, &verdict.Reason, &ratiosJSON, &verdict.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(ratiosJSON) > 0 {
		var ratios models.RatioReport
		if err := json.Unmarshal(ratiosJSON, &ratios); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ratios: %w", err)
		}
		verdict.Ratios = &ratios
	}

	return &verdict, nil
}
