package screening

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Innominate-Dev/Halal-Stock-Screener/config"
	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
	"github.com/Innominate-Dev/Halal-Stock-Screener/services"
)

// VerdictStore defines the verdict cache operations the screener needs.
// Writes are first-write-wins per ticker: a stored verdict is never
// overwritten.
type VerdictStore interface {
	GetVerdict(ctx context.Context, ticker string) (*models.Verdict, error)
	PutVerdict(ctx context.Context, verdict *models.Verdict) error
}

// Screener runs the compliance pipeline: cache lookup, then sector,
// financial and textual checks in order, stopping at the first decisive
// signal.
type Screener struct {
	marketData services.MarketDataServiceInterface
	store      VerdictStore
	sector     *SectorEvaluator
	financial  *FinancialEvaluator
	textual    TextualEvaluator
	cfg        *config.ScreeningConfig
}

// NewScreener creates a Screener from its collaborators
func NewScreener(
	marketData services.MarketDataServiceInterface,
	store VerdictStore,
	textual TextualEvaluator,
	cfg *config.ScreeningConfig,
) *Screener {
	return &Screener{
		marketData: marketData,
		store:      store,
		sector:     NewSectorEvaluator(cfg.HaramSectors),
		financial:  NewFinancialEvaluator(cfg.DebtRatioMax, cfg.InterestRatioMax, cfg.LiquidityRatioMax),
		textual:    textual,
		cfg:        cfg,
	}
}

// Screen classifies one ticker. It always returns a well-formed verdict:
// pipeline failures become Error-status verdicts, never a Go error the
// caller must special-case. Error verdicts are not cached, so a later
// request can retry once the underlying issue resolves.
func (s *Screener) Screen(ctx context.Context, ticker string) *models.Verdict {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	metrics := observability.GetMetrics()
	metrics.RecordScreeningRequest(ticker)
	timer := metrics.NewTimer()

	verdict := s.screen(ctx, ticker)
	timer.ObserveScreening(string(verdict.Status))
	return verdict
}

func (s *Screener) screen(ctx context.Context, ticker string) *models.Verdict {
	metrics := observability.GetMetrics()
	logger := observability.WithTicker(ticker)

	// Stage 1: cache lookup. A stored verdict is returned verbatim without
	// re-running any evaluator. A failed lookup is treated as a miss so a
	// store outage degrades to recomputation, not an error verdict.
	cached, err := s.store.GetVerdict(ctx, ticker)
	if err != nil {
		logger.Warn("verdict lookup failed, treating as cache miss", "error", err)
	}
	if cached != nil {
		metrics.RecordCacheHit()
		metrics.RecordVerdict(string(cached.Status), "cache")
		return cached
	}
	metrics.RecordCacheMiss()

	// Stage 2: fetch profile and financials. Either failing ends the
	// pipeline with an uncached Error verdict.
	profile, err := s.marketData.GetCompanyProfile(ctx, ticker)
	if err != nil {
		logger.Error("profile fetch failed", "error", err)
		metrics.RecordScreeningError(ticker, "profile_fetch")
		metrics.RecordVerdict(string(models.VerdictError), "fetch")
		return models.NewVerdict(ticker, models.VerdictError, err.Error())
	}

	snapshot, err := s.marketData.GetFinancialSnapshot(ctx, ticker)
	if err != nil {
		logger.Error("financials fetch failed", "error", err)
		metrics.RecordScreeningError(ticker, "financials_fetch")
		metrics.RecordVerdict(string(models.VerdictError), "fetch")
		verdict := models.NewVerdict(ticker, models.VerdictError, err.Error())
		verdict.CompanyName = profile.CompanyName
		return verdict
	}

	// Stage 3: sector exclusion. Absolute and cheap, so it short-circuits
	// before any paid news or classifier call.
	if excluded, reason := s.sector.Evaluate(profile.Sector, profile.Industry); excluded {
		logger.Info("sector exclusion", "reason", reason)
		verdict := models.NewVerdict(ticker, models.VerdictNonCompliant, reason)
		verdict.CompanyName = profile.CompanyName
		return s.persist(ctx, verdict, "sector")
	}

	// Stage 4: financial ratios. Any breach is decisive and all breaches
	// are reported together.
	report, breaches := s.financial.Evaluate(snapshot, profile.MarketCap)
	if len(breaches) > 0 {
		reason := strings.Join(breaches, "; ")
		logger.Info("financial ratio breach", "reason", reason)
		verdict := models.NewVerdict(ticker, models.VerdictNonCompliant, reason)
		verdict.CompanyName = profile.CompanyName
		verdict.Ratios = &report
		return s.persist(ctx, verdict, "financial")
	}

	// Stage 5: textual evidence decides the remaining companies.
	label, reason, err := s.textual.Evaluate(ctx, profile)
	if err != nil {
		logger.Error("textual evaluation failed", "error", err)
		metrics.RecordScreeningError(ticker, "textual")
		metrics.RecordVerdict(string(models.VerdictError), "textual")
		verdict := models.NewVerdict(ticker, models.VerdictError, err.Error())
		verdict.CompanyName = profile.CompanyName
		return verdict
	}

	verdict := models.NewVerdict(ticker, label.Status(), reason)
	verdict.CompanyName = profile.CompanyName
	verdict.Ratios = &report
	return s.persist(ctx, verdict, "textual")
}

// persist stores a decisive verdict. Store failures are logged and the
// verdict returned anyway: the caller still gets an answer, it just is not
// cached.
func (s *Screener) persist(ctx context.Context, verdict *models.Verdict, stage string) *models.Verdict {
	metrics := observability.GetMetrics()
	metrics.RecordVerdict(string(verdict.Status), stage)

	if err := s.store.PutVerdict(ctx, verdict); err != nil {
		observability.WithStage(stage).Warn("failed to store verdict", "ticker", verdict.Ticker, "error", err)
	}

	return verdict
}

// ScreenAll screens each ticker independently and returns one verdict per
// ticker in input order. Tickers run concurrently under a bounded worker
// budget; one ticker's failure never disturbs the others. Each ticker gets
// its own timeout so a stalled collaborator cannot hang the batch.
func (s *Screener) ScreenAll(ctx context.Context, tickers []string) []*models.Verdict {
	results := make([]*models.Verdict, len(tickers))

	concurrency := s.cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			tickerCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
			defer cancel()

			results[idx] = s.Screen(tickerCtx, t)
		}(i, ticker)
	}
	wg.Wait()

	return results
}
