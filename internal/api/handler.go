package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Innominate-Dev/Halal-Stock-Screener/config"
	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/repository"
	"github.com/Innominate-Dev/Halal-Stock-Screener/screening"
	"github.com/Innominate-Dev/Halal-Stock-Screener/services"
)

// tickerPattern accepts the symbol shapes major exchanges use (BRK.B, RDS-A)
var tickerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.\-]{0,9}$`)

// maxBatchSize caps one batch request
const maxBatchSize = 50

// Handler handles HTTP API requests
type Handler struct {
	screener *screening.Screener
	repo     repository.VerdictRepositoryInterface
	cfg      *config.Config
}

// NewHandler creates a new Handler
func NewHandler(screener *screening.Screener, repo repository.VerdictRepositoryInterface, cfg *config.Config) *Handler {
	return &Handler{screener: screener, repo: repo, cfg: cfg}
}

// HandleIndex identifies the service
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]string{"message": "Halal Screener API"})
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"verdict_store": "unknown",
		},
	}

	if h.repo != nil {
		if err := h.repo.Health(r.Context()); err == nil {
			status["services"].(map[string]string)["verdict_store"] = "connected"
		} else {
			status["services"].(map[string]string)["verdict_store"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["verdict_store"] = "not_configured"
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	// Check if any breakers are open (degraded state)
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleScreenTicker screens one ticker and returns its verdict. The
// screener never fails outright: fetch failures come back as Error-status
// verdicts with HTTP 200.
func (h *Handler) HandleScreenTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if !tickerPattern.MatchString(ticker) {
		h.jsonError(w, "Invalid ticker symbol", http.StatusBadRequest)
		return
	}

	verdict := h.screener.Screen(r.Context(), ticker)
	h.jsonResponse(w, verdict)
}

// BatchScreenRequest represents a batch screening request
type BatchScreenRequest struct {
	Tickers []string `json:"tickers"`
}

// HandleScreenBatch screens a list of tickers and returns one verdict per
// ticker in request order
func (h *Handler) HandleScreenBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Tickers) == 0 {
		h.jsonError(w, "Tickers list is required", http.StatusBadRequest)
		return
	}
	if len(req.Tickers) > maxBatchSize {
		h.jsonError(w, "Too many tickers in one batch", http.StatusBadRequest)
		return
	}
	for _, ticker := range req.Tickers {
		if !tickerPattern.MatchString(strings.TrimSpace(ticker)) {
			h.jsonError(w, "Invalid ticker symbol: "+ticker, http.StatusBadRequest)
			return
		}
	}

	verdicts := h.screener.ScreenAll(r.Context(), req.Tickers)
	h.jsonResponse(w, map[string]interface{}{"verdicts": verdicts})
}

// HandleGetHalalStocks screens the configured default universe and returns
// the verdicts
func (h *Handler) HandleGetHalalStocks(w http.ResponseWriter, r *http.Request) {
	verdicts := h.screener.ScreenAll(r.Context(), h.cfg.Screening.Universe)
	h.jsonResponse(w, map[string]interface{}{"halal": verdicts})
}

// HandleGetVerdict returns the cached verdict for a ticker without running
// the pipeline
func (h *Handler) HandleGetVerdict(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if !tickerPattern.MatchString(ticker) {
		h.jsonError(w, "Invalid ticker symbol", http.StatusBadRequest)
		return
	}

	verdict, err := h.repo.GetVerdict(r.Context(), strings.ToUpper(ticker))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if verdict == nil {
		h.jsonError(w, "No verdict for ticker", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, verdict)
}

// HandleListVerdicts returns stored verdicts, optionally filtered by status
func (h *Handler) HandleListVerdicts(w http.ResponseWriter, r *http.Request) {
	status := models.VerdictStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.VerdictCompliant, models.VerdictNonCompliant, models.VerdictDoubtful, models.VerdictError:
	default:
		h.jsonError(w, "Invalid status filter", http.StatusBadRequest)
		return
	}

	verdicts, err := h.repo.ListVerdicts(r.Context(), status, 50)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if verdicts == nil {
		verdicts = []models.Verdict{}
	}

	h.jsonResponse(w, map[string]interface{}{"verdicts": verdicts})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
