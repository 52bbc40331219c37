package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mohamedkhairy/stock-advisor/internal/analysis"
	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/internal/rules"
	"github.com/mohamedkhairy/stock-advisor/internal/scorecard"
	"github.com/mohamedkhairy/stock-advisor/internal/storage"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

const maxBodyBytes = 1 << 20

// AnalysisHandler handles analysis and ad-hoc evaluation endpoints
type AnalysisHandler struct {
	service *analysis.Service
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// analyzeResponse adds the most influential triggered rules to a record
type analyzeResponse struct {
	*models.AnalysisRecord
	Influential  []models.TriggeredRule `json:"influential"`
	OverallLabel string                 `json:"overall_label"`
}

// Analyze handles GET|POST /api/v1/analyze/{symbol}?period=60d&interval=1d
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	opts := analysis.Options{
		Period:   r.URL.Query().Get("period"),
		Interval: r.URL.Query().Get("interval"),
	}

	record, err := h.service.Analyze(r.Context(), symbol, opts)
	if err != nil {
		code, msg := analysisErrorStatus(err)
		if code >= http.StatusInternalServerError {
			logger.ErrorsTotal.WithLabelValues("api", "analyze").Inc()
			logger.Error("Analysis failed",
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
		}
		respondWithError(w, code, msg)
		return
	}

	respondWithJSON(w, http.StatusOK, analyzeResponse{
		AnalysisRecord: record,
		Influential:    scorecard.RankInfluential(record.Triggered, 3),
		OverallLabel:   scorecard.Label(record.Overall),
	})
}

// EvaluateRequest is the body of POST /api/v1/evaluate
type EvaluateRequest struct {
	Indicators   models.IndicatorSet   `json:"indicators"`
	Fundamentals models.FundamentalSet `json:"fundamentals"`
}

// Evaluate handles POST /api/v1/evaluate
func (h *AnalysisHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	indicators, err := normalizeIndicators(req.Indicators)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Evaluate(indicators, req.Fundamentals))
}

// normalizeIndicators turns json.Number values into float64 and rejects
// non-scalar values
func normalizeIndicators(in models.IndicatorSet) (models.IndicatorSet, error) {
	out := make(models.IndicatorSet, len(in))
	for k, v := range in {
		switch n := v.(type) {
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, errors.New("indicator " + k + ": invalid number")
			}
			out[k] = f
		case bool, string:
			out[k] = n
		case nil:
			// null means absent
		default:
			return nil, errors.New("indicator " + k + ": unsupported value type")
		}
	}
	return out, nil
}

func analysisErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNoData):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrInvalidSymbol),
		errors.Is(err, data.ErrInvalidPeriod),
		errors.Is(err, data.ErrInvalidInterval):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadGateway, "Failed to fetch market data"
	}
}

// HistoryHandler handles persisted analysis endpoints
type HistoryHandler struct {
	storage storage.AnalysisStorage
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(s storage.AnalysisStorage) *HistoryHandler {
	return &HistoryHandler{storage: s}
}

// ListHistory handles GET /api/v1/history?limit=N&offset=M&symbol=S
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.HistoryFilter{
		Symbol: strings.ToUpper(query.Get("symbol")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		filter.Limit = limit
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		filter.Offset = offset
	}

	records, err := h.storage.History(r.Context(), filter)
	if err != nil {
		logger.Error("Failed to query history", logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": records,
		"count":    len(records),
	})
}

// GetAnalysis handles GET /api/v1/history/{id}
func (h *HistoryHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.storage.Get(r.Context(), id)
	if errors.Is(err, models.ErrAnalysisNotFound) {
		respondWithError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		logger.Error("Failed to get analysis", logger.String("id", id), logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// RuleHandler handles rule set endpoints
type RuleHandler struct {
	store *rules.Store
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(store *rules.Store) *RuleHandler {
	return &RuleHandler{store: store}
}

// ListRules handles GET /api/v1/rules
func (h *RuleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rs := h.store.Current()
	list := rs.Rules()
	if list == nil {
		list = []rules.Rule{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"source":    rs.Source(),
		"loaded_at": rs.LoadedAt(),
		"rules":     list,
		"count":     len(list),
		"skipped":   h.store.Report().Skipped,
	})
}

// ReloadRules handles POST /api/v1/rules/reload
func (h *RuleHandler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	path := h.store.Path()
	if path == "" {
		respondWithError(w, http.StatusConflict, "No rules file configured")
		return
	}

	report, err := h.store.LoadFile(path)
	if err != nil {
		logger.Error("Failed to reload rules", logger.String("path", path), logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to reload rules")
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// ValidateRules handles POST /api/v1/rules/validate with a rules text body.
// The active rule set is left untouched.
func (h *RuleHandler) ValidateRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	rs, report, err := h.store.Parser().ParseString("request", string(body))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  report.OK(),
		"report": report,
		"rules":  rs.Rules(),
	})
}

// SearchHandler resolves free text to ticker symbols
type SearchHandler struct {
	searcher data.Searcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher data.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search handles GET /api/v1/search?q=apple&limit=5
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > 25 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = l
	}

	results, err := h.searcher.Search(r.Context(), q, limit)
	if errors.Is(err, data.ErrSearchUnsupported) {
		respondWithError(w, http.StatusNotImplemented, err.Error())
		return
	}
	if err != nil {
		logger.Warn("Symbol search failed", logger.String("query", q), logger.ErrorField(err))
		respondWithError(w, http.StatusBadGateway, "Symbol search failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
