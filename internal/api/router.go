package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/stock-advisor/internal/analysis"
	"github.com/mohamedkhairy/stock-advisor/internal/data"
	"github.com/mohamedkhairy/stock-advisor/internal/storage"
)

// Pinger is implemented by dependencies that can report readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API exposes
type Deps struct {
	Service  *analysis.Service
	Storage  storage.AnalysisStorage
	Searcher data.Searcher // optional
	Ready    []Pinger      // checked by /ready
}

// NewRouter registers every route on a new router
func NewRouter(deps Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(MetricsMiddleware())

	analysisHandler := NewAnalysisHandler(deps.Service)
	historyHandler := NewHistoryHandler(deps.Storage)
	ruleHandler := NewRuleHandler(deps.Service.Rules())

	v1 := router.PathPrefix("/api/v1").Subrouter()

	// Analysis endpoints
	v1.HandleFunc("/analyze/{symbol}", analysisHandler.Analyze).Methods("GET", "POST")
	v1.HandleFunc("/evaluate", analysisHandler.Evaluate).Methods("POST")

	// History endpoints
	v1.HandleFunc("/history", historyHandler.ListHistory).Methods("GET")
	v1.HandleFunc("/history/{id}", historyHandler.GetAnalysis).Methods("GET")

	// Rule set endpoints
	v1.HandleFunc("/rules", ruleHandler.ListRules).Methods("GET")
	v1.HandleFunc("/rules/reload", ruleHandler.ReloadRules).Methods("POST")
	v1.HandleFunc("/rules/validate", ruleHandler.ValidateRules).Methods("POST")

	if deps.Searcher != nil {
		searchHandler := NewSearchHandler(deps.Searcher)
		v1.HandleFunc("/search", searchHandler.Search).Methods("GET")
	}

	// Health check endpoints
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		for _, p := range deps.Ready {
			if err := p.Ping(r.Context()); err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	return router
}

// NewHandler wraps the router in the standard middleware chain
func NewHandler(deps Deps, jwtSecret string, rateLimitRPS int) http.Handler {
	middlewares := ChainMiddleware(
		CORSMiddleware(),
		LoggingMiddleware(),
		ErrorHandlingMiddleware(),
		AuthMiddleware(NewAuthManager(jwtSecret)),
		RateLimitMiddleware(rateLimitRPS),
	)
	return middlewares(NewRouter(deps))
}
