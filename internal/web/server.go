package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/elys-network/ampfarm/internal/logger"
	"github.com/elys-network/ampfarm/internal/state"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/utils"
	"github.com/elys-network/ampfarm/internal/vault"
)

// LP tokens use six decimals like the rest of the chain's assets.
const lpDisplayPrecision = 6

// WebServer exposes the vault queries and the event history over HTTP
type WebServer struct {
	router  *mux.Router
	port    string
	vault   vault.VaultManager
	history bool
	started time.Time
	logger  zerolog.Logger
	server  *http.Server
}

// NewWebServer creates a new web server instance. history enables the
// endpoints backed by the Postgres event store.
func NewWebServer(port string, vm vault.VaultManager, history bool) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:  mux.NewRouter(),
		port:    port,
		vault:   vm,
		history: history,
		started: time.Now(),
		logger:  logger.GetForComponent("web_server"),
	}

	server.setupRoutes()
	server.server = &http.Server{
		Addr:         ":" + port,
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server
}

// Handler returns the routed handler, middleware included.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/config", ws.handleGetConfig).Methods("GET")
	api.HandleFunc("/state", ws.handleGetState).Methods("GET")
	api.HandleFunc("/users/{address}", ws.handleGetUser).Methods("GET")
	api.HandleFunc("/simulate/bond", ws.handleSimulateBond).Methods("GET")
	api.HandleFunc("/simulate/unbond", ws.handleSimulateUnbond).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")
	api.HandleFunc("/events/summary", ws.handleGetEventSummary).Methods("GET")
	api.HandleFunc("/events/tx/{txID}", ws.handleGetEventsByTx).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start serves until Shutdown is called. After Shutdown it returns at once.
func (ws *WebServer) Start() error {
	ws.logger.Info().Str("port", ws.port).Msg("Starting web server")

	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *WebServer) Shutdown(ctx context.Context) error {
	return ws.server.Shutdown(ctx)
}

// handleHealth reports process stats and whether the vault and history database answer
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false
	vaultInfo := map[string]interface{}{"healthy": true}
	if st, err := ws.vault.GetState(r.Context()); err != nil {
		hasErrors = true
		vaultInfo["healthy"] = false
		vaultInfo["error"] = err.Error()
	} else {
		vaultInfo["total_bond_share"] = st.TotalBondShare
		vaultInfo["exchange_rate"] = st.ExchangeRate
		if rate, err := utils.DecToFloat64(st.ExchangeRate); err == nil {
			vaultInfo["exchange_rate_float"] = rate
		}
		if lp, err := utils.SDKIntToFloat64(st.TotalLPDeposit, lpDisplayPrecision); err == nil {
			vaultInfo["total_lp_display"] = lp
		}
	}

	historyInfo := map[string]interface{}{"enabled": ws.history}
	if ws.history {
		if err := state.TestDBConnection(); err != nil {
			hasErrors = true
			historyInfo["healthy"] = false
		} else {
			historyInfo["healthy"] = true
			if round, err := state.GetCurrentHarvestRound(); err == nil {
				historyInfo["harvest_round"] = round
			}
		}
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.started).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "ampfarm",
			"version": "1.0.0",
		},
		"vault":   vaultInfo,
		"history": historyInfo,
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}
	ws.writeJSONResponse(w, statusCode, response)
}

func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := ws.vault.GetConfig(r.Context())
	if err != nil {
		ws.writeVaultError(w, err, "Failed to retrieve vault config")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, cfg)
}

func (ws *WebServer) handleGetState(w http.ResponseWriter, r *http.Request) {
	st, err := ws.vault.GetState(r.Context())
	if err != nil {
		ws.writeVaultError(w, err, "Failed to retrieve vault state")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, st)
}

func (ws *WebServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	info, err := ws.vault.GetUserInfo(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		ws.writeVaultError(w, err, "Failed to retrieve user position")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, info)
}

func (ws *WebServer) handleSimulateBond(w http.ResponseWriter, r *http.Request) {
	amount, ok := ws.amountParam(w, r, "amount")
	if !ok {
		return
	}
	share, err := ws.vault.SimulateBond(r.Context(), amount)
	if err != nil {
		ws.writeVaultError(w, err, "Failed to simulate bond")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, vault.SimulateBondResponse{BondShare: share})
}

func (ws *WebServer) handleSimulateUnbond(w http.ResponseWriter, r *http.Request) {
	shares, ok := ws.amountParam(w, r, "shares")
	if !ok {
		return
	}
	lp, err := ws.vault.SimulateUnbond(r.Context(), shares)
	if err != nil {
		ws.writeVaultError(w, err, "Failed to simulate unbond")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, vault.SimulateUnbondResponse{LPAmount: lp})
}

// handleGetEvents returns recent vault events, optionally filtered by action
func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}
	actions := r.URL.Query()["action"]

	events, err := state.GetRecentVaultEvents(limit, actions...)
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get recent vault events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetEventsByTx(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}
	txID := mux.Vars(r)["txID"]
	events, err := state.GetVaultEventsByTx(txID)
	if err != nil {
		ws.logger.Error().Err(err).Str("txID", txID).Msg("Failed to get events for tx")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	if len(events) == 0 {
		ws.writeErrorResponse(w, http.StatusNotFound, "Transaction not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, events)
}

func (ws *WebServer) handleGetEventSummary(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}
	summary, err := state.GetEventSummary()
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get event summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve event summary")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, summary)
}

func (ws *WebServer) requireHistory(w http.ResponseWriter) bool {
	if !ws.history {
		ws.writeErrorResponse(w, http.StatusNotImplemented, "Event history is not configured")
		return false
	}
	return true
}

func (ws *WebServer) amountParam(w http.ResponseWriter, r *http.Request, name string) (sdkmath.Int, bool) {
	amount, err := utils.ParseAmount(r.URL.Query().Get(name))
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid "+name)
		return sdkmath.Int{}, false
	}
	return amount, true
}

// writeVaultError maps vault errors to HTTP statuses
func (ws *WebServer) writeVaultError(w http.ResponseWriter, err error, message string) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrInvalidAddress),
		errors.Is(err, types.ErrInvalidRequest),
		errors.Is(err, types.ErrArithmeticUnderflow),
		errors.Is(err, types.ErrArithmeticOverflow),
		errors.Is(err, types.ErrEmptyVault),
		errors.Is(err, types.ErrDivideByZero):
		statusCode = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound), errors.Is(err, state.ErrConfigNotFound), errors.Is(err, state.ErrStateNotFound):
		statusCode = http.StatusNotFound
	}
	if statusCode == http.StatusInternalServerError {
		ws.logger.Error().Err(err).Msg(message)
	}
	ws.writeErrorResponse(w, statusCode, message+": "+err.Error())
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		ws.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
