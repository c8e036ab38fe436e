package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"

	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/session"
	"smartpark/ledger-service/internal/store"
)

type Handler struct {
	ledger   *ledger.Ledger
	sessions *session.Manager
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(l *ledger.Ledger, sessions *session.Manager) *Handler {
	return &Handler{
		ledger:   l,
		sessions: sessions,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/api/session", h.handleSession)
	mux.HandleFunc("/api/session/login", h.handleLogin)
	mux.HandleFunc("/api/session/logout", h.handleLogout)
	mux.HandleFunc("/api/session/branch", h.handleSwitchBranch)
	mux.HandleFunc("/api/slots", h.handleSlots)
	mux.HandleFunc("/api/vehicles", h.handleVehicles)
	mux.HandleFunc("/api/vehicles/", h.handleVehicleActions)
	mux.HandleFunc("/api/transactions", h.handleTransactions)
	mux.HandleFunc("/api/transactions/export", h.handleTransactionExport)
	mux.HandleFunc("/api/transactions/summary", h.handleTransactionSummary)
	mux.HandleFunc("/api/transactions/", h.handleTransactionActions)
	mux.HandleFunc("/api/activity", h.handleActivity)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/assistant/context", h.handleAssistantContext)
	mux.HandleFunc("/api/rates", h.handleRates)
	mux.HandleFunc("/api/services", h.handleServices)
	mux.HandleFunc("/api/branches", h.handleBranches)
	mux.HandleFunc("/api/branches/", h.handleBranchActions)
	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUserActions)
	mux.HandleFunc("/api/admin/reset", h.handleReset)
	return AuthMiddleware(h.sessions, mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

var errorCodes = []struct {
	err  error
	code string
}{
	{store.ErrInvalidPlate, "invalid_plate"},
	{store.ErrInvalidCategory, "invalid_category"},
	{store.ErrInvalidZone, "invalid_zone"},
	{store.ErrInvalidBranch, "invalid_branch"},
	{store.ErrInvalidUser, "invalid_user"},
	{store.ErrInvalidRate, "invalid_rate"},
	{store.ErrInvalidDiscount, "invalid_discount"},
	{store.ErrUnknownService, "unknown_service"},
	{store.ErrReservedBranchID, "reserved_branch_id"},
	{store.ErrDuplicatePlate, "duplicate_plate"},
	{store.ErrSlotUnavailable, "slot_unavailable"},
	{store.ErrSlotInUse, "slot_in_use"},
	{store.ErrDuplicateBranch, "duplicate_branch"},
	{store.ErrDuplicateUser, "duplicate_user"},
	{store.ErrLastBranch, "last_branch"},
	{store.ErrBranchNotFound, "branch_not_found"},
	{store.ErrVehicleNotFound, "vehicle_not_found"},
	{store.ErrTransactionNotFound, "transaction_not_found"},
	{store.ErrUserNotFound, "user_not_found"},
	{store.ErrLotFull, "lot_full"},
	{store.ErrNoActiveBranch, "no_active_branch"},
	{store.ErrAggregateScope, "aggregate_scope"},
	{store.ErrAccessDenied, "access_denied"},
	{store.ErrInvalidCredentials, "invalid_credentials"},
	{store.ErrSessionNotFound, "unauthorized"},
}

func mapError(err error) (int, string, string) {
	code := "internal_error"
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			code = entry.code
			break
		}
	}

	switch {
	case errors.Is(err, store.ErrInvalidCredentials), errors.Is(err, store.ErrSessionNotFound):
		return http.StatusUnauthorized, code, err.Error()
	case errors.Is(err, store.ErrNoActiveBranch), errors.Is(err, store.ErrAggregateScope):
		return http.StatusConflict, code, err.Error()
	}

	switch store.KindOf(err) {
	case store.KindValidation:
		return http.StatusBadRequest, code, err.Error()
	case store.KindConflict, store.KindCapacity:
		return http.StatusConflict, code, err.Error()
	case store.KindNotFound:
		return http.StatusNotFound, code, err.Error()
	case store.KindAuthorization:
		return http.StatusForbidden, code, err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)
	writeError(w, requestIDFromRequest(r), status, code, msg)
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
