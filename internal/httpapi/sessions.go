package httpapi

import (
	"net/http"
	"strings"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
}

type switchBranchRequest struct {
	BranchID string `json:"branch_id"`
}

type sessionResponse struct {
	SessionID string      `json:"session_id,omitempty"`
	User      models.User `json:"user"`
	BranchID  string      `json:"branch_id"`
	Aggregate bool        `json:"aggregate"`
	Resolved  bool        `json:"resolved"`
}

func newSessionResponse(sessionID string, view session.View) sessionResponse {
	return sessionResponse{
		SessionID: sessionID,
		User:      view.User,
		BranchID:  view.BranchID,
		Aggregate: view.Scope.Aggregate,
		Resolved:  view.Resolved,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "username is required")
		return
	}

	sessionID, view, err := h.sessions.Login(req.Username)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sessionID, view))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	h.sessions.Logout(info.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("", info.View))
}

func (h *Handler) handleSwitchBranch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	var req switchBranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.BranchID = strings.TrimSpace(req.BranchID)
	if req.BranchID == "" {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "branch_id is required")
		return
	}

	view, err := h.sessions.SwitchBranch(info.SessionID, req.BranchID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("", view))
}
