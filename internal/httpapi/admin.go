package httpapi

import (
	"net/http"
	"strings"

	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/models"
)

type branchRequest struct {
	BranchID string        `json:"branch_id"`
	Name     string        `json:"name"`
	Zones    []models.Zone `json:"zones"`
}

type branchPatchRequest struct {
	Name  *string       `json:"name"`
	Zones []models.Zone `json:"zones"`
}

type userRequest struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	BranchID    string `json:"branch_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Caption     string `json:"caption"`
	AvatarURL   string `json:"avatar_url"`
}

type userPatchRequest struct {
	Username    *string `json:"username"`
	Role        *string `json:"role"`
	BranchID    *string `json:"branch_id"`
	FullName    *string `json:"full_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Caption     *string `json:"caption"`
	AvatarURL   *string `json:"avatar_url"`
}

func (h *Handler) handleRates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ledger.Rates())
	case http.MethodPut:
		view, ok := requireAdmin(w, r)
		if !ok {
			return
		}
		var rates models.Rates
		if !decodeJSON(w, r, &rates) {
			return
		}
		if err := h.ledger.UpdateRates(r.Context(), view.Scope, rates); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.ledger.Rates())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleBranches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ledger.Branches())
	case http.MethodPost:
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var req branchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		branch, err := h.ledger.CreateBranch(r.Context(), ledger.BranchInput{
			BranchID: req.BranchID,
			Name:     req.Name,
			Zones:    req.Zones,
		})
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, branch)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleBranchActions(w http.ResponseWriter, r *http.Request) {
	branchID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/branches/"), "/")
	if branchID == "" || strings.Contains(branchID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req branchPatchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		branch, err := h.ledger.UpdateBranch(r.Context(), branchID, ledger.BranchPatch{Name: req.Name, Zones: req.Zones})
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, branch)
	case http.MethodDelete:
		if err := h.ledger.RemoveBranch(r.Context(), branchID); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ledger.Users())
	case http.MethodPost:
		var req userRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := h.ledger.RegisterUser(r.Context(), ledger.UserInput{
			Username:    req.Username,
			Role:        strings.TrimSpace(req.Role),
			BranchID:    req.BranchID,
			FullName:    strings.TrimSpace(req.FullName),
			Email:       strings.TrimSpace(req.Email),
			PhoneNumber: strings.TrimSpace(req.PhoneNumber),
			Caption:     strings.TrimSpace(req.Caption),
			AvatarURL:   strings.TrimSpace(req.AvatarURL),
		})
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUserActions(w http.ResponseWriter, r *http.Request) {
	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	if userID == "" || strings.Contains(userID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req userPatchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := h.ledger.UpdateUser(r.Context(), userID, ledger.UserPatch{
			Username:    req.Username,
			Role:        req.Role,
			BranchID:    req.BranchID,
			FullName:    req.FullName,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Caption:     req.Caption,
			AvatarURL:   req.AvatarURL,
		})
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodDelete:
		if err := h.ledger.RemoveUser(r.Context(), userID); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if err := h.ledger.ResetBranchData(r.Context(), view.Scope); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
