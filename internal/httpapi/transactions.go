package httpapi

import (
	"net/http"
	"strings"
	"time"

	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/receipt"
)

const dateLayout = "2006-01-02"

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.ledger.Transactions(view.Scope, filter))
}

func (h *Handler) handleTransactionExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}
	txns := h.ledger.Transactions(view.Scope, filter)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	_ = ledger.WriteCSV(w, txns)
}

func (h *Handler) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ledger.Summarize(h.ledger.Transactions(view.Scope, filter)))
}

func (h *Handler) handleTransactionActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "receipt" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	txn, err := h.ledger.Transaction(view.Scope, parts[0])
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	branchName := txn.BranchID
	if branch, found := h.ledger.Branch(txn.BranchID); found {
		branchName = branch.Name
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = receipt.RenderReceipt(w, branchName, txn)
}

func parseTransactionFilter(w http.ResponseWriter, r *http.Request) (ledger.TransactionFilter, bool) {
	query := r.URL.Query()
	var filter ledger.TransactionFilter
	for name, target := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		raw := strings.TrimSpace(query.Get(name))
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", name+" must be YYYY-MM-DD")
			return ledger.TransactionFilter{}, false
		}
		*target = day
	}
	filter.Category = strings.TrimSpace(query.Get("category"))
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_category", "unknown vehicle category")
		return ledger.TransactionFilter{}, false
	}
	return filter, true
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.ledger.ActivityLogs(view.Scope))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	stats, err := h.ledger.Stats(view.Scope)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAssistantContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	snapshot, err := h.ledger.AssistantSnapshot(view.Scope)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ledger.Services())
}
