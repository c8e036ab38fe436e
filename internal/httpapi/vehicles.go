package httpapi

import (
	"net/http"
	"strings"

	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/receipt"

	"github.com/shopspring/decimal"
)

type registerVehicleRequest struct {
	PlateNumber       string   `json:"plate_number"`
	Category          string   `json:"category"`
	Model             string   `json:"model"`
	Color             string   `json:"color"`
	ContactNumber     string   `json:"contact_number"`
	Notes             string   `json:"notes"`
	RequestedServices []string `json:"requested_services"`
	SlotID            *int     `json:"slot_id"`
}

type checkoutRequest struct {
	Services        []string         `json:"services"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

func (h *Handler) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	slots, err := h.ledger.Slots(view.Scope)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *Handler) handleVehicles(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ledger.ActiveVehicles(view.Scope))
	case http.MethodPost:
		var req registerVehicleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.PlateNumber) == "" {
			writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "plate_number is required")
			return
		}
		vehicle, err := h.ledger.RegisterVehicle(r.Context(), view.Scope, ledger.RegisterInput{
			PlateNumber:       req.PlateNumber,
			Category:          strings.TrimSpace(req.Category),
			Model:             strings.TrimSpace(req.Model),
			Color:             strings.TrimSpace(req.Color),
			ContactNumber:     strings.TrimSpace(req.ContactNumber),
			Notes:             strings.TrimSpace(req.Notes),
			RequestedServices: req.RequestedServices,
			SlotID:            req.SlotID,
		})
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, vehicle)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleVehicleActions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	vehicleID := parts[0]

	switch parts[1] {
	case "quote":
		h.handleQuote(w, r, vehicleID)
	case "checkout":
		h.handleCheckout(w, r, vehicleID)
	case "ticket":
		h.handleTicket(w, r, vehicleID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request, vehicleID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var req checkoutRequest
	if query.Has("services") {
		req.Services = splitList(query.Get("services"))
	}
	for name, target := range map[string]**decimal.Decimal{
		"discount_amount":  &req.DiscountAmount,
		"discount_percent": &req.DiscountPercent,
	} {
		raw := strings.TrimSpace(query.Get(name))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", name+" must be a number")
			return
		}
		*target = &value
	}

	fee, err := h.ledger.QuoteCheckout(r.Context(), view.Scope, vehicleID, req.input())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fee)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request, vehicleID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.ledger.CheckoutVehicle(r.Context(), view.Scope, vehicleID, req.input())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (req checkoutRequest) input() ledger.CheckoutInput {
	return ledger.CheckoutInput{
		Services: req.Services,
		Discount: ledger.Discount{
			Amount:  req.DiscountAmount,
			Percent: req.DiscountPercent,
		},
	}
}

func (h *Handler) handleTicket(w http.ResponseWriter, r *http.Request, vehicleID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	vehicle, err := h.ledger.Vehicle(view.Scope, vehicleID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	branchName := vehicle.BranchID
	if branch, found := h.ledger.Branch(vehicle.BranchID); found {
		branchName = branch.Name
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = receipt.RenderTicket(w, branchName, vehicle)
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
