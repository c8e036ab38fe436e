package receipt

import (
	"strings"
	"testing"
	"time"

	"smartpark/ledger-service/internal/models"

	"github.com/shopspring/decimal"
)

func TestRenderTicket(t *testing.T) {
	var buf strings.Builder
	vehicle := models.Vehicle{
		VehicleID:   "v-1",
		PlateNumber: "ABC-1234",
		Category:    models.CategoryCar,
		Model:       "Civic",
		Color:       "Blue",
		SlotID:      12,
		EntryTime:   time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC),
	}
	if err := RenderTicket(&buf, "Downtown Central", vehicle); err != nil {
		t.Fatalf("render ticket: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Downtown Central", "Plate:   ABC-1234", "Civic / Blue", "Slot:    12", "Entry:   2026-03-10 09:05", "Ticket:  v-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("ticket missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReceipt(t *testing.T) {
	var buf strings.Builder
	txn := models.Transaction{
		TransactionID:   "t-1",
		PlateNumber:     "ABC-1234",
		Category:        models.CategoryCar,
		EntryTime:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		ExitTime:        time.Date(2026, 3, 10, 10, 15, 0, 0, time.UTC),
		DurationMinutes: 75,
		BillableHours:   2,
		BaseAmount:      decimal.NewFromInt(10),
		ExtraAmount:     decimal.RequireFromString("3.99"),
		DiscountAmount:  decimal.NewFromInt(2),
		FinalAmount:     decimal.RequireFromString("11.99"),
		Items:           []string{"Tire Inflation"},
	}
	if err := RenderReceipt(&buf, "Downtown Central", txn); err != nil {
		t.Fatalf("render receipt: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Duration: 75 min (2 h)", "Parking:  $10.00", "  + Tire Inflation", "Extras:   $3.99", "Discount: -$2.00", "TOTAL:    $11.99"} {
		if !strings.Contains(out, want) {
			t.Fatalf("receipt missing %q:\n%s", want, out)
		}
	}
}
