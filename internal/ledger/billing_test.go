package ledger

import (
	"errors"
	"testing"
	"time"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestBillableDuration(t *testing.T) {
	entry := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		elapsed     time.Duration
		wantMinutes int64
		wantHours   int64
	}{
		{name: "zero", elapsed: 0, wantMinutes: 0, wantHours: 0},
		{name: "one millisecond", elapsed: time.Millisecond, wantMinutes: 1, wantHours: 1},
		{name: "exact hour", elapsed: time.Hour, wantMinutes: 60, wantHours: 1},
		{name: "partial minute rounds up", elapsed: 60*time.Minute + time.Second, wantMinutes: 61, wantHours: 2},
		{name: "seventy five minutes", elapsed: 75 * time.Minute, wantMinutes: 75, wantHours: 2},
		{name: "clock skew", elapsed: -time.Minute, wantMinutes: 0, wantHours: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, hours := BillableDuration(entry, entry.Add(tt.elapsed))
			if minutes != tt.wantMinutes || hours != tt.wantHours {
				t.Fatalf("expected %d min / %d h, got %d min / %d h", tt.wantMinutes, tt.wantHours, minutes, hours)
			}
		})
	}
}

func TestComputeFee(t *testing.T) {
	entry := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(75 * time.Minute)
	air := models.ServiceItem{ServiceID: "air", Label: "Tire Inflation", Price: dec("3.99")}
	wash := models.ServiceItem{ServiceID: "wash", Label: "Car Wash", Price: dec("15.00")}

	tests := []struct {
		name      string
		extras    []models.ServiceItem
		discount  decimal.Decimal
		wantBase  string
		wantExtra string
		wantFinal string
	}{
		{name: "no extras", extras: nil, discount: decimal.Zero, wantBase: "10", wantExtra: "0", wantFinal: "10"},
		{name: "extra and discount", extras: []models.ServiceItem{air}, discount: dec("2.00"), wantBase: "10", wantExtra: "3.99", wantFinal: "11.99"},
		{name: "discount exceeds total", extras: []models.ServiceItem{wash}, discount: dec("100"), wantBase: "10", wantExtra: "15", wantFinal: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := ComputeFee(entry, exit, dec("5"), tt.extras, tt.discount)
			if fee.DurationMinutes != 75 || fee.BillableHours != 2 {
				t.Fatalf("unexpected duration %d min / %d h", fee.DurationMinutes, fee.BillableHours)
			}
			if !fee.BaseAmount.Equal(dec(tt.wantBase)) {
				t.Fatalf("expected base %s, got %s", tt.wantBase, fee.BaseAmount)
			}
			if !fee.ExtraAmount.Equal(dec(tt.wantExtra)) {
				t.Fatalf("expected extra %s, got %s", tt.wantExtra, fee.ExtraAmount)
			}
			if !fee.FinalAmount.Equal(dec(tt.wantFinal)) {
				t.Fatalf("expected final %s, got %s", tt.wantFinal, fee.FinalAmount)
			}
			expected := fee.BaseAmount.Add(fee.ExtraAmount).Sub(fee.DiscountAmount)
			if expected.IsNegative() {
				expected = decimal.Zero
			}
			if !fee.FinalAmount.Equal(expected) || fee.FinalAmount.IsNegative() {
				t.Fatalf("final %s violates max(0, base+extra-discount)=%s", fee.FinalAmount, expected)
			}
		})
	}
}

func TestDiscountResolve(t *testing.T) {
	amount := dec("2.50")
	negative := dec("-1")
	percent := dec("12.5")
	tooMuch := dec("101")
	subtotal := dec("13.99")

	tests := []struct {
		name     string
		discount Discount
		want     string
		wantErr  bool
	}{
		{name: "none", discount: Discount{}, want: "0"},
		{name: "amount", discount: Discount{Amount: &amount}, want: "2.5"},
		{name: "percent rounds half up", discount: Discount{Percent: &percent}, want: "1.75"},
		{name: "negative amount", discount: Discount{Amount: &negative}, wantErr: true},
		{name: "percent over 100", discount: Discount{Percent: &tooMuch}, wantErr: true},
		{name: "both", discount: Discount{Amount: &amount, Percent: &percent}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.discount.resolve(subtotal)
			if tt.wantErr {
				if !errors.Is(err, store.ErrInvalidDiscount) {
					t.Fatalf("expected invalid discount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
