package ledger

import (
	"fmt"
	"time"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Fee is the full breakdown of what a stay costs at a given exit time.
type Fee struct {
	EntryTime       time.Time            `json:"entry_time"`
	ExitTime        time.Time            `json:"exit_time"`
	DurationMinutes int64                `json:"duration_minutes"`
	BillableHours   int64                `json:"billable_hours"`
	HourlyRate      decimal.Decimal      `json:"hourly_rate"`
	BaseAmount      decimal.Decimal      `json:"base_amount"`
	ExtraAmount     decimal.Decimal      `json:"extra_amount"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount"`
	FinalAmount     decimal.Decimal      `json:"final_amount"`
	Items           []models.ServiceItem `json:"items"`
}

// Discount is either an absolute amount or a percentage of the base plus
// extras subtotal. Setting both is rejected.
type Discount struct {
	Amount  *decimal.Decimal
	Percent *decimal.Decimal
}

// BillableDuration rounds a stay up to whole minutes and then to whole hours.
func BillableDuration(entry, exit time.Time) (minutes, hours int64) {
	ms := exit.Sub(entry).Milliseconds()
	if ms <= 0 {
		return 0, 0
	}
	minutes = (ms + 59_999) / 60_000
	hours = (minutes + 59) / 60
	return minutes, hours
}

// ComputeFee prices a stay by the hour-ceiling rule. The final amount never
// goes below zero.
func ComputeFee(entry, exit time.Time, hourlyRate decimal.Decimal, extras []models.ServiceItem, discount decimal.Decimal) Fee {
	minutes, hours := BillableDuration(entry, exit)
	base := hourlyRate.Mul(decimal.NewFromInt(hours))
	extra := decimal.Zero
	for _, item := range extras {
		extra = extra.Add(item.Price)
	}
	final := base.Add(extra).Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Fee{
		EntryTime:       entry,
		ExitTime:        exit,
		DurationMinutes: minutes,
		BillableHours:   hours,
		HourlyRate:      hourlyRate,
		BaseAmount:      base,
		ExtraAmount:     extra,
		DiscountAmount:  discount,
		FinalAmount:     final,
		Items:           append([]models.ServiceItem(nil), extras...),
	}
}

// DiscountFromPercent converts a percentage of subtotal into an amount,
// rounded half-up to cents.
func DiscountFromPercent(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

func (d Discount) resolve(subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case d.Amount != nil && d.Percent != nil:
		return decimal.Zero, fmt.Errorf("%w: amount and percent are mutually exclusive", store.ErrInvalidDiscount)
	case d.Amount != nil:
		if d.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: amount must not be negative", store.ErrInvalidDiscount)
		}
		return *d.Amount, nil
	case d.Percent != nil:
		if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("%w: percent must be between 0 and 100", store.ErrInvalidDiscount)
		}
		return DiscountFromPercent(subtotal, *d.Percent), nil
	default:
		return decimal.Zero, nil
	}
}
