package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const TransactionPaid = "paid"

type Transaction struct {
	TransactionID   string          `json:"transaction_id"`
	BranchID        string          `json:"branch_id"`
	VehicleID       string          `json:"vehicle_id"`
	PlateNumber     string          `json:"plate_number"`
	Category        string          `json:"category"`
	EntryTime       time.Time       `json:"entry_time"`
	ExitTime        time.Time       `json:"exit_time"`
	DurationMinutes int64           `json:"duration_minutes"`
	BillableHours   int64           `json:"billable_hours"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	ExtraAmount     decimal.Decimal `json:"extra_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	Status          string          `json:"status"`
	Items           []string        `json:"items,omitempty"`
}

const (
	ActivityEntry  = "entry"
	ActivityExit   = "exit"
	ActivitySystem = "system"
)

type ActivityLog struct {
	LogID        string    `json:"log_id"`
	BranchID     string    `json:"branch_id"`
	Kind         string    `json:"kind"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	VehiclePlate string    `json:"vehicle_plate,omitempty"`
}
