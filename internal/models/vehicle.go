package models

import "time"

const (
	CategoryCar   = "Car"
	CategoryBike  = "Bike"
	CategoryTruck = "Truck"
)

var Categories = []string{CategoryCar, CategoryBike, CategoryTruck}

type Vehicle struct {
	VehicleID         string    `json:"vehicle_id"`
	BranchID          string    `json:"branch_id"`
	PlateNumber       string    `json:"plate_number"`
	Category          string    `json:"category"`
	Model             string    `json:"model"`
	Color             string    `json:"color"`
	ContactNumber     string    `json:"contact_number,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	RequestedServices []string  `json:"requested_services,omitempty"`
	EntryTime         time.Time `json:"entry_time"`
	SlotID            int       `json:"slot_id"`
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
