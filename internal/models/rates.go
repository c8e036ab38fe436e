package models

import "github.com/shopspring/decimal"

// Rates maps a vehicle category to its hourly price.
type Rates map[string]decimal.Decimal

func (r Rates) Clone() Rates {
	out := make(Rates, len(r))
	for category, rate := range r {
		out[category] = rate
	}
	return out
}

type ServiceItem struct {
	ServiceID string          `json:"service_id" yaml:"service_id"`
	Label     string          `json:"label" yaml:"label"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
}
