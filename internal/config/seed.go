package config

import (
	"fmt"
	"os"

	"smartpark/ledger-service/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is the initial registry content used when a collection has never
// been persisted.
type Seed struct {
	Branches []models.Branch
	Users    []models.User
	Rates    models.Rates
	Services []models.ServiceItem
}

type seedFile struct {
	Branches []models.Branch   `yaml:"branches"`
	Users    []models.User     `yaml:"users"`
	Rates    map[string]string `yaml:"rates"`
	Services []struct {
		ServiceID string `yaml:"service_id"`
		Label     string `yaml:"label"`
		Price     string `yaml:"price"`
	} `yaml:"services"`
}

func DefaultSeed() Seed {
	return Seed{
		Branches: []models.Branch{
			{
				BranchID: "b1",
				Name:     "Downtown Central",
				Capacity: 40,
				Zones: []models.Zone{
					{ZoneID: "z1", Name: "Zone A", Capacity: 20, Kind: models.ZonePriority},
					{ZoneID: "z2", Name: "Zone B", Capacity: 20, Kind: models.ZoneStandard},
				},
			},
			{
				BranchID: "b2",
				Name:     "Airport Terminal",
				Capacity: 30,
				Zones: []models.Zone{
					{ZoneID: "z1", Name: "Main Lot", Capacity: 30, Kind: models.ZoneStandard},
				},
			},
		},
		Users: []models.User{
			{UserID: "u1", Username: "admin", Role: models.RoleAdmin, FullName: "Administrator"},
			{UserID: "u2", Username: "staff_downtown", Role: models.RoleStaff, BranchID: "b1", FullName: "Downtown Staff"},
		},
		Rates: models.Rates{
			models.CategoryCar:   decimal.NewFromInt(5),
			models.CategoryBike:  decimal.NewFromInt(2),
			models.CategoryTruck: decimal.NewFromInt(10),
		},
		Services: []models.ServiceItem{
			{ServiceID: "wash", Label: "Car Wash", Price: decimal.RequireFromString("15.00")},
			{ServiceID: "ev", Label: "EV Charging", Price: decimal.RequireFromString("8.50")},
			{ServiceID: "valet", Label: "Valet", Price: decimal.RequireFromString("10.00")},
			{ServiceID: "air", Label: "Tire Inflation", Price: decimal.RequireFromString("3.99")},
		},
	}
}

// LoadSeed returns the built-in seed with every section present in the YAML
// file at path replacing its default. An empty path yields the defaults.
func LoadSeed(path string) (Seed, error) {
	seed := DefaultSeed()
	if path == "" {
		return seed, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Seed{}, fmt.Errorf("parse seed file: %w", err)
	}

	if len(file.Branches) > 0 {
		seed.Branches = file.Branches
		for i := range seed.Branches {
			// Zone-less branches keep their stored capacity; the ledger
			// upgrades them to a single zone.
			if len(seed.Branches[i].Zones) > 0 {
				seed.Branches[i].Capacity = models.TotalCapacity(seed.Branches[i].Zones)
			}
		}
	}
	if len(file.Users) > 0 {
		seed.Users = file.Users
	}
	if len(file.Rates) > 0 {
		rates := make(models.Rates, len(file.Rates))
		for category, value := range file.Rates {
			rate, err := decimal.NewFromString(value)
			if err != nil {
				return Seed{}, fmt.Errorf("seed rate %s: %w", category, err)
			}
			rates[category] = rate
		}
		seed.Rates = rates
	}
	if len(file.Services) > 0 {
		services := make([]models.ServiceItem, 0, len(file.Services))
		for _, item := range file.Services {
			price, err := decimal.NewFromString(item.Price)
			if err != nil {
				return Seed{}, fmt.Errorf("seed service %s: %w", item.ServiceID, err)
			}
			services = append(services, models.ServiceItem{ServiceID: item.ServiceID, Label: item.Label, Price: price})
		}
		seed.Services = services
	}
	return seed, nil
}
