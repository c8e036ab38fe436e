package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartpark/ledger-service/internal/config"
	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/store/sqlite"

	"github.com/shopspring/decimal"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	st, err := sqlite.Open(path, sqlite.Options{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer st.Close()

	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	l, err := ledger.Open(context.Background(), st, config.DefaultSeed(), ledger.Options{Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	for _, input := range []ledger.RegisterInput{
		{PlateNumber: "CAR-100", Category: "Car"},
		{PlateNumber: "BIKE-200", Category: "Bike"},
	} {
		vehicle, err := l.RegisterVehicle(context.Background(), ledger.BranchScope("b1"), input)
		if err != nil {
			t.Fatalf("register %s: %v", input.PlateNumber, err)
		}
		now = now.Add(30 * time.Minute)
		if _, err := l.CheckoutVehicle(context.Background(), ledger.BranchScope("b1"), vehicle.VehicleID, ledger.CheckoutInput{}); err != nil {
			t.Fatalf("checkout %s: %v", input.PlateNumber, err)
		}
	}
	return path
}

func TestRunSummary(t *testing.T) {
	path := seedDatabase(t)
	var out bytes.Buffer
	if err := run([]string{"--storage", "sqlite", "--sqlite-path", path}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var summary ledger.Summary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out.String(), err)
	}
	if summary.TransactionCount != 2 || !summary.TotalRevenue.Equal(decimal.NewFromInt(7)) || summary.AverageDurationMinutes != 30 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunCSVFiltersCategory(t *testing.T) {
	path := seedDatabase(t)
	var out bytes.Buffer
	args := []string{"--storage", "sqlite", "--sqlite-path", path, "--branch", "b1", "--category", "Bike", "--format", "csv"}
	if err := run(args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out.String())
	}
	if !strings.Contains(lines[1], "BIKE-200") || !strings.HasSuffix(lines[1], ",30,2.00") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	path := seedDatabase(t)
	tests := [][]string{
		{"--storage", "sqlite", "--sqlite-path", path, "--branch", "nowhere"},
		{"--storage", "sqlite", "--sqlite-path", path, "--from", "11/03/2026"},
		{"--storage", "sqlite", "--sqlite-path", path, "--category", "Boat"},
		{"--storage", "sqlite", "--sqlite-path", path, "--format", "xml"},
		{"--storage", "sqlite", "--sqlite-path", path, "extra"},
	}
	for _, args := range tests {
		var out bytes.Buffer
		if err := run(args, &out); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
