package ledger

import (
	"reflect"
	"testing"

	"smartpark/ledger-service/internal/models"
)

func TestProjectSlotsNumbersAcrossZones(t *testing.T) {
	branch := models.Branch{
		BranchID: "b1",
		Zones: []models.Zone{
			{ZoneID: "a", Capacity: 2, Kind: models.ZonePriority},
			{ZoneID: "b", Capacity: 3, Kind: models.ZoneStandard},
		},
	}
	active := []models.Vehicle{
		{VehicleID: "v1", BranchID: "b1", SlotID: 3},
		{VehicleID: "v2", BranchID: "b2", SlotID: 1},
	}

	slots := ProjectSlots(branch, active)
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
	for i, slot := range slots {
		if slot.SlotID != i+1 {
			t.Fatalf("expected slot id %d at position %d, got %d", i+1, i, slot.SlotID)
		}
	}
	if slots[1].ZoneID != "a" || slots[1].Kind != models.ZonePriority {
		t.Fatalf("expected slot 2 in priority zone a, got %+v", slots[1])
	}
	if slots[2].ZoneID != "b" || !slots[2].Occupied || *slots[2].VehicleID != "v1" {
		t.Fatalf("expected slot 3 occupied by v1, got %+v", slots[2])
	}
	if slots[0].Occupied {
		t.Fatalf("vehicle from another branch must not occupy slot 1")
	}
}

func TestProjectSlotsIsDeterministic(t *testing.T) {
	branch := models.Branch{BranchID: "b1", Zones: []models.Zone{{ZoneID: "a", Capacity: 4, Kind: models.ZoneStandard}}}
	active := []models.Vehicle{{VehicleID: "v1", BranchID: "b1", SlotID: 2}}

	first := ProjectSlots(branch, active)
	second := ProjectSlots(branch, active)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection changed between calls")
	}
	if len(branch.Zones) != 1 || len(active) != 1 || active[0].SlotID != 2 {
		t.Fatalf("projection mutated its inputs")
	}
}

func TestProjectSlotsLegacyBranch(t *testing.T) {
	branch := models.Branch{BranchID: "old", Capacity: 3}
	slots := ProjectSlots(branch, nil)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots from legacy capacity, got %d", len(slots))
	}
	for _, slot := range slots {
		if slot.Kind != models.ZoneStandard {
			t.Fatalf("expected standard slots, got %s", slot.Kind)
		}
	}
}

func TestNormalizeBranchDerivesCapacity(t *testing.T) {
	branch := normalizeBranch(models.Branch{
		BranchID: "b1",
		Capacity: 99,
		Zones:    []models.Zone{{ZoneID: "a", Capacity: 5}, {ZoneID: "b", Capacity: 7}},
	})
	if branch.Capacity != 12 {
		t.Fatalf("expected capacity from zones, got %d", branch.Capacity)
	}
}

func TestPlateValidation(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{raw: " abc-1234 ", want: "ABC-1234", valid: true},
		{raw: "b 12 cd", want: "B 12 CD", valid: true},
		{raw: "ab", want: "AB", valid: false},
		{raw: "ABCDEFGHIJK", want: "ABCDEFGHIJK", valid: false},
		{raw: "ABC_123", want: "ABC_123", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := NormalizePlate(tt.raw)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if ValidPlate(got) != tt.valid {
				t.Fatalf("expected valid=%v for %q", tt.valid, got)
			}
		})
	}
}
