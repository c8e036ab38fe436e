package ledger

import (
	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"
)

const legacyZoneID = "default"

// normalizeBranch upgrades a branch stored without zones to a single
// standard zone covering its capacity, and derives capacity from zones.
func normalizeBranch(branch models.Branch) models.Branch {
	branch = branch.Clone()
	if len(branch.Zones) == 0 && branch.Capacity > 0 {
		branch.Zones = []models.Zone{{
			ZoneID:   legacyZoneID,
			Name:     "General",
			Capacity: branch.Capacity,
			Kind:     models.ZoneStandard,
		}}
	}
	branch.Capacity = models.TotalCapacity(branch.Zones)
	return branch
}

// ProjectSlots lays out a branch's zones in declared order and numbers the
// resulting positions from 1. A slot is occupied when an active vehicle of
// the same branch claims its id. The result depends only on the inputs.
func ProjectSlots(branch models.Branch, active []models.Vehicle) []models.Slot {
	zones := branch.Zones
	if len(zones) == 0 {
		zones = normalizeBranch(branch).Zones
	}

	claimed := make(map[int]string, len(active))
	for _, vehicle := range active {
		if vehicle.BranchID != branch.BranchID {
			continue
		}
		if _, taken := claimed[vehicle.SlotID]; taken {
			continue
		}
		claimed[vehicle.SlotID] = vehicle.VehicleID
	}

	slots := make([]models.Slot, 0, models.TotalCapacity(zones))
	next := 1
	for _, zone := range zones {
		for i := 0; i < zone.Capacity; i++ {
			slot := models.Slot{SlotID: next, ZoneID: zone.ZoneID, Kind: zone.Kind}
			if vehicleID, ok := claimed[next]; ok {
				id := vehicleID
				slot.Occupied = true
				slot.VehicleID = &id
			}
			slots = append(slots, slot)
			next++
		}
	}
	return slots
}

// Slots returns the projected layout of a concrete branch.
func (l *Ledger) Slots(scope Scope) ([]models.Slot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if scope.Aggregate {
		return nil, store.ErrAggregateScope
	}
	branch, err := l.concreteBranch(scope)
	if err != nil {
		return nil, err
	}
	return cloneSlots(l.slotsFor(branch)), nil
}

// slotsFor memoizes projections per branch and generation. Callers hold l.mu
// and must not modify the returned slice.
func (l *Ledger) slotsFor(branch models.Branch) []models.Slot {
	if entry, ok := l.slotCache[branch.BranchID]; ok && entry.generation == l.generation {
		return entry.slots
	}
	slots := ProjectSlots(branch, l.vehicles)
	l.slotCache[branch.BranchID] = slotCacheEntry{generation: l.generation, slots: slots}
	return slots
}

func cloneSlots(slots []models.Slot) []models.Slot {
	return append([]models.Slot(nil), slots...)
}
