package ledger

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"
)

type BranchInput struct {
	// BranchID is generated when empty.
	BranchID string
	Name     string
	Zones    []models.Zone
}

// BranchPatch changes only the fields that are set.
type BranchPatch struct {
	Name  *string
	Zones []models.Zone
}

func (l *Ledger) CreateBranch(ctx context.Context, input BranchInput) (branch models.Branch, err error) {
	ctx, span := startSpan(ctx, "CreateBranch")
	defer func() { endSpan(span, err) }()

	id := strings.TrimSpace(input.BranchID)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Branch{}, fmt.Errorf("%w: name is required", store.ErrInvalidBranch)
	}
	if strings.EqualFold(id, models.AggregateBranchID) {
		return models.Branch{}, store.ErrReservedBranchID
	}
	zones, err := validateZones(input.Zones)
	if err != nil {
		return models.Branch{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if id == "" {
		id = "b-" + l.newID()
	}
	if _, exists := l.findBranch(id); exists {
		return models.Branch{}, fmt.Errorf("%w: %s", store.ErrDuplicateBranch, id)
	}
	if l.ownsHistory(id) {
		return models.Branch{}, fmt.Errorf("%w: %s still owns records of a removed branch", store.ErrDuplicateBranch, id)
	}

	branch = models.Branch{BranchID: id, Name: name, Zones: zones, Capacity: models.TotalCapacity(zones)}
	l.branches = append(l.branches, branch)
	l.touch()
	l.persist(ctx, store.KeyBranches)
	log.Printf("branch created branch=%s capacity=%d", id, branch.Capacity)
	return branch.Clone(), nil
}

// UpdateBranch merges patch into a branch. A new layout must still contain
// every slot currently occupied in that branch.
func (l *Ledger) UpdateBranch(ctx context.Context, branchID string, patch BranchPatch) (branch models.Branch, err error) {
	ctx, span := startSpan(ctx, "UpdateBranch")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.findBranch(branchID)
	if !ok {
		return models.Branch{}, store.ErrBranchNotFound
	}
	branch = l.branches[idx].Clone()

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Branch{}, fmt.Errorf("%w: name is required", store.ErrInvalidBranch)
		}
		branch.Name = name
	}
	if patch.Zones != nil {
		zones, err := validateZones(patch.Zones)
		if err != nil {
			return models.Branch{}, err
		}
		capacity := models.TotalCapacity(zones)
		for _, vehicle := range l.vehicles {
			if vehicle.BranchID == branchID && vehicle.SlotID > capacity {
				return models.Branch{}, fmt.Errorf("%w: slot %d", store.ErrSlotInUse, vehicle.SlotID)
			}
		}
		branch.Zones = zones
		branch.Capacity = capacity
	}

	l.branches[idx] = branch
	l.touch()
	l.persist(ctx, store.KeyBranches)
	log.Printf("branch updated branch=%s capacity=%d", branchID, branch.Capacity)
	return branch.Clone(), nil
}

// RemoveBranch deletes a branch from the registry. Its vehicles,
// transactions and logs stay in history and remain visible in the
// aggregate scope.
func (l *Ledger) RemoveBranch(ctx context.Context, branchID string) (err error) {
	ctx, span := startSpan(ctx, "RemoveBranch")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.findBranch(branchID)
	if !ok {
		return store.ErrBranchNotFound
	}
	if len(l.branches) == 1 {
		return store.ErrLastBranch
	}
	l.branches = append(l.branches[:idx:idx], l.branches[idx+1:]...)
	delete(l.slotCache, branchID)
	l.touch()
	l.persist(ctx, store.KeyBranches)
	log.Printf("branch removed branch=%s", branchID)
	return nil
}

// ownsHistory reports whether any vehicle, transaction or log entry is
// tagged with branchID. Ids of removed branches stay taken while they do.
func (l *Ledger) ownsHistory(branchID string) bool {
	for _, vehicle := range l.vehicles {
		if vehicle.BranchID == branchID {
			return true
		}
	}
	for _, txn := range l.transactions {
		if txn.BranchID == branchID {
			return true
		}
	}
	for _, entry := range l.logs {
		if entry.BranchID == branchID {
			return true
		}
	}
	return false
}

// validateZones checks capacities, kinds and id uniqueness. Missing zone ids
// are assigned by position.
func validateZones(zones []models.Zone) ([]models.Zone, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("%w: at least one zone is required", store.ErrInvalidZone)
	}
	out := make([]models.Zone, 0, len(zones))
	seen := make(map[string]bool, len(zones))
	for i, zone := range zones {
		zone.ZoneID = strings.TrimSpace(zone.ZoneID)
		if zone.ZoneID == "" {
			zone.ZoneID = "z" + strconv.Itoa(i+1)
		}
		if seen[zone.ZoneID] {
			return nil, fmt.Errorf("%w: duplicate zone id %s", store.ErrInvalidZone, zone.ZoneID)
		}
		seen[zone.ZoneID] = true
		if zone.Capacity <= 0 {
			return nil, fmt.Errorf("%w: zone %s capacity must be positive", store.ErrInvalidZone, zone.ZoneID)
		}
		if zone.Kind == "" {
			zone.Kind = models.ZoneStandard
		}
		if !models.ValidZoneKind(zone.Kind) {
			return nil, fmt.Errorf("%w: zone %s kind %q", store.ErrInvalidZone, zone.ZoneID, zone.Kind)
		}
		if strings.TrimSpace(zone.Name) == "" {
			zone.Name = "Zone " + strconv.Itoa(i+1)
		}
		out = append(out, zone)
	}
	return out, nil
}
