package models

const (
	ZoneStandard = "standard"
	ZonePriority = "priority"
)

// AggregateBranchID names the admin-only union of all branches. It is never
// a concrete branch and cannot be registered.
const AggregateBranchID = "all"

type Zone struct {
	ZoneID   string `json:"zone_id" yaml:"zone_id"`
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Kind     string `json:"kind" yaml:"kind"`
}

type Branch struct {
	BranchID string `json:"branch_id" yaml:"branch_id"`
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Zones    []Zone `json:"zones" yaml:"zones"`
}

type Slot struct {
	SlotID    int     `json:"slot_id"`
	ZoneID    string  `json:"zone_id"`
	Kind      string  `json:"kind"`
	Occupied  bool    `json:"occupied"`
	VehicleID *string `json:"vehicle_id,omitempty"`
}

func ValidZoneKind(kind string) bool {
	return kind == ZoneStandard || kind == ZonePriority
}

// TotalCapacity sums zone capacities. Capacity on a Branch is always derived
// from this value and never set independently.
func TotalCapacity(zones []Zone) int {
	total := 0
	for _, zone := range zones {
		total += zone.Capacity
	}
	return total
}

func (b Branch) Clone() Branch {
	out := b
	out.Zones = append([]Zone(nil), b.Zones...)
	return out
}
