package ledger

import (
	"time"

	"smartpark/ledger-service/internal/models"

	"github.com/shopspring/decimal"
)

const assistantRecentTransactions = 10

type Stats struct {
	Occupied         int             `json:"occupied"`
	Capacity         int             `json:"capacity"`
	Available        int             `json:"available"`
	OccupancyPercent int             `json:"occupancy_percent"`
	TodayRevenue     decimal.Decimal `json:"today_revenue"`
	ByCategory       map[string]int  `json:"by_category"`
}

// Stats summarizes occupancy and today's revenue. In the aggregate scope
// capacity is the sum over all registered branches.
func (l *Ledger) Stats(scope Scope) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{TodayRevenue: decimal.Zero, ByCategory: make(map[string]int, len(models.Categories))}
	for _, category := range models.Categories {
		stats.ByCategory[category] = 0
	}

	if scope.Aggregate {
		for _, branch := range l.branches {
			stats.Capacity += branch.Capacity
		}
	} else {
		branch, err := l.concreteBranch(scope)
		if err != nil {
			return Stats{}, err
		}
		stats.Capacity = branch.Capacity
	}

	for _, vehicle := range l.vehicles {
		if scope.includes(vehicle.BranchID) {
			stats.Occupied++
			stats.ByCategory[vehicle.Category]++
		}
	}
	stats.Available = stats.Capacity - stats.Occupied
	if stats.Available < 0 {
		stats.Available = 0
	}
	if stats.Capacity > 0 {
		stats.OccupancyPercent = int(decimal.NewFromInt(int64(stats.Occupied * 100)).
			Div(decimal.NewFromInt(int64(stats.Capacity))).
			Round(0).
			IntPart())
	}

	today := startOfDay(l.now())
	tomorrow := today.AddDate(0, 0, 1)
	for _, txn := range l.transactions {
		if !scope.includes(txn.BranchID) {
			continue
		}
		exit := txn.ExitTime.In(today.Location())
		if !exit.Before(today) && exit.Before(tomorrow) {
			stats.TodayRevenue = stats.TodayRevenue.Add(txn.FinalAmount)
		}
	}
	return stats, nil
}

type ActiveSummary struct {
	PlateNumber string    `json:"plate_number"`
	Category    string    `json:"category"`
	EntryTime   time.Time `json:"entry_time"`
}

// AssistantContext is the read-only snapshot handed to a text-generation
// collaborator.
type AssistantContext struct {
	TotalSlots         int                  `json:"total_slots"`
	Occupied           int                  `json:"occupied"`
	ActiveVehicles     []ActiveSummary      `json:"active_vehicles"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

func (l *Ledger) AssistantSnapshot(scope Scope) (AssistantContext, error) {
	stats, err := l.Stats(scope)
	if err != nil {
		return AssistantContext{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := AssistantContext{
		TotalSlots:         stats.Capacity,
		Occupied:           stats.Occupied,
		ActiveVehicles:     make([]ActiveSummary, 0),
		RecentTransactions: make([]models.Transaction, 0, assistantRecentTransactions),
	}
	for _, vehicle := range l.vehicles {
		if scope.includes(vehicle.BranchID) {
			snapshot.ActiveVehicles = append(snapshot.ActiveVehicles, ActiveSummary{
				PlateNumber: vehicle.PlateNumber,
				Category:    vehicle.Category,
				EntryTime:   vehicle.EntryTime,
			})
		}
	}
	for i := len(l.transactions) - 1; i >= 0 && len(snapshot.RecentTransactions) < assistantRecentTransactions; i-- {
		if scope.includes(l.transactions[i].BranchID) {
			snapshot.RecentTransactions = append(snapshot.RecentTransactions, cloneTransaction(l.transactions[i]))
		}
	}
	return snapshot, nil
}
