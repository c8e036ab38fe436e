package ledger

import (
	"context"
	"fmt"
	"log"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"
)

// UpdateRates replaces the rate table. Every category needs a non-negative
// rate and unknown categories are rejected.
func (l *Ledger) UpdateRates(ctx context.Context, scope Scope, rates models.Rates) (err error) {
	ctx, span := startSpan(ctx, "UpdateRates")
	defer func() { endSpan(span, err) }()

	for category, rate := range rates {
		if !models.ValidCategory(category) {
			return fmt.Errorf("%w: unknown category %q", store.ErrInvalidRate, category)
		}
		if rate.IsNegative() {
			return fmt.Errorf("%w: %s rate is negative", store.ErrInvalidRate, category)
		}
	}
	for _, category := range models.Categories {
		if _, ok := rates[category]; !ok {
			return fmt.Errorf("%w: missing %s rate", store.ErrInvalidRate, category)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rates = rates.Clone()
	branchID := scope.BranchID
	if scope.Aggregate {
		branchID = ""
	}
	l.appendLog(branchID, models.ActivitySystem, "Parking rates updated", "")
	l.persist(ctx, store.KeyRates, store.KeyActivityLogs)
	log.Printf("rates updated branch=%s", branchID)
	return nil
}

// ResetBranchData clears active vehicles, transactions and activity of one
// concrete branch. Other branches are untouched.
func (l *Ledger) ResetBranchData(ctx context.Context, scope Scope) (err error) {
	ctx, span := startSpan(ctx, "ResetBranchData")
	defer func() { endSpan(span, err) }()

	if scope.Aggregate {
		return store.ErrAggregateScope
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	branch, err := l.concreteBranch(scope)
	if err != nil {
		return err
	}

	vehicles := l.vehicles[:0:0]
	for _, vehicle := range l.vehicles {
		if vehicle.BranchID != branch.BranchID {
			vehicles = append(vehicles, vehicle)
		}
	}
	transactions := l.transactions[:0:0]
	for _, txn := range l.transactions {
		if txn.BranchID != branch.BranchID {
			transactions = append(transactions, txn)
		}
	}
	logs := l.logs[:0:0]
	for _, entry := range l.logs {
		if entry.BranchID != branch.BranchID {
			logs = append(logs, entry)
		}
	}
	l.vehicles, l.transactions, l.logs = vehicles, transactions, logs
	l.touch()
	l.persist(ctx, store.KeyVehicles, store.KeyTransactions, store.KeyActivityLogs)
	log.Printf("branch data reset branch=%s", branch.BranchID)
	return nil
}
