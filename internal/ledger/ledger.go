package ledger

import (
	"context"
	"errors"
	"expvar"
	"log"
	"sync"
	"time"

	"smartpark/ledger-service/internal/config"
	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultActivityLogLimit = 50

var (
	persistErrors      = expvar.NewInt("ledger_persist_errors_total")
	vehiclesRegistered = expvar.NewInt("vehicles_registered_total")
	vehiclesCheckedOut = expvar.NewInt("vehicles_checked_out_total")
)

var tracer = otel.Tracer("smartpark/ledger")

// Scope selects the data a caller operates on: one concrete branch, or the
// aggregate union of every branch.
type Scope struct {
	BranchID  string
	Aggregate bool
}

func BranchScope(branchID string) Scope {
	return Scope{BranchID: branchID}
}

func AggregateScope() Scope {
	return Scope{Aggregate: true}
}

func (s Scope) includes(branchID string) bool {
	return s.Aggregate || s.BranchID == branchID
}

type Options struct {
	Now              func() time.Time
	NewID            func() string
	ActivityLogLimit int
}

// Ledger owns the canonical parking collections. All reads and writes go
// through it; every mutation rewrites only the collections it touched.
type Ledger struct {
	mu       sync.Mutex
	store    store.SnapshotStore
	now      func() time.Time
	newID    func() string
	logLimit int
	services []models.ServiceItem

	branches     []models.Branch
	users        []models.User
	rates        models.Rates
	vehicles     []models.Vehicle
	transactions []models.Transaction
	logs         []models.ActivityLog

	generation uint64
	slotCache  map[string]slotCacheEntry
}

type slotCacheEntry struct {
	generation uint64
	slots      []models.Slot
}

// Open loads every collection from st independently. A collection that was
// never written, or whose payload cannot be decoded, starts from seed.
func Open(ctx context.Context, st store.SnapshotStore, seed config.Seed, options Options) (*Ledger, error) {
	l := &Ledger{
		store:     st,
		now:       options.Now,
		newID:     options.NewID,
		logLimit:  options.ActivityLogLimit,
		services:  append([]models.ServiceItem(nil), seed.Services...),
		slotCache: make(map[string]slotCacheEntry),
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	if l.logLimit <= 0 {
		l.logLimit = defaultActivityLogLimit
	}

	if err := loadCollection(ctx, st, store.KeyBranches, &l.branches, cloneBranches(seed.Branches)); err != nil {
		return nil, err
	}
	if len(l.branches) == 0 {
		log.Printf("ledger snapshot key=%s empty, using seed", store.KeyBranches)
		l.branches = cloneBranches(seed.Branches)
	}
	for i := range l.branches {
		l.branches[i] = normalizeBranch(l.branches[i])
	}
	if err := loadCollection(ctx, st, store.KeyUsers, &l.users, append([]models.User(nil), seed.Users...)); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, st, store.KeyRates, &l.rates, seed.Rates.Clone()); err != nil {
		return nil, err
	}
	if l.rates == nil {
		l.rates = models.Rates{}
	}
	if err := loadCollection(ctx, st, store.KeyVehicles, &l.vehicles, []models.Vehicle(nil)); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, st, store.KeyTransactions, &l.transactions, []models.Transaction(nil)); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, st, store.KeyActivityLogs, &l.logs, []models.ActivityLog(nil)); err != nil {
		return nil, err
	}

	log.Printf("ledger opened branches=%d vehicles=%d transactions=%d logs=%d", len(l.branches), len(l.vehicles), len(l.transactions), len(l.logs))
	return l, nil
}

func loadCollection[T any](ctx context.Context, st store.SnapshotStore, key string, out *T, fallback T) error {
	var loaded T
	ok, err := store.LoadJSON(ctx, st, key, &loaded)
	switch {
	case errors.Is(err, store.ErrCorruptSnapshot):
		log.Printf("ledger snapshot key=%s unreadable, using seed: %v", key, err)
		*out = fallback
		return nil
	case err != nil:
		return err
	case !ok:
		*out = fallback
		return nil
	}
	*out = loaded
	return nil
}

// persist writes the named collections. Failures are logged and counted;
// in-memory state stays authoritative. Callers hold l.mu.
func (l *Ledger) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var value any
		switch key {
		case store.KeyVehicles:
			value = l.vehicles
		case store.KeyTransactions:
			value = l.transactions
		case store.KeyActivityLogs:
			value = l.logs
		case store.KeyRates:
			value = l.rates
		case store.KeyBranches:
			value = l.branches
		case store.KeyUsers:
			value = l.users
		default:
			continue
		}
		if err := store.SaveJSON(ctx, l.store, key, value); err != nil {
			persistErrors.Add(1)
			log.Printf("ledger persist error key=%s err=%v", key, err)
		}
	}
}

// touch invalidates memoized slot projections. Callers hold l.mu.
func (l *Ledger) touch() {
	l.generation++
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ledger."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (l *Ledger) findBranch(branchID string) (int, bool) {
	for i, branch := range l.branches {
		if branch.BranchID == branchID {
			return i, true
		}
	}
	return -1, false
}

// concreteBranch resolves scope to a registered branch. The aggregate scope
// and unknown ids yield ErrNoActiveBranch.
func (l *Ledger) concreteBranch(scope Scope) (models.Branch, error) {
	if scope.Aggregate || scope.BranchID == "" {
		return models.Branch{}, store.ErrNoActiveBranch
	}
	idx, ok := l.findBranch(scope.BranchID)
	if !ok {
		return models.Branch{}, store.ErrNoActiveBranch
	}
	return l.branches[idx], nil
}

func (l *Ledger) ActiveVehicles(scope Scope) []models.Vehicle {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Vehicle, 0)
	for _, vehicle := range l.vehicles {
		if scope.includes(vehicle.BranchID) {
			out = append(out, cloneVehicle(vehicle))
		}
	}
	return out
}

func (l *Ledger) Vehicle(scope Scope, vehicleID string) (models.Vehicle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.findVehicle(scope, vehicleID)
	if !ok {
		return models.Vehicle{}, store.ErrVehicleNotFound
	}
	return cloneVehicle(l.vehicles[idx]), nil
}

func (l *Ledger) findVehicle(scope Scope, vehicleID string) (int, bool) {
	for i, vehicle := range l.vehicles {
		if vehicle.VehicleID == vehicleID && scope.includes(vehicle.BranchID) {
			return i, true
		}
	}
	return -1, false
}

func (l *Ledger) Rates() models.Rates {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rates.Clone()
}

func (l *Ledger) Services() []models.ServiceItem {
	return append([]models.ServiceItem(nil), l.services...)
}

func (l *Ledger) Branches() []models.Branch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneBranches(l.branches)
}

func (l *Ledger) Branch(branchID string) (models.Branch, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.findBranch(branchID)
	if !ok {
		return models.Branch{}, false
	}
	return l.branches[idx].Clone(), true
}

func cloneBranches(branches []models.Branch) []models.Branch {
	out := make([]models.Branch, 0, len(branches))
	for _, branch := range branches {
		out = append(out, branch.Clone())
	}
	return out
}

func cloneVehicle(v models.Vehicle) models.Vehicle {
	v.RequestedServices = append([]string(nil), v.RequestedServices...)
	return v
}
