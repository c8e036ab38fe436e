package ledger

import (
	"context"
	"fmt"
	"log"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const unknownDetail = "Unknown"

type RegisterInput struct {
	PlateNumber       string
	Category          string
	Model             string
	Color             string
	ContactNumber     string
	Notes             string
	RequestedServices []string
	// SlotID requests a specific position. Nil picks the lowest free slot.
	SlotID *int
}

type CheckoutInput struct {
	// Services lists the add-ons to bill. Nil bills the services requested
	// at entry; an empty slice bills none.
	Services []string
	Discount Discount
}

// RegisterVehicle checks a vehicle into the scope's branch.
func (l *Ledger) RegisterVehicle(ctx context.Context, scope Scope, input RegisterInput) (vehicle models.Vehicle, err error) {
	ctx, span := startSpan(ctx, "RegisterVehicle")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	branch, err := l.concreteBranch(scope)
	if err != nil {
		return models.Vehicle{}, err
	}
	span.SetAttributes(attribute.String("branch_id", branch.BranchID))

	plate := NormalizePlate(input.PlateNumber)
	if !ValidPlate(plate) {
		return models.Vehicle{}, fmt.Errorf("%w: %q", store.ErrInvalidPlate, input.PlateNumber)
	}
	category := input.Category
	if category == "" {
		category = models.CategoryCar
	}
	if !models.ValidCategory(category) {
		return models.Vehicle{}, fmt.Errorf("%w: %q", store.ErrInvalidCategory, input.Category)
	}
	if _, err := l.lookupServices(input.RequestedServices); err != nil {
		return models.Vehicle{}, err
	}

	for _, existing := range l.vehicles {
		if existing.BranchID == branch.BranchID && existing.PlateNumber == plate {
			return models.Vehicle{}, fmt.Errorf("%w: %s", store.ErrDuplicatePlate, plate)
		}
	}

	slotID, err := pickSlot(l.slotsFor(branch), input.SlotID)
	if err != nil {
		return models.Vehicle{}, err
	}

	vehicle = models.Vehicle{
		VehicleID:         l.newID(),
		BranchID:          branch.BranchID,
		PlateNumber:       plate,
		Category:          category,
		Model:             defaultDetail(input.Model),
		Color:             defaultDetail(input.Color),
		ContactNumber:     input.ContactNumber,
		Notes:             input.Notes,
		RequestedServices: append([]string(nil), input.RequestedServices...),
		EntryTime:         l.now(),
		SlotID:            slotID,
	}
	l.vehicles = append(l.vehicles, vehicle)
	l.touch()
	l.appendLog(branch.BranchID, models.ActivityEntry, fmt.Sprintf("Vehicle %s checked in at Slot %d", plate, slotID), plate)
	l.persist(ctx, store.KeyVehicles, store.KeyActivityLogs)

	vehiclesRegistered.Add(1)
	log.Printf("vehicle registered branch=%s plate=%s slot=%d vehicle_id=%s", branch.BranchID, plate, slotID, vehicle.VehicleID)
	return cloneVehicle(vehicle), nil
}

func pickSlot(slots []models.Slot, requested *int) (int, error) {
	if requested != nil {
		for _, slot := range slots {
			if slot.SlotID == *requested {
				if slot.Occupied {
					return 0, fmt.Errorf("%w: slot %d is occupied", store.ErrSlotUnavailable, *requested)
				}
				return slot.SlotID, nil
			}
		}
		return 0, fmt.Errorf("%w: slot %d does not exist", store.ErrSlotUnavailable, *requested)
	}
	for _, slot := range slots {
		if !slot.Occupied {
			return slot.SlotID, nil
		}
	}
	return 0, store.ErrLotFull
}

func defaultDetail(value string) string {
	if value == "" {
		return unknownDetail
	}
	return value
}

// lookupServices resolves catalog ids in the given order.
func (l *Ledger) lookupServices(ids []string) ([]models.ServiceItem, error) {
	items := make([]models.ServiceItem, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, item := range l.services {
			if item.ServiceID == id {
				items = append(items, item)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", store.ErrUnknownService, id)
		}
	}
	return items, nil
}

// QuoteCheckout prices a checkout at the current instant without changing
// any state.
func (l *Ledger) QuoteCheckout(ctx context.Context, scope Scope, vehicleID string, input CheckoutInput) (Fee, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.findVehicle(scope, vehicleID)
	if !ok {
		return Fee{}, store.ErrVehicleNotFound
	}
	return l.priceStay(l.vehicles[idx], input)
}

func (l *Ledger) priceStay(vehicle models.Vehicle, input CheckoutInput) (Fee, error) {
	serviceIDs := input.Services
	if serviceIDs == nil {
		serviceIDs = vehicle.RequestedServices
	}
	items, err := l.lookupServices(serviceIDs)
	if err != nil {
		return Fee{}, err
	}
	rate := l.rates[vehicle.Category]
	// Price once without discount to learn the subtotal a percent applies to.
	gross := ComputeFee(vehicle.EntryTime, l.now(), rate, items, decimal.Zero)
	discount, err := input.Discount.resolve(gross.BaseAmount.Add(gross.ExtraAmount))
	if err != nil {
		return Fee{}, err
	}
	return ComputeFee(gross.EntryTime, gross.ExitTime, rate, items, discount), nil
}

// CheckoutVehicle closes an active stay into a transaction and frees its
// slot. The exit log line is skipped in the aggregate scope.
func (l *Ledger) CheckoutVehicle(ctx context.Context, scope Scope, vehicleID string, input CheckoutInput) (txn models.Transaction, err error) {
	ctx, span := startSpan(ctx, "CheckoutVehicle")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.findVehicle(scope, vehicleID)
	if !ok {
		return models.Transaction{}, store.ErrVehicleNotFound
	}
	vehicle := l.vehicles[idx]
	span.SetAttributes(attribute.String("branch_id", vehicle.BranchID))

	fee, err := l.priceStay(vehicle, input)
	if err != nil {
		return models.Transaction{}, err
	}

	labels := make([]string, 0, len(fee.Items))
	for _, item := range fee.Items {
		labels = append(labels, item.Label)
	}
	txn = models.Transaction{
		TransactionID:   l.newID(),
		BranchID:        vehicle.BranchID,
		VehicleID:       vehicle.VehicleID,
		PlateNumber:     vehicle.PlateNumber,
		Category:        vehicle.Category,
		EntryTime:       fee.EntryTime,
		ExitTime:        fee.ExitTime,
		DurationMinutes: fee.DurationMinutes,
		BillableHours:   fee.BillableHours,
		BaseAmount:      fee.BaseAmount,
		ExtraAmount:     fee.ExtraAmount,
		DiscountAmount:  fee.DiscountAmount,
		FinalAmount:     fee.FinalAmount,
		Status:          models.TransactionPaid,
		Items:           labels,
	}

	l.vehicles = append(l.vehicles[:idx:idx], l.vehicles[idx+1:]...)
	l.transactions = append(l.transactions, txn)
	l.touch()
	keys := []string{store.KeyVehicles, store.KeyTransactions}
	if !scope.Aggregate {
		l.appendLog(vehicle.BranchID, models.ActivityExit, fmt.Sprintf("Vehicle %s checked out. Rev: $%s", vehicle.PlateNumber, txn.FinalAmount.StringFixed(2)), vehicle.PlateNumber)
		keys = append(keys, store.KeyActivityLogs)
	}
	l.persist(ctx, keys...)

	vehiclesCheckedOut.Add(1)
	log.Printf("vehicle checked out branch=%s plate=%s minutes=%d amount=%s transaction_id=%s", vehicle.BranchID, vehicle.PlateNumber, txn.DurationMinutes, txn.FinalAmount.StringFixed(2), txn.TransactionID)
	return cloneTransaction(txn), nil
}

func cloneTransaction(txn models.Transaction) models.Transaction {
	txn.Items = append([]string(nil), txn.Items...)
	return txn
}
