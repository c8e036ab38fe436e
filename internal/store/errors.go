package store

import "errors"

var (
	ErrInvalidPlate        = errors.New("invalid plate format")
	ErrInvalidCategory     = errors.New("invalid vehicle category")
	ErrInvalidZone         = errors.New("invalid zone")
	ErrInvalidBranch       = errors.New("invalid branch")
	ErrInvalidUser         = errors.New("invalid user")
	ErrInvalidRate         = errors.New("invalid rate")
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrUnknownService      = errors.New("unknown service")
	ErrReservedBranchID    = errors.New("branch id is reserved")
	ErrDuplicatePlate      = errors.New("plate already parked in branch")
	ErrSlotUnavailable     = errors.New("slot unavailable")
	ErrSlotInUse           = errors.New("occupied slot outside new layout")
	ErrDuplicateBranch     = errors.New("branch already exists")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrLastBranch          = errors.New("cannot remove last branch")
	ErrBranchNotFound      = errors.New("branch not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrLotFull             = errors.New("lot full")
	ErrNoActiveBranch      = errors.New("no active branch")
	ErrAggregateScope      = errors.New("not available in aggregate view")
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSessionNotFound     = errors.New("session not found")
	ErrCorruptSnapshot     = errors.New("corrupt snapshot")
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindCapacity      Kind = "capacity"
	KindAuthorization Kind = "authorization"
	KindInternal      Kind = "internal"
)

var kinds = map[error]Kind{
	ErrInvalidPlate:        KindValidation,
	ErrInvalidCategory:     KindValidation,
	ErrInvalidZone:         KindValidation,
	ErrInvalidBranch:       KindValidation,
	ErrInvalidUser:         KindValidation,
	ErrInvalidRate:         KindValidation,
	ErrInvalidDiscount:     KindValidation,
	ErrUnknownService:      KindValidation,
	ErrReservedBranchID:    KindValidation,
	ErrNoActiveBranch:      KindValidation,
	ErrAggregateScope:      KindValidation,
	ErrDuplicatePlate:      KindConflict,
	ErrSlotUnavailable:     KindConflict,
	ErrSlotInUse:           KindConflict,
	ErrDuplicateBranch:     KindConflict,
	ErrDuplicateUser:       KindConflict,
	ErrLastBranch:          KindConflict,
	ErrBranchNotFound:      KindNotFound,
	ErrVehicleNotFound:     KindNotFound,
	ErrTransactionNotFound: KindNotFound,
	ErrUserNotFound:        KindNotFound,
	ErrLotFull:             KindCapacity,
	ErrAccessDenied:        KindAuthorization,
	ErrInvalidCredentials:  KindAuthorization,
	ErrSessionNotFound:     KindAuthorization,
}

// KindOf classifies err by the first sentinel it wraps.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}
