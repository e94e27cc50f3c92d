package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrHotelNotFound         = errors.New("hotel not found")
	ErrRoomTypeNotFound      = errors.New("room type not found")
	ErrHoldNotFound          = errors.New("hold not found")
	ErrHoldExpired           = errors.New("hold expired")
	ErrHoldNotActive         = errors.New("hold is no longer active")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotCancellable = errors.New("booking can no longer be cancelled")
	ErrBookingNotPayable     = errors.New("booking is not awaiting payment")
	ErrPriceMismatch         = errors.New("recomputed price differs from quoted total")
	ErrPaymentFailed         = errors.New("payment rejected by gateway")
	ErrPaymentUnavailable    = errors.New("payment gateway unavailable")
	ErrConcurrencyConflict   = errors.New("lost race on shared inventory, retry the operation")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidDateRange      = errors.New("check-out must be after check-in")
	ErrInvalidID             = errors.New("invalid id")
	ErrHotelNameRequired     = errors.New("hotel name required")
	ErrHotelSlugTaken        = errors.New("hotel slug already exists")
	ErrRoomTypeNameRequired  = errors.New("room type name required")
	ErrInvalidCapacity       = errors.New("total rooms must be positive")
	ErrInvalidRate           = errors.New("base rate must not be negative")
	ErrGuestNameRequired     = errors.New("guest name required")
)

// InsufficientInventoryError reports which dates could not cover the
// requested quantity. The whole multi-line request is aborted when any
// date fails; no partial reservation survives.
type InsufficientInventoryError struct {
	RoomTypeID string
	Dates      []time.Time
}

func (e *InsufficientInventoryError) Error() string {
	days := make([]string, 0, len(e.Dates))
	for _, d := range e.Dates {
		days = append(days, d.Format("2006-01-02"))
	}
	return fmt.Sprintf("insufficient inventory for room type %s on %s", e.RoomTypeID, strings.Join(days, ", "))
}

// IsInsufficientInventory reports whether err wraps an InsufficientInventoryError.
func IsInsufficientInventory(err error) bool {
	var target *InsufficientInventoryError
	return errors.As(err, &target)
}
