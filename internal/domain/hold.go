package domain

import "time"

type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "active"
	HoldStatusExpired  HoldStatus = "expired"
	HoldStatusReleased HoldStatus = "released"
	HoldStatusConsumed HoldStatus = "consumed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s HoldStatus) Terminal() bool {
	return s != HoldStatusActive
}

// Hold reserves inventory for a limited time. Its ID doubles as the
// client-facing token. A hold exclusively owns its inventory delta until
// it is consumed into a booking or released back to the ledger.
type Hold struct {
	ID               string
	Status           HoldStatus
	Stay             StayRange
	Lines            []HoldLine
	Extras           []Extra
	QuotedTotalCents int64
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// HoldLine reserves Quantity rooms of one type for the hold's stay.
type HoldLine struct {
	RoomTypeID  string
	Quantity    int
	MealPlan    MealPlan
	Adults      int
	QuotedCents int64
}
