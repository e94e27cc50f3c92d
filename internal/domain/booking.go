package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusCheckedIn      BookingStatus = "checked_in"
	BookingStatusCheckedOut     BookingStatus = "checked_out"
)

// Cancellable reports whether the guest has not yet arrived.
func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPendingPayment || s == BookingStatusConfirmed
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking is the durable reservation derived from a consumed hold. Once
// created it is the sole owner of the permanent inventory debit.
type Booking struct {
	ID            string
	Code          string
	HoldID        string
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	Stay          StayRange
	Lines         []BookingLine
	TotalCents    int64
	Status        BookingStatus
	PaymentStatus PaymentStatus
	TransactionID string
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookingLine carries the price locked in at confirmation time.
type BookingLine struct {
	RoomTypeID string
	Quantity   int
	MealPlan   MealPlan
	Adults     int
	PriceCents int64
}

// Refund describes the outcome of a cancellation.
type Refund struct {
	AmountCents int64
	Percent     int
}
