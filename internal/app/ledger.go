package app

import (
	"context"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

// InventoryRepository is the storage surface the ledger needs. Every
// mutating method is expected to run inside the transaction carried in
// ctx; GetDaysForUpdate locks rows in date order so concurrent
// multi-line reservations cannot deadlock.
type InventoryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	EnsureDays(ctx context.Context, roomTypeID string, totalCount int, dates []time.Time) error
	GetDaysForUpdate(ctx context.Context, roomTypeID string, dates []time.Time) ([]domain.InventoryDay, error)
	AddHeld(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error
	ReleaseHeld(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error
	MoveHeldToBooked(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error
	ReleaseBooked(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error
	FreeCounts(ctx context.Context, roomTypeID string, totalCount int, stay domain.StayRange) ([]domain.DayAvailability, error)
}

// RoomTypeReader resolves room types for capacity and pricing lookups.
type RoomTypeReader interface {
	GetRoomType(ctx context.Context, id string) (domain.RoomType, error)
}

// Ledger is the authoritative view of held/booked counts per room type
// and date.
type Ledger struct {
	repo      InventoryRepository
	roomTypes RoomTypeReader
}

func NewLedger(repo InventoryRepository, roomTypes RoomTypeReader) *Ledger {
	return &Ledger{repo: repo, roomTypes: roomTypes}
}

// Reserve increments held_count for every night in stay, but only if
// every night has quantity rooms free. On failure it returns an
// InsufficientInventoryError naming the dates that fell short and
// leaves no partial mutation behind.
func (l *Ledger) Reserve(ctx context.Context, roomTypeID string, stay domain.StayRange, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	roomType, err := l.roomTypes.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return err
	}

	dates := stay.Dates()
	return l.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := l.repo.EnsureDays(txCtx, roomTypeID, roomType.TotalRooms, dates); err != nil {
			return err
		}
		days, err := l.repo.GetDaysForUpdate(txCtx, roomTypeID, dates)
		if err != nil {
			return err
		}

		var short []time.Time
		for _, day := range days {
			if day.Free() < quantity {
				short = append(short, day.Day)
			}
		}
		if len(short) > 0 {
			return &domain.InsufficientInventoryError{RoomTypeID: roomTypeID, Dates: short}
		}

		return l.repo.AddHeld(txCtx, roomTypeID, dates, quantity)
	})
}

// Release gives a hold's delta back, floored at zero in storage so a
// double release cannot drive counters negative.
func (l *Ledger) Release(ctx context.Context, roomTypeID string, stay domain.StayRange, quantity int) error {
	return l.repo.ReleaseHeld(ctx, roomTypeID, stay.Dates(), quantity)
}

// Commit moves quantity from held to booked for every night in stay.
func (l *Ledger) Commit(ctx context.Context, roomTypeID string, stay domain.StayRange, quantity int) error {
	return l.repo.MoveHeldToBooked(ctx, roomTypeID, stay.Dates(), quantity)
}

// CancelBooked frees permanently debited inventory after a cancellation.
func (l *Ledger) CancelBooked(ctx context.Context, roomTypeID string, stay domain.StayRange, quantity int) error {
	return l.repo.ReleaseBooked(ctx, roomTypeID, stay.Dates(), quantity)
}

// Availability returns the free count per night. Dates with no
// inventory row yet report the room type's full capacity.
func (l *Ledger) Availability(ctx context.Context, roomTypeID string, stay domain.StayRange) ([]domain.DayAvailability, error) {
	roomType, err := l.roomTypes.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	return l.repo.FreeCounts(ctx, roomTypeID, roomType.TotalRooms, stay)
}
