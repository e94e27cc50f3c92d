package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// EnsureDays lazily creates the counter rows for dates that have never
// been touched. Existing rows are left alone.
func (r *InventoryRepository) EnsureDays(ctx context.Context, roomTypeID string, totalCount int, dates []time.Time) error {
	const stmt = `
INSERT INTO inventory_days (room_type_id, day, total_count)
VALUES ($1, $2, $3)
ON CONFLICT (room_type_id, day) DO NOTHING`

	for _, date := range dates {
		if _, err := r.exec(ctx, stmt, roomTypeID, date, totalCount); err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("ensure inventory day: %w", err)
		}
	}
	return nil
}

// GetDaysForUpdate locks the rows in date order, which together with
// room types being processed in sorted order gives every transaction
// the same lock acquisition sequence.
func (r *InventoryRepository) GetDaysForUpdate(ctx context.Context, roomTypeID string, dates []time.Time) ([]domain.InventoryDay, error) {
	const query = `
SELECT room_type_id, day, total_count, held_count, booked_count
FROM inventory_days
WHERE room_type_id = $1 AND day = ANY($2)
ORDER BY day
FOR UPDATE`

	rows, err := r.query(ctx, query, roomTypeID, dates)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("lock inventory days: %w", err)
	}
	defer rows.Close()

	var days []domain.InventoryDay
	for rows.Next() {
		var d domain.InventoryDay
		if err := rows.Scan(&d.RoomTypeID, &d.Day, &d.TotalCount, &d.HeldCount, &d.BookedCount); err != nil {
			return nil, fmt.Errorf("scan inventory day: %w", err)
		}
		d.Day = d.Day.UTC()
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory days: %w", err)
	}
	return days, nil
}

func (r *InventoryRepository) AddHeld(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	const stmt = `
UPDATE inventory_days
SET held_count = held_count + $3
WHERE room_type_id = $1 AND day = ANY($2)`

	return r.bulkUpdate(ctx, stmt, roomTypeID, dates, quantity, "add held")
}

// ReleaseHeld floors at zero so a defensive double release cannot push
// the counter negative.
func (r *InventoryRepository) ReleaseHeld(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	const stmt = `
UPDATE inventory_days
SET held_count = GREATEST(held_count - $3, 0)
WHERE room_type_id = $1 AND day = ANY($2)`

	return r.bulkUpdate(ctx, stmt, roomTypeID, dates, quantity, "release held")
}

func (r *InventoryRepository) MoveHeldToBooked(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	const stmt = `
UPDATE inventory_days
SET held_count = held_count - $3, booked_count = booked_count + $3
WHERE room_type_id = $1 AND day = ANY($2) AND held_count >= $3`

	tag, err := r.exec(ctx, stmt, roomTypeID, dates, quantity)
	if err != nil {
		return fmt.Errorf("commit inventory: %w", err)
	}
	if int(tag.RowsAffected()) != len(dates) {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func (r *InventoryRepository) ReleaseBooked(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	const stmt = `
UPDATE inventory_days
SET booked_count = GREATEST(booked_count - $3, 0)
WHERE room_type_id = $1 AND day = ANY($2)`

	return r.bulkUpdate(ctx, stmt, roomTypeID, dates, quantity, "release booked")
}

// FreeCounts reports the free count per night without taking locks.
// Untouched dates have no row yet and report full capacity.
func (r *InventoryRepository) FreeCounts(ctx context.Context, roomTypeID string, totalCount int, stay domain.StayRange) ([]domain.DayAvailability, error) {
	const query = `
SELECT day, GREATEST(total_count - held_count - booked_count, 0)
FROM inventory_days
WHERE room_type_id = $1 AND day >= $2 AND day < $3`

	rows, err := r.query(ctx, query, roomTypeID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("free counts: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var free int
		if err := rows.Scan(&day, &free); err != nil {
			return nil, fmt.Errorf("scan free count: %w", err)
		}
		seen[day.UTC().Format("2006-01-02")] = free
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate free counts: %w", err)
	}

	out := make([]domain.DayAvailability, 0, stay.Nights())
	for _, date := range stay.Dates() {
		free, ok := seen[date.Format("2006-01-02")]
		if !ok {
			free = totalCount
		}
		out = append(out, domain.DayAvailability{Day: date, Free: free})
	}
	return out, nil
}

func (r *InventoryRepository) bulkUpdate(ctx context.Context, stmt, roomTypeID string, dates []time.Time, quantity int, op string) error {
	if _, err := r.exec(ctx, stmt, roomTypeID, dates, quantity); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		// The schema's held+booked <= total CHECK is the last line of
		// defense; tripping it means we lost a race already decided
		// elsewhere.
		if isCheckViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *InventoryRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *InventoryRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
