package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, code, hold_id, guest_name, guest_email, guest_phone, check_in, check_out, total_cents, status, payment_status, transaction_id, cancel_reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.exec(ctx, stmt,
		booking.ID,
		booking.Code,
		booking.HoldID,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		booking.Stay.CheckIn,
		booking.Stay.CheckOut,
		booking.TotalCents,
		booking.Status,
		booking.PaymentStatus,
		booking.TransactionID,
		booking.CancelReason,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		// bookings.hold_id is unique: a concurrent confirm on the same
		// hold lost the race here.
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}

	const lineStmt = `
INSERT INTO booking_lines (booking_id, room_type_id, quantity, meal_plan, adults, price_cents)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, line := range booking.Lines {
		if _, err := r.exec(ctx, lineStmt,
			booking.ID,
			line.RoomTypeID,
			line.Quantity,
			line.MealPlan,
			line.Adults,
			line.PriceCents,
		); err != nil {
			return fmt.Errorf("create booking line: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) GetBookingByCode(ctx context.Context, code string) (domain.Booking, error) {
	return r.getBooking(ctx, code, false)
}

func (r *BookingRepository) GetBookingByCodeForUpdate(ctx context.Context, code string) (domain.Booking, error) {
	return r.getBooking(ctx, code, true)
}

func (r *BookingRepository) getBooking(ctx context.Context, code string, forUpdate bool) (domain.Booking, error) {
	query := `
SELECT id, code, hold_id, guest_name, guest_email, guest_phone, check_in, check_out, total_cents, status, payment_status, transaction_id, cancel_reason, created_at, updated_at
FROM bookings
WHERE code = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var b domain.Booking
	var status, paymentStatus string
	err := r.queryRow(ctx, query, code).Scan(
		&b.ID,
		&b.Code,
		&b.HoldID,
		&b.GuestName,
		&b.GuestEmail,
		&b.GuestPhone,
		&b.Stay.CheckIn,
		&b.Stay.CheckOut,
		&b.TotalCents,
		&status,
		&paymentStatus,
		&b.TransactionID,
		&b.CancelReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(paymentStatus)
	b.Stay.CheckIn = b.Stay.CheckIn.UTC()
	b.Stay.CheckOut = b.Stay.CheckOut.UTC()

	lines, err := r.getLines(ctx, b.ID)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Lines = lines
	return b, nil
}

func (r *BookingRepository) getLines(ctx context.Context, bookingID string) ([]domain.BookingLine, error) {
	const query = `
SELECT room_type_id, quantity, meal_plan, adults, price_cents
FROM booking_lines
WHERE booking_id = $1
ORDER BY room_type_id`

	rows, err := r.query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.BookingLine
	for rows.Next() {
		var line domain.BookingLine
		var plan string
		if err := rows.Scan(&line.RoomTypeID, &line.Quantity, &plan, &line.Adults, &line.PriceCents); err != nil {
			return nil, fmt.Errorf("scan booking line: %w", err)
		}
		line.MealPlan = domain.MealPlan(plan)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking lines: %w", err)
	}
	return lines, nil
}

func (r *BookingRepository) SetStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	const stmt = `
UPDATE bookings
SET status = $2, updated_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status)
	if err != nil {
		return fmt.Errorf("set booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// Cancel flips the booking to cancelled and records the reason in the
// same write; status changes elsewhere never touch the reason.
func (r *BookingRepository) Cancel(ctx context.Context, id, reason string) error {
	const stmt = `
UPDATE bookings
SET status = 'cancelled', cancel_reason = $2, updated_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, reason)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, transactionID string) error {
	const stmt = `
UPDATE bookings
SET payment_status = $2, transaction_id = $3, updated_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status, transactionID)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
