package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const holdStmt = `
INSERT INTO holds (id, status, check_in, check_out, extras, quoted_total_cents, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	extras, err := json.Marshal(hold.Extras)
	if err != nil {
		return fmt.Errorf("encode extras: %w", err)
	}
	if hold.Extras == nil {
		extras = []byte(`[]`)
	}

	if _, err := r.exec(ctx, holdStmt,
		hold.ID,
		hold.Status,
		hold.Stay.CheckIn,
		hold.Stay.CheckOut,
		extras,
		hold.QuotedTotalCents,
		hold.ExpiresAt,
		hold.CreatedAt,
	); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold: %w", err)
	}

	const lineStmt = `
INSERT INTO hold_lines (hold_id, room_type_id, quantity, meal_plan, adults, quoted_cents)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, line := range hold.Lines {
		if _, err := r.exec(ctx, lineStmt,
			hold.ID,
			line.RoomTypeID,
			line.Quantity,
			line.MealPlan,
			line.Adults,
			line.QuotedCents,
		); err != nil {
			return fmt.Errorf("create hold line: %w", err)
		}
	}
	return nil
}

func (r *HoldRepository) GetHold(ctx context.Context, id string) (domain.Hold, error) {
	return r.getHold(ctx, id, false)
}

func (r *HoldRepository) GetHoldForUpdate(ctx context.Context, id string) (domain.Hold, error) {
	return r.getHold(ctx, id, true)
}

func (r *HoldRepository) getHold(ctx context.Context, id string, forUpdate bool) (domain.Hold, error) {
	query := `
SELECT id, status, check_in, check_out, extras, quoted_total_cents, expires_at, created_at
FROM holds
WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var h domain.Hold
	var status string
	var extras []byte
	err := r.queryRow(ctx, query, id).
		Scan(&h.ID, &status, &h.Stay.CheckIn, &h.Stay.CheckOut, &extras, &h.QuotedTotalCents, &h.ExpiresAt, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("get hold: %w", err)
	}
	h.Status = domain.HoldStatus(status)
	h.Stay.CheckIn = h.Stay.CheckIn.UTC()
	h.Stay.CheckOut = h.Stay.CheckOut.UTC()
	if err := json.Unmarshal(extras, &h.Extras); err != nil {
		return domain.Hold{}, fmt.Errorf("decode extras: %w", err)
	}

	lines, err := r.getLines(ctx, h.ID)
	if err != nil {
		return domain.Hold{}, err
	}
	h.Lines = lines
	return h, nil
}

func (r *HoldRepository) getLines(ctx context.Context, holdID string) ([]domain.HoldLine, error) {
	const query = `
SELECT room_type_id, quantity, meal_plan, adults, quoted_cents
FROM hold_lines
WHERE hold_id = $1
ORDER BY room_type_id`

	rows, err := r.query(ctx, query, holdID)
	if err != nil {
		return nil, fmt.Errorf("get hold lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.HoldLine
	for rows.Next() {
		var line domain.HoldLine
		var plan string
		if err := rows.Scan(&line.RoomTypeID, &line.Quantity, &plan, &line.Adults, &line.QuotedCents); err != nil {
			return nil, fmt.Errorf("scan hold line: %w", err)
		}
		line.MealPlan = domain.MealPlan(plan)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hold lines: %w", err)
	}
	return lines, nil
}

// TransitionStatus flips status only when the hold is still in from.
// The returned bool tells the caller whether it won the race.
func (r *HoldRepository) TransitionStatus(ctx context.Context, id string, from, to domain.HoldStatus) (bool, error) {
	const stmt = `UPDATE holds SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, id, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("transition hold status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExtendHold pushes expires_at forward only while the hold is active
// and not yet past its deadline.
func (r *HoldRepository) ExtendHold(ctx context.Context, id string, expiresAt, now time.Time) (bool, error) {
	const stmt = `
UPDATE holds
SET expires_at = $2
WHERE id = $1 AND status = 'active' AND expires_at > $3`

	tag, err := r.exec(ctx, stmt, id, expiresAt, now)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("extend hold: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *HoldRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	const query = `
SELECT id
FROM holds
WHERE status = 'active' AND expires_at <= $1
ORDER BY expires_at
LIMIT $2`

	rows, err := r.query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired hold: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired holds: %w", err)
	}
	return ids, nil
}

func (r *HoldRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HoldRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *HoldRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
