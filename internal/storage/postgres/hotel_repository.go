package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type HotelRepository struct {
	pool *pgxpool.Pool
}

func NewHotelRepository(pool *pgxpool.Pool) *HotelRepository {
	return &HotelRepository{pool: pool}
}

func (r *HotelRepository) CreateHotel(ctx context.Context, hotel domain.Hotel) error {
	const stmt = `INSERT INTO hotels (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.exec(ctx, stmt, hotel.ID, hotel.Name, hotel.Slug, hotel.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrHotelSlugTaken
		}
		return fmt.Errorf("create hotel: %w", err)
	}
	return nil
}

func (r *HotelRepository) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	const query = `SELECT id, name, slug, created_at FROM hotels ORDER BY created_at`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Slug, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hotels: %w", err)
	}
	return hotels, nil
}

func (r *HotelRepository) GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error) {
	const query = `SELECT id, name, slug, created_at FROM hotels WHERE slug = $1`

	var h domain.Hotel
	err := r.queryRow(ctx, query, slug).Scan(&h.ID, &h.Name, &h.Slug, &h.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Hotel{}, domain.ErrHotelNotFound
		}
		return domain.Hotel{}, fmt.Errorf("get hotel: %w", err)
	}
	return h, nil
}

func (r *HotelRepository) CreateRoomType(ctx context.Context, roomType domain.RoomType) error {
	const stmt = `
INSERT INTO room_types (id, hotel_id, name, description, total_rooms, base_rate_cents, max_guests, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		roomType.ID,
		roomType.HotelID,
		roomType.Name,
		roomType.Description,
		roomType.TotalRooms,
		roomType.BaseRateCents,
		roomType.MaxGuests,
		roomType.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create room type: %w", err)
	}
	return nil
}

func (r *HotelRepository) ListRoomTypesByHotel(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	const query = `
SELECT id, hotel_id, name, description, total_rooms, base_rate_cents, max_guests, created_at
FROM room_types
WHERE hotel_id = $1
ORDER BY created_at`

	rows, err := r.query(ctx, query, hotelID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list room types: %w", err)
	}
	defer rows.Close()

	var roomTypes []domain.RoomType
	for rows.Next() {
		var rt domain.RoomType
		if err := rows.Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Description, &rt.TotalRooms, &rt.BaseRateCents, &rt.MaxGuests, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room type: %w", err)
		}
		roomTypes = append(roomTypes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room types: %w", err)
	}
	return roomTypes, nil
}

func (r *HotelRepository) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	const query = `
SELECT id, hotel_id, name, description, total_rooms, base_rate_cents, max_guests, created_at
FROM room_types
WHERE id = $1`

	var rt domain.RoomType
	err := r.queryRow(ctx, query, id).
		Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Description, &rt.TotalRooms, &rt.BaseRateCents, &rt.MaxGuests, &rt.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.RoomType{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.RoomType{}, domain.ErrRoomTypeNotFound
		}
		return domain.RoomType{}, fmt.Errorf("get room type: %w", err)
	}
	return rt, nil
}

func (r *HotelRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HotelRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *HotelRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
