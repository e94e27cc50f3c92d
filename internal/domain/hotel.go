package domain

import "time"

// Hotel groups room types; used for display and provisioning only, the
// reservation core works at room-type granularity.
type Hotel struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// RoomType is the sellable unit: identical physical rooms sold by count
// per calendar date.
type RoomType struct {
	ID            string
	HotelID       string
	Name          string
	Description   string
	TotalRooms    int
	BaseRateCents int64
	MaxGuests     int
	CreatedAt     time.Time
}
