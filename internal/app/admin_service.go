package app

import (
	"context"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/clock"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type HotelRepository interface {
	CreateHotel(ctx context.Context, hotel domain.Hotel) error
	ListHotels(ctx context.Context) ([]domain.Hotel, error)
	GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error)
	CreateRoomType(ctx context.Context, roomType domain.RoomType) error
	ListRoomTypesByHotel(ctx context.Context, hotelID string) ([]domain.RoomType, error)
	GetRoomType(ctx context.Context, id string) (domain.RoomType, error)
}

type AdminService struct {
	repo  HotelRepository
	clock clock.Clock
}

func NewAdminService(repo HotelRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateHotelInput struct {
	Name string
	Slug string
}

func (s *AdminService) CreateHotel(ctx context.Context, in CreateHotelInput) (domain.Hotel, error) {
	if in.Name == "" {
		return domain.Hotel{}, domain.ErrHotelNameRequired
	}
	slug := in.Slug
	if slug == "" {
		slug = slugify(in.Name)
	}

	hotel := domain.Hotel{
		ID:        newID(),
		Name:      in.Name,
		Slug:      slug,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateHotel(ctx, hotel); err != nil {
		return domain.Hotel{}, err
	}
	return hotel, nil
}

func (s *AdminService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.ListHotels(ctx)
}

func (s *AdminService) GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error) {
	if slug == "" {
		return domain.Hotel{}, domain.ErrInvalidID
	}
	return s.repo.GetHotelBySlug(ctx, slug)
}

type CreateRoomTypeInput struct {
	HotelID       string
	Name          string
	Description   string
	TotalRooms    int
	BaseRateCents int64
	MaxGuests     int
}

func (s *AdminService) CreateRoomType(ctx context.Context, in CreateRoomTypeInput) (domain.RoomType, error) {
	if in.HotelID == "" {
		return domain.RoomType{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.RoomType{}, domain.ErrRoomTypeNameRequired
	}
	if in.TotalRooms <= 0 {
		return domain.RoomType{}, domain.ErrInvalidCapacity
	}
	if in.BaseRateCents < 0 {
		return domain.RoomType{}, domain.ErrInvalidRate
	}
	maxGuests := in.MaxGuests
	if maxGuests <= 0 {
		maxGuests = 2
	}

	roomType := domain.RoomType{
		ID:            newID(),
		HotelID:       in.HotelID,
		Name:          in.Name,
		Description:   in.Description,
		TotalRooms:    in.TotalRooms,
		BaseRateCents: in.BaseRateCents,
		MaxGuests:     maxGuests,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.CreateRoomType(ctx, roomType); err != nil {
		return domain.RoomType{}, err
	}
	return roomType, nil
}

func (s *AdminService) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	if hotelID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListRoomTypesByHotel(ctx, hotelID)
}

func (s *AdminService) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	if id == "" {
		return domain.RoomType{}, domain.ErrInvalidID
	}
	return s.repo.GetRoomType(ctx, id)
}
