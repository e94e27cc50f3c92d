package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/app"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

// CatalogAdmin manages hotels and their room types.
type CatalogAdmin interface {
	CreateHotel(ctx context.Context, in app.CreateHotelInput) (domain.Hotel, error)
	ListHotels(ctx context.Context) ([]domain.Hotel, error)
	CreateRoomType(ctx context.Context, in app.CreateRoomTypeInput) (domain.RoomType, error)
	ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error)
}

// HandleAdminHotels routes POST|GET /admin/hotels.
func HandleAdminHotels(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handleCreateHotel(w, r, svc)
		case http.MethodGet:
			hotels, err := svc.ListHotels(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]hotelResponse, 0, len(hotels))
			for _, h := range hotels {
				resp = append(resp, toHotelResponse(h))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminRoomTypes routes POST|GET /admin/hotels/{id}/room-types.
func HandleAdminRoomTypes(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || parts[0] != "admin" || parts[1] != "hotels" || parts[2] == "" || parts[3] != "room-types" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		hotelID := parts[2]

		switch r.Method {
		case http.MethodPost:
			handleCreateRoomType(w, r, svc, hotelID)
		case http.MethodGet:
			roomTypes, err := svc.ListRoomTypes(r.Context(), hotelID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]roomTypeResponse, 0, len(roomTypes))
			for _, rt := range roomTypes {
				resp = append(resp, toRoomTypeResponse(rt))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createHotelRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func handleCreateHotel(w http.ResponseWriter, r *http.Request, svc CatalogAdmin) {
	var req createHotelRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	hotel, err := svc.CreateHotel(r.Context(), app.CreateHotelInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toHotelResponse(hotel))
}

type createRoomTypeRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	TotalRooms    int    `json:"total_rooms"`
	BaseRateCents int64  `json:"base_rate_cents"`
	MaxGuests     int    `json:"max_guests"`
}

func handleCreateRoomType(w http.ResponseWriter, r *http.Request, svc CatalogAdmin, hotelID string) {
	var req createRoomTypeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	roomType, err := svc.CreateRoomType(r.Context(), app.CreateRoomTypeInput{
		HotelID:       hotelID,
		Name:          req.Name,
		Description:   req.Description,
		TotalRooms:    req.TotalRooms,
		BaseRateCents: req.BaseRateCents,
		MaxGuests:     req.MaxGuests,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toRoomTypeResponse(roomType))
}

type hotelResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func toHotelResponse(h domain.Hotel) hotelResponse {
	return hotelResponse{ID: h.ID, Name: h.Name, Slug: h.Slug, CreatedAt: h.CreatedAt}
}

type roomTypeResponse struct {
	ID            string    `json:"id"`
	HotelID       string    `json:"hotel_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	TotalRooms    int       `json:"total_rooms"`
	BaseRateCents int64     `json:"base_rate_cents"`
	MaxGuests     int       `json:"max_guests"`
	CreatedAt     time.Time `json:"created_at"`
}

func toRoomTypeResponse(rt domain.RoomType) roomTypeResponse {
	return roomTypeResponse{
		ID:            rt.ID,
		HotelID:       rt.HotelID,
		Name:          rt.Name,
		Description:   rt.Description,
		TotalRooms:    rt.TotalRooms,
		BaseRateCents: rt.BaseRateCents,
		MaxGuests:     rt.MaxGuests,
		CreatedAt:     rt.CreatedAt,
	}
}
