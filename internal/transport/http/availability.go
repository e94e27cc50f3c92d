package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

// AvailabilityProvider answers per-day free room counts.
type AvailabilityProvider interface {
	Availability(ctx context.Context, roomTypeID string, stay domain.StayRange) ([]domain.DayAvailability, error)
}

// HandleAvailability routes GET /rooms/{roomTypeID}/availability.
func HandleAvailability(svc AvailabilityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "rooms" || parts[1] == "" || parts[2] != "availability" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		roomTypeID := parts[1]

		from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "invalid from date, want YYYY-MM-DD")
			return
		}
		to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "invalid to date, want YYYY-MM-DD")
			return
		}
		stay, err := domain.NewStayRange(from, to)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		days, err := svc.Availability(r.Context(), roomTypeID, stay)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toAvailabilityResponse(roomTypeID, days))
	}
}

type dayAvailabilityResponse struct {
	Day  string `json:"day"`
	Free int    `json:"free"`
}

type availabilityResponse struct {
	RoomTypeID string                    `json:"room_type_id"`
	Days       []dayAvailabilityResponse `json:"days"`
}

func toAvailabilityResponse(roomTypeID string, days []domain.DayAvailability) availabilityResponse {
	resp := availabilityResponse{
		RoomTypeID: roomTypeID,
		Days:       make([]dayAvailabilityResponse, 0, len(days)),
	}
	for _, day := range days {
		resp.Days = append(resp.Days, dayAvailabilityResponse{
			Day:  day.Day.Format("2006-01-02"),
			Free: day.Free,
		})
	}
	return resp
}
