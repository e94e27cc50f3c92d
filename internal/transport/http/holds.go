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

// HoldCreator is the minimal interface needed to start the booking flow.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.Hold, error)
}

// HoldManager covers the token-scoped hold operations.
type HoldManager interface {
	GetHoldSummary(ctx context.Context, token string) (app.HoldSummary, error)
	ExtendHold(ctx context.Context, token string) (domain.Hold, error)
	ReleaseHold(ctx context.Context, token string) error
}

// HandleInitBooking returns an HTTP handler that reserves inventory and
// hands out a hold token.
func HandleInitBooking(svc HoldCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		in, ok := decodeStayRequest(w, r)
		if !ok {
			return
		}

		hold, err := svc.CreateHold(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toHoldResponse(hold, nil))
	}
}

// HandleHold routes /bookings/hold/{token} and
// /bookings/hold/{token}/extend.
func HandleHold(svc HoldManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, action, ok := parseHoldPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			summary, err := svc.GetHoldSummary(r.Context(), token)
			if err != nil {
				// The summary endpoint treats an expired token the same
				// as a missing one.
				if err == domain.ErrHoldExpired {
					writeError(w, http.StatusNotFound, codeHoldExpired, err.Error())
					return
				}
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toHoldResponse(summary.Hold, summary.RoomNames))

		case action == "" && r.Method == http.MethodDelete:
			// Idempotent: releasing an unknown or already-terminal hold
			// still answers 200.
			if err := svc.ReleaseHold(r.Context(), token); err != nil && err != domain.ErrHoldNotFound {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "released"})

		case action == "extend" && r.Method == http.MethodPost:
			hold, err := svc.ExtendHold(r.Context(), token)
			if err != nil {
				if err == domain.ErrHoldExpired || err == domain.ErrHoldNotActive {
					writeError(w, http.StatusBadRequest, codeHoldExpired, err.Error())
					return
				}
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toHoldResponse(hold, nil))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseHoldPath(path string) (token, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 || len(parts) > 4 {
		return "", "", false
	}
	if parts[0] != "bookings" || parts[1] != "hold" || parts[2] == "" {
		return "", "", false
	}
	if len(parts) == 4 {
		if parts[3] != "extend" {
			return "", "", false
		}
		return parts[2], "extend", true
	}
	return parts[2], "", true
}

type holdLineResponse struct {
	RoomTypeID  string `json:"room_type_id"`
	RoomName    string `json:"room_name,omitempty"`
	Quantity    int    `json:"quantity"`
	MealPlan    string `json:"meal_plan"`
	Adults      int    `json:"adults"`
	QuotedCents int64  `json:"quoted_cents"`
}

type holdResponse struct {
	Token      string             `json:"token"`
	Status     string             `json:"status"`
	CheckIn    string             `json:"check_in"`
	CheckOut   string             `json:"check_out"`
	Nights     int                `json:"nights"`
	Lines      []holdLineResponse `json:"lines"`
	TotalCents int64              `json:"total_cents"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

func toHoldResponse(hold domain.Hold, roomNames map[string]string) holdResponse {
	resp := holdResponse{
		Token:      hold.ID,
		Status:     string(hold.Status),
		CheckIn:    hold.Stay.CheckIn.Format("2006-01-02"),
		CheckOut:   hold.Stay.CheckOut.Format("2006-01-02"),
		Nights:     hold.Stay.Nights(),
		Lines:      make([]holdLineResponse, 0, len(hold.Lines)),
		TotalCents: hold.QuotedTotalCents,
		ExpiresAt:  hold.ExpiresAt,
	}
	for _, line := range hold.Lines {
		resp.Lines = append(resp.Lines, holdLineResponse{
			RoomTypeID:  line.RoomTypeID,
			RoomName:    roomNames[line.RoomTypeID],
			Quantity:    line.Quantity,
			MealPlan:    string(line.MealPlan),
			Adults:      line.Adults,
			QuotedCents: line.QuotedCents,
		})
	}
	return resp
}
