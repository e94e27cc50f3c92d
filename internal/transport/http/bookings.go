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

// BookingManager covers the booking lifecycle operations.
type BookingManager interface {
	CreateBookingFromHold(ctx context.Context, in app.CreateBookingInput) (domain.Booking, error)
	GetBooking(ctx context.Context, code string) (domain.Booking, error)
	CancelBooking(ctx context.Context, code, reason string) (app.CancelResult, error)
	ProcessPayment(ctx context.Context, code, method, token string) (domain.Booking, error)
}

type createBookingRequest struct {
	HoldToken        string `json:"hold_token"`
	GuestName        string `json:"guest_name"`
	GuestEmail       string `json:"guest_email"`
	GuestPhone       string `json:"guest_phone"`
	QuotedTotalCents int64  `json:"quoted_total_cents"`
}

// HandleCreateBooking returns an HTTP handler that converts a hold into a
// pending booking.
func HandleCreateBooking(svc BookingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.HoldToken == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "hold_token is required")
			return
		}

		booking, err := svc.CreateBookingFromHold(r.Context(), app.CreateBookingInput{
			HoldToken:        req.HoldToken,
			GuestName:        req.GuestName,
			GuestEmail:       req.GuestEmail,
			GuestPhone:       req.GuestPhone,
			QuotedTotalCents: req.QuotedTotalCents,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toBookingResponse(booking, nil))
	}
}

// HandleBooking routes /bookings/{code}, /bookings/{code}/cancel and
// /bookings/{code}/pay.
func HandleBooking(svc BookingManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, action, ok := parseBookingPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			booking, err := svc.GetBooking(r.Context(), code)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toBookingResponse(booking, nil))

		case action == "cancel" && r.Method == http.MethodPost:
			handleCancel(w, r, svc, code)

		case action == "pay" && r.Method == http.MethodPost:
			handlePay(w, r, svc, code)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func handleCancel(w http.ResponseWriter, r *http.Request, svc BookingManager, code string) {
	var req cancelRequest
	if r.Body != nil {
		// The cancel reason is optional so an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := svc.CancelBooking(r.Context(), code, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toBookingResponse(result.Booking, &result.Refund))
}

type payRequest struct {
	Method string `json:"method"`
	Token  string `json:"token"`
}

func handlePay(w http.ResponseWriter, r *http.Request, svc BookingManager, code string) {
	var req payRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "payment token is required")
		return
	}

	booking, err := svc.ProcessPayment(r.Context(), code, req.Method, req.Token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toBookingResponse(booking, nil))
}

func parseBookingPath(path string) (code, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", false
	}
	if parts[0] != "bookings" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 3 {
		if parts[2] != "cancel" && parts[2] != "pay" {
			return "", "", false
		}
		return parts[1], parts[2], true
	}
	return parts[1], "", true
}

type bookingLineResponse struct {
	RoomTypeID string `json:"room_type_id"`
	Quantity   int    `json:"quantity"`
	MealPlan   string `json:"meal_plan"`
	Adults     int    `json:"adults"`
	PriceCents int64  `json:"price_cents"`
}

type refundResponse struct {
	AmountCents int64 `json:"amount_cents"`
	Percent     int   `json:"percent"`
}

type bookingResponse struct {
	Code          string                `json:"code"`
	Status        string                `json:"status"`
	PaymentStatus string                `json:"payment_status"`
	GuestName     string                `json:"guest_name"`
	GuestEmail    string                `json:"guest_email,omitempty"`
	GuestPhone    string                `json:"guest_phone,omitempty"`
	CheckIn       string                `json:"check_in"`
	CheckOut      string                `json:"check_out"`
	Nights        int                   `json:"nights"`
	Lines         []bookingLineResponse `json:"lines"`
	TotalCents    int64                 `json:"total_cents"`
	TransactionID string                `json:"transaction_id,omitempty"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	Refund        *refundResponse       `json:"refund,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

func toBookingResponse(booking domain.Booking, refund *domain.Refund) bookingResponse {
	resp := bookingResponse{
		Code:          booking.Code,
		Status:        string(booking.Status),
		PaymentStatus: string(booking.PaymentStatus),
		GuestName:     booking.GuestName,
		GuestEmail:    booking.GuestEmail,
		GuestPhone:    booking.GuestPhone,
		CheckIn:       booking.Stay.CheckIn.Format("2006-01-02"),
		CheckOut:      booking.Stay.CheckOut.Format("2006-01-02"),
		Nights:        booking.Stay.Nights(),
		Lines:         make([]bookingLineResponse, 0, len(booking.Lines)),
		TotalCents:    booking.TotalCents,
		TransactionID: booking.TransactionID,
		CancelReason:  booking.CancelReason,
		CreatedAt:     booking.CreatedAt,
	}
	for _, line := range booking.Lines {
		resp.Lines = append(resp.Lines, bookingLineResponse{
			RoomTypeID: line.RoomTypeID,
			Quantity:   line.Quantity,
			MealPlan:   string(line.MealPlan),
			Adults:     line.Adults,
			PriceCents: line.PriceCents,
		})
	}
	if refund != nil {
		resp.Refund = &refundResponse{AmountCents: refund.AmountCents, Percent: refund.Percent}
	}
	return resp
}
