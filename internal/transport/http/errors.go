package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/payment"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidDateRange      = "invalid_date_range"
	codeInvalidQuantity       = "invalid_quantity"
	codeInvalidID             = "invalid_id"
	codeInsufficientInventory = "insufficient_inventory"
	codeHoldNotFound          = "hold_not_found"
	codeHoldExpired           = "hold_expired"
	codeHoldNotActive         = "hold_not_active"
	codeBookingNotFound       = "booking_not_found"
	codeBookingNotCancellable = "booking_not_cancellable"
	codeBookingNotPayable     = "booking_not_payable"
	codePriceMismatch         = "price_mismatch"
	codePaymentFailed         = "payment_failed"
	codePaymentUnavailable    = "payment_unavailable"
	codeConcurrencyConflict   = "concurrency_conflict"
	codeGuestNameRequired     = "guest_name_required"
	codeHotelNameRequired     = "hotel_name_required"
	codeHotelSlugTaken        = "hotel_slug_taken"
	codeRoomTypeNameRequired  = "room_type_name_required"
	codeInvalidCapacity       = "invalid_capacity"
	codeInvalidRate           = "invalid_rate"
	codeRoomTypeNotFound      = "room_type_not_found"
	codeHotelNotFound         = "hotel_not_found"
	codeUnknownGateway        = "unknown_gateway"
	codeBadWebhook            = "bad_webhook"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the reservation core's typed failures onto the
// JSON error surface. Anything unmapped is a genuine infrastructure
// fault and comes back as a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsInsufficientInventory(err):
		writeError(w, http.StatusBadRequest, codeInsufficientInventory, err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrGuestNameRequired):
		writeError(w, http.StatusBadRequest, codeGuestNameRequired, err.Error())
	case errors.Is(err, domain.ErrHoldNotFound):
		writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
	case errors.Is(err, domain.ErrHoldExpired):
		writeError(w, http.StatusBadRequest, codeHoldExpired, err.Error())
	case errors.Is(err, domain.ErrHoldNotActive):
		writeError(w, http.StatusConflict, codeHoldNotActive, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotCancellable):
		writeError(w, http.StatusConflict, codeBookingNotCancellable, err.Error())
	case errors.Is(err, domain.ErrBookingNotPayable):
		writeError(w, http.StatusConflict, codeBookingNotPayable, err.Error())
	case errors.Is(err, domain.ErrPriceMismatch):
		writeError(w, http.StatusConflict, codePriceMismatch, err.Error())
	case errors.Is(err, domain.ErrPaymentFailed):
		writeError(w, http.StatusPaymentRequired, codePaymentFailed, err.Error())
	case errors.Is(err, domain.ErrPaymentUnavailable):
		writeError(w, http.StatusServiceUnavailable, codePaymentUnavailable, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, codeConcurrencyConflict, err.Error())
	case errors.Is(err, domain.ErrRoomTypeNotFound):
		writeError(w, http.StatusNotFound, codeRoomTypeNotFound, err.Error())
	case errors.Is(err, domain.ErrHotelNotFound):
		writeError(w, http.StatusNotFound, codeHotelNotFound, err.Error())
	case errors.Is(err, domain.ErrHotelNameRequired):
		writeError(w, http.StatusBadRequest, codeHotelNameRequired, err.Error())
	case errors.Is(err, domain.ErrHotelSlugTaken):
		writeError(w, http.StatusConflict, codeHotelSlugTaken, err.Error())
	case errors.Is(err, domain.ErrRoomTypeNameRequired):
		writeError(w, http.StatusBadRequest, codeRoomTypeNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrInvalidRate):
		writeError(w, http.StatusBadRequest, codeInvalidRate, err.Error())
	case errors.Is(err, payment.ErrUnknownGateway):
		writeError(w, http.StatusNotFound, codeUnknownGateway, err.Error())
	case errors.Is(err, payment.ErrBadWebhook):
		writeError(w, http.StatusBadRequest, codeBadWebhook, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
