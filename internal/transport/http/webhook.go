package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

const maxWebhookBody = 1 << 20

// WebhookReceiver applies payment gateway callbacks to bookings.
type WebhookReceiver interface {
	HandleWebhook(ctx context.Context, gateway string, body []byte) (domain.Booking, error)
}

// HandleWebhook routes /bookings/webhook/{gateway}.
func HandleWebhook(svc WebhookReceiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "bookings" || parts[1] != "webhook" || parts[2] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		gateway := parts[2]

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		booking, err := svc.HandleWebhook(r.Context(), gateway, body)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":         "ok",
			"booking_code":   booking.Code,
			"booking_status": string(booking.Status),
		})
	}
}
