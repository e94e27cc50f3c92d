package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// HTTPGateway talks to a PSP's REST API. All calls go through a circuit
// breaker so a misbehaving provider cannot pile up blocked requests.
type HTTPGateway struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func NewHTTPGateway(baseURL string) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(log.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("payment circuit breaker state changed")
		},
	})

	return &HTTPGateway{client: client, breaker: breaker}
}

type chargePayload struct {
	BookingCode string `json:"booking_code"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Token       string `json:"token,omitempty"`
}

type chargeResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Charge posts the charge and normalizes the response. A declined
// charge is not an error; only transport failures and open-breaker
// states are.
func (g *HTTPGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(chargePayload{
				BookingCode: req.BookingCode,
				AmountCents: req.AmountCents,
				Currency:    req.Currency,
				Method:      req.Method,
				Token:       req.Token,
			}).
			Post("/v1/charges")
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("gateway returned %d", resp.StatusCode())
		}

		var body chargeResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, fmt.Errorf("decode charge response: %w", err)
		}
		return ChargeResult{
			Success:       resp.IsSuccess() && body.Status == "succeeded",
			TransactionID: body.TransactionID,
			Message:       body.Message,
		}, nil
	})
	if err != nil {
		return ChargeResult{}, fmt.Errorf("charge %s: %w", req.BookingCode, err)
	}
	return result.(ChargeResult), nil
}

type webhookPayload struct {
	Type          string `json:"type"`
	BookingCode   string `json:"booking_code"`
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// ParseWebhook maps a provider notification onto the normalized event
// set. Providers share the payload shape here; only the event names
// differ per gateway.
func (g *HTTPGateway) ParseWebhook(gateway string, body []byte) (Event, error) {
	types, ok := gatewayEventTypes[gateway]
	if !ok {
		return Event{}, ErrUnknownGateway
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, ErrBadWebhook
	}
	if payload.BookingCode == "" {
		return Event{}, ErrBadWebhook
	}
	eventType, ok := types[payload.Type]
	if !ok {
		return Event{}, ErrBadWebhook
	}

	return Event{
		Type:          eventType,
		BookingCode:   payload.BookingCode,
		TransactionID: payload.TransactionID,
		AmountCents:   payload.AmountCents,
	}, nil
}

var gatewayEventTypes = map[string]map[string]EventType{
	"stripe": {
		"payment_intent.succeeded":      EventPaymentSucceeded,
		"payment_intent.payment_failed": EventPaymentFailed,
		"charge.refunded":               EventPaymentRefunded,
	},
	"paymob": {
		"transaction.succeeded": EventPaymentSucceeded,
		"transaction.failed":    EventPaymentFailed,
		"transaction.refunded":  EventPaymentRefunded,
	},
}
