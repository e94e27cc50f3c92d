// Package payment adapts external payment gateways to the narrow
// surface the booking orchestrator needs: a charge call and normalized
// webhook events.
package payment

import (
	"context"
	"errors"
)

type EventType string

const (
	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
	EventPaymentRefunded  EventType = "payment_refunded"
)

// Event is a gateway notification reduced to what the core consumes.
type Event struct {
	Type          EventType
	BookingCode   string
	TransactionID string
	AmountCents   int64
}

type ChargeRequest struct {
	BookingCode string
	AmountCents int64
	Currency    string
	Method      string
	Token       string
}

type ChargeResult struct {
	Success       bool
	TransactionID string
	Message       string
}

var (
	ErrUnknownGateway = errors.New("unknown payment gateway")
	ErrBadWebhook     = errors.New("malformed webhook payload")
)

// Gateway is implemented per provider. Charge returns a declined
// ChargeResult for business rejections; transport-level failures come
// back as errors.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	ParseWebhook(gateway string, body []byte) (Event, error)
}
