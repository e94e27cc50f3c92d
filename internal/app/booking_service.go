package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/clock"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/metrics"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/payment"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
	GetBookingByCode(ctx context.Context, code string) (domain.Booking, error)
	GetBookingByCodeForUpdate(ctx context.Context, code string) (domain.Booking, error)
	SetStatus(ctx context.Context, id string, status domain.BookingStatus) error
	Cancel(ctx context.Context, id, reason string) error
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, transactionID string) error
}

// RefundPolicy drives how much of a cancelled booking comes back.
// Cancellations at least FullRefundDays before check-in refund fully,
// later ones refund PartialPercent.
type RefundPolicy struct {
	FullRefundDays int
	PartialPercent int
}

var DefaultRefundPolicy = RefundPolicy{FullRefundDays: 7, PartialPercent: 50}

// BookingService converts holds into durable bookings and reconciles
// payment outcomes. The hold repository's conditional transition is
// what arbitrates the confirm-vs-expire race: whichever side flips the
// status first wins, the loser fails cleanly.
type BookingService struct {
	repo    BookingRepository
	holds   HoldRepository
	ledger  *Ledger
	pricing *PricingEngine
	rooms   RoomTypeReader
	gateway payment.Gateway
	clock   clock.Clock
	refunds RefundPolicy
}

type BookingServiceOption func(*BookingService)

func WithRefundPolicy(p RefundPolicy) BookingServiceOption {
	return func(s *BookingService) {
		if p.FullRefundDays >= 0 && p.PartialPercent >= 0 && p.PartialPercent <= 100 {
			s.refunds = p
		}
	}
}

func NewBookingService(repo BookingRepository, holds HoldRepository, ledger *Ledger, pricing *PricingEngine, rooms RoomTypeReader, gateway payment.Gateway, clk clock.Clock, opts ...BookingServiceOption) *BookingService {
	svc := &BookingService{
		repo:    repo,
		holds:   holds,
		ledger:  ledger,
		pricing: pricing,
		rooms:   rooms,
		gateway: gateway,
		clock:   clk,
		refunds: DefaultRefundPolicy,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CreateBookingInput struct {
	HoldToken  string
	GuestName  string
	GuestEmail string
	GuestPhone string
	// QuotedTotalCents is the total the client saw. It is only
	// cross-checked, never trusted as the price.
	QuotedTotalCents int64
}

// CreateBookingFromHold consumes an active, unexpired hold into a
// pending-payment booking: recompute the price from current rates,
// commit every line's inventory from held to booked, flip the hold to
// consumed, and persist the booking — all in one transaction.
func (s *BookingService) CreateBookingFromHold(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if in.GuestName == "" {
		return domain.Booking{}, domain.ErrGuestNameRequired
	}

	now := s.clock.Now()
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.holds.GetHoldForUpdate(txCtx, in.HoldToken)
		if err != nil {
			return err
		}
		switch hold.Status {
		case domain.HoldStatusActive:
			if !hold.ExpiresAt.After(now) {
				return domain.ErrHoldExpired
			}
		case domain.HoldStatusExpired:
			return domain.ErrHoldExpired
		default:
			return domain.ErrHoldNotActive
		}

		total, lines, err := s.repriceHold(txCtx, hold)
		if err != nil {
			return err
		}
		// Zero tolerance: any divergence between the stored quote and
		// current rates rejects the confirmation.
		if total != hold.QuotedTotalCents {
			return domain.ErrPriceMismatch
		}
		if in.QuotedTotalCents != 0 && in.QuotedTotalCents != total {
			return domain.ErrPriceMismatch
		}

		won, err := s.holds.TransitionStatus(txCtx, hold.ID, domain.HoldStatusActive, domain.HoldStatusConsumed)
		if err != nil {
			return err
		}
		if !won {
			return domain.ErrConcurrencyConflict
		}

		for _, line := range hold.Lines {
			if err := s.ledger.Commit(txCtx, line.RoomTypeID, hold.Stay, line.Quantity); err != nil {
				return err
			}
		}

		booking := domain.Booking{
			ID:            newID(),
			Code:          newBookingCode(),
			HoldID:        hold.ID,
			GuestName:     in.GuestName,
			GuestEmail:    in.GuestEmail,
			GuestPhone:    in.GuestPhone,
			Stay:          hold.Stay,
			Lines:         lines,
			TotalCents:    total,
			Status:        domain.BookingStatusPendingPayment,
			PaymentStatus: domain.PaymentStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	metrics.BookingsTotal.WithLabelValues(string(domain.BookingStatusPendingPayment)).Inc()
	return result, nil
}

// GetBooking looks a booking up by its human-readable code.
func (s *BookingService) GetBooking(ctx context.Context, code string) (domain.Booking, error) {
	return s.repo.GetBookingByCode(ctx, code)
}

type CancelResult struct {
	Booking domain.Booking
	Refund  domain.Refund
}

// CancelBooking frees the booked inventory and computes the refund per
// policy. Checked-in and checked-out bookings are rejected with a typed
// error rather than a fault.
func (s *BookingService) CancelBooking(ctx context.Context, code, reason string) (CancelResult, error) {
	now := s.clock.Now()
	var result CancelResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingByCodeForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if !booking.Status.Cancellable() {
			return domain.ErrBookingNotCancellable
		}

		for _, line := range booking.Lines {
			if err := s.ledger.CancelBooked(txCtx, line.RoomTypeID, booking.Stay, line.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.Cancel(txCtx, booking.ID, reason); err != nil {
			return err
		}

		booking.Status = domain.BookingStatusCancelled
		booking.CancelReason = reason
		result = CancelResult{
			Booking: booking,
			Refund:  s.refundFor(booking, now),
		}
		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}

	metrics.BookingsTotal.WithLabelValues(string(domain.BookingStatusCancelled)).Inc()
	return result, nil
}

// ProcessPayment charges the gateway for a pending booking. A declined
// charge marks payment_status failed but keeps the booking and its
// inventory; releasing unpaid bookings is a cancellation concern. The
// booking row stays locked across the charge, so a concurrent pay for
// the same booking waits here and then sees the final state instead of
// charging again.
func (s *BookingService) ProcessPayment(ctx context.Context, code, method, token string) (domain.Booking, error) {
	var result domain.Booking
	var declined, confirmed bool

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingByCodeForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingStatusPendingPayment {
			return domain.ErrBookingNotPayable
		}
		if booking.PaymentStatus == domain.PaymentStatusPaid {
			result = booking
			return nil
		}

		charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
			BookingCode: booking.Code,
			AmountCents: booking.TotalCents,
			Currency:    "USD",
			Method:      method,
			Token:       token,
		})
		if err != nil {
			metrics.PaymentsTotal.WithLabelValues("unavailable").Inc()
			return fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
		}

		if !charge.Success {
			metrics.PaymentsTotal.WithLabelValues("failed").Inc()
			if err := s.repo.SetPaymentStatus(txCtx, booking.ID, domain.PaymentStatusFailed, charge.TransactionID); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"booking": booking.Code,
				"message": charge.Message,
			}).Warn("payment declined")
			// Commit the failed mark; the typed error is raised after.
			declined = true
			return nil
		}

		metrics.PaymentsTotal.WithLabelValues("succeeded").Inc()
		result, err = s.confirmPaid(txCtx, booking, charge.TransactionID)
		if err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	if declined {
		return domain.Booking{}, domain.ErrPaymentFailed
	}
	if confirmed {
		metrics.BookingsTotal.WithLabelValues(string(domain.BookingStatusConfirmed)).Inc()
	}
	return result, nil
}

// HandleWebhook applies a normalized gateway event. Events are
// idempotent and state-guarded: replaying a success for an already-paid
// booking is a no-op, a success for a cancelled booking is rejected
// (its inventory is already freed), and failed/refunded events only
// land on the payment state they transition out of.
func (s *BookingService) HandleWebhook(ctx context.Context, gateway string, body []byte) (domain.Booking, error) {
	event, err := s.gateway.ParseWebhook(gateway, body)
	if err != nil {
		return domain.Booking{}, err
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		return s.markPaid(ctx, event.BookingCode, event.TransactionID)
	case payment.EventPaymentFailed:
		return s.applyPaymentOutcome(ctx, event, domain.PaymentStatusFailed)
	case payment.EventPaymentRefunded:
		return s.applyPaymentOutcome(ctx, event, domain.PaymentStatusRefunded)
	default:
		return domain.Booking{}, payment.ErrBadWebhook
	}
}

// markPaid re-reads the booking under lock and only confirms it while
// still pending payment. A booking cancelled in the meantime no longer
// owns any inventory, so a late success event must not resurrect it.
func (s *BookingService) markPaid(ctx context.Context, code, transactionID string) (domain.Booking, error) {
	var result domain.Booking
	var confirmed bool

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingByCodeForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if booking.PaymentStatus == domain.PaymentStatusPaid {
			result = booking
			return nil
		}
		if booking.Status != domain.BookingStatusPendingPayment {
			return domain.ErrBookingNotPayable
		}
		result, err = s.confirmPaid(txCtx, booking, transactionID)
		if err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	if confirmed {
		metrics.PaymentsTotal.WithLabelValues("succeeded").Inc()
		metrics.BookingsTotal.WithLabelValues(string(domain.BookingStatusConfirmed)).Inc()
	}
	return result, nil
}

// confirmPaid flips a pending booking to paid and confirmed inside the
// caller's transaction; the caller holds the row lock.
func (s *BookingService) confirmPaid(ctx context.Context, booking domain.Booking, transactionID string) (domain.Booking, error) {
	if err := s.repo.SetPaymentStatus(ctx, booking.ID, domain.PaymentStatusPaid, transactionID); err != nil {
		return domain.Booking{}, err
	}
	if err := s.repo.SetStatus(ctx, booking.ID, domain.BookingStatusConfirmed); err != nil {
		return domain.Booking{}, err
	}
	booking.PaymentStatus = domain.PaymentStatusPaid
	booking.Status = domain.BookingStatusConfirmed
	booking.TransactionID = transactionID
	return booking, nil
}

// applyPaymentOutcome records a failed or refunded gateway outcome under
// lock. Failed only lands on a pending payment and refunded only on a
// paid one; anything else is a stale or duplicate delivery and leaves
// the booking untouched.
func (s *BookingService) applyPaymentOutcome(ctx context.Context, event payment.Event, to domain.PaymentStatus) (domain.Booking, error) {
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingByCodeForUpdate(txCtx, event.BookingCode)
		if err != nil {
			return err
		}
		if booking.PaymentStatus == to {
			result = booking
			return nil
		}
		from := domain.PaymentStatusPending
		if to == domain.PaymentStatusRefunded {
			from = domain.PaymentStatusPaid
		}
		if booking.PaymentStatus != from {
			log.WithFields(log.Fields{
				"booking": booking.Code,
				"from":    booking.PaymentStatus,
				"to":      to,
			}).Warn("ignoring out-of-order payment webhook")
			result = booking
			return nil
		}
		if err := s.repo.SetPaymentStatus(txCtx, booking.ID, to, event.TransactionID); err != nil {
			return err
		}
		metrics.PaymentsTotal.WithLabelValues(string(to)).Inc()
		booking.PaymentStatus = to
		if event.TransactionID != "" {
			booking.TransactionID = event.TransactionID
		}
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// repriceHold re-derives the hold's total from current rates with the
// hold's original parameters.
func (s *BookingService) repriceHold(ctx context.Context, hold domain.Hold) (int64, []domain.BookingLine, error) {
	var total int64
	lines := make([]domain.BookingLine, 0, len(hold.Lines))

	for _, line := range hold.Lines {
		roomType, err := s.rooms.GetRoomType(ctx, line.RoomTypeID)
		if err != nil {
			return 0, nil, err
		}
		quote, err := s.pricing.QuoteLine(roomType, hold.Stay, line.Quantity, line.MealPlan, line.Adults, nil)
		if err != nil {
			return 0, nil, err
		}
		lines = append(lines, domain.BookingLine{
			RoomTypeID: line.RoomTypeID,
			Quantity:   line.Quantity,
			MealPlan:   line.MealPlan,
			Adults:     line.Adults,
			PriceCents: quote.TotalCents,
		})
		total += quote.TotalCents
	}
	total += s.pricing.QuoteExtras(hold.Extras).TotalCents
	return total, lines, nil
}

func (s *BookingService) refundFor(booking domain.Booking, now time.Time) domain.Refund {
	if booking.PaymentStatus != domain.PaymentStatusPaid {
		return domain.Refund{}
	}
	cutoff := booking.Stay.CheckIn.AddDate(0, 0, -s.refunds.FullRefundDays)
	if now.Before(cutoff) {
		return domain.Refund{AmountCents: booking.TotalCents, Percent: 100}
	}
	return domain.Refund{
		AmountCents: booking.TotalCents * int64(s.refunds.PartialPercent) / 100,
		Percent:     s.refunds.PartialPercent,
	}
}
