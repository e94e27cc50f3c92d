package app

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/clock"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/metrics"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateHold(ctx context.Context, hold domain.Hold) error
	GetHold(ctx context.Context, id string) (domain.Hold, error)
	GetHoldForUpdate(ctx context.Context, id string) (domain.Hold, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.HoldStatus) (bool, error)
	ExtendHold(ctx context.Context, id string, expiresAt, now time.Time) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
}

const (
	defaultHoldTTL    = 15 * time.Minute
	expiryBatchSize   = 100
	defaultSweepEvery = 30 * time.Second
)

// HoldService owns the hold state machine:
// active -> {expired, released, consumed}, terminal states final.
// Every transition goes through a conditional update so the expiry
// sweep and a racing confirm cannot both win.
type HoldService struct {
	repo    HoldRepository
	ledger  *Ledger
	pricing *PricingEngine
	rooms   RoomTypeReader
	clock   clock.Clock
	holdTTL time.Duration
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

func NewHoldService(repo HoldRepository, ledger *Ledger, pricing *PricingEngine, rooms RoomTypeReader, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		ledger:  ledger,
		pricing: pricing,
		rooms:   rooms,
		clock:   clk,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RoomRequest struct {
	RoomTypeID string
	Quantity   int
	MealPlan   domain.MealPlan
	Adults     int
}

type CreateHoldInput struct {
	CheckIn  time.Time
	CheckOut time.Time
	Rooms    []RoomRequest
	Extras   []domain.Extra
}

// LineQuote pairs one requested room line with its price breakdown.
type LineQuote struct {
	RoomTypeID string
	RoomName   string
	Quantity   int
	Quote      domain.Quote
}

// StayQuote is the no-side-effect price preview for a whole request.
type StayQuote struct {
	Nights      int
	Lines       []LineQuote
	ExtrasCents int64
	TotalCents  int64
}

// QuoteStay prices a request without touching inventory.
func (s *HoldService) QuoteStay(ctx context.Context, in CreateHoldInput) (StayQuote, error) {
	stay, err := domain.NewStayRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return StayQuote{}, err
	}
	if len(in.Rooms) == 0 {
		return StayQuote{}, domain.ErrInvalidQuantity
	}

	result := StayQuote{Nights: stay.Nights()}
	for _, room := range in.Rooms {
		roomType, err := s.rooms.GetRoomType(ctx, room.RoomTypeID)
		if err != nil {
			return StayQuote{}, err
		}
		quote, err := s.pricing.QuoteLine(roomType, stay, room.Quantity, room.MealPlan, room.Adults, nil)
		if err != nil {
			return StayQuote{}, err
		}
		result.Lines = append(result.Lines, LineQuote{
			RoomTypeID: room.RoomTypeID,
			RoomName:   roomType.Name,
			Quantity:   room.Quantity,
			Quote:      quote,
		})
		result.TotalCents += quote.TotalCents
	}

	extras := s.pricing.QuoteExtras(in.Extras)
	result.ExtrasCents = extras.TotalCents
	result.TotalCents += extras.TotalCents
	return result, nil
}

// CreateHold reserves every requested line inside one transaction. If
// any line cannot be covered the transaction aborts, so no partial
// reservation ever survives a failure.
func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Hold, error) {
	stay, err := domain.NewStayRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return domain.Hold{}, err
	}
	if len(in.Rooms) == 0 {
		return domain.Hold{}, domain.ErrInvalidQuantity
	}
	for _, room := range in.Rooms {
		if room.Quantity <= 0 {
			return domain.Hold{}, domain.ErrInvalidQuantity
		}
		if !room.MealPlan.Valid() {
			return domain.Hold{}, domain.ErrInvalidQuantity
		}
	}

	// Deterministic lock ordering: two concurrent multi-line holds
	// touching the same room types always lock in the same sequence.
	rooms := append([]RoomRequest(nil), in.Rooms...)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomTypeID < rooms[j].RoomTypeID })

	now := s.clock.Now()
	var result domain.Hold

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		lines := make([]domain.HoldLine, 0, len(rooms))
		var total int64

		for _, room := range rooms {
			roomType, err := s.rooms.GetRoomType(txCtx, room.RoomTypeID)
			if err != nil {
				return err
			}
			quote, err := s.pricing.QuoteLine(roomType, stay, room.Quantity, room.MealPlan, room.Adults, nil)
			if err != nil {
				return err
			}
			if err := s.ledger.Reserve(txCtx, room.RoomTypeID, stay, room.Quantity); err != nil {
				return err
			}
			lines = append(lines, domain.HoldLine{
				RoomTypeID:  room.RoomTypeID,
				Quantity:    room.Quantity,
				MealPlan:    room.MealPlan,
				Adults:      room.Adults,
				QuotedCents: quote.TotalCents,
			})
			total += quote.TotalCents
		}
		total += s.pricing.QuoteExtras(in.Extras).TotalCents

		hold := domain.Hold{
			ID:               newID(),
			Status:           domain.HoldStatusActive,
			Stay:             stay,
			Lines:            lines,
			Extras:           in.Extras,
			QuotedTotalCents: total,
			ExpiresAt:        now.Add(s.holdTTL),
			CreatedAt:        now,
		}
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return domain.Hold{}, err
	}

	metrics.HoldsCreated.Inc()
	return result, nil
}

// HoldSummary is what the "review your hold" screen renders.
type HoldSummary struct {
	Hold      domain.Hold
	RoomNames map[string]string
}

// GetHoldSummary returns the hold with display names, or ErrHoldExpired
// / ErrHoldNotFound when the token is past its TTL or terminal. An
// active-but-overdue hold is expired on read here, so stale tokens
// never leak a reservation past the sweep interval.
func (s *HoldService) GetHoldSummary(ctx context.Context, token string) (HoldSummary, error) {
	hold, err := s.repo.GetHold(ctx, token)
	if err != nil {
		return HoldSummary{}, err
	}

	now := s.clock.Now()
	switch hold.Status {
	case domain.HoldStatusActive:
		if !hold.ExpiresAt.After(now) {
			if _, err := s.expireHold(ctx, hold.ID, now); err != nil {
				return HoldSummary{}, err
			}
			return HoldSummary{}, domain.ErrHoldExpired
		}
	case domain.HoldStatusExpired:
		return HoldSummary{}, domain.ErrHoldExpired
	default:
		return HoldSummary{}, domain.ErrHoldNotFound
	}

	names := make(map[string]string, len(hold.Lines))
	for _, line := range hold.Lines {
		roomType, err := s.rooms.GetRoomType(ctx, line.RoomTypeID)
		if err != nil {
			return HoldSummary{}, err
		}
		names[line.RoomTypeID] = roomType.Name
	}
	return HoldSummary{Hold: hold, RoomNames: names}, nil
}

// ExtendHold resets expires_at to a full TTL from now. Only an active,
// not-yet-expired hold can be extended; there is no retroactive rescue
// of an expired token.
func (s *HoldService) ExtendHold(ctx context.Context, token string) (domain.Hold, error) {
	now := s.clock.Now()
	extended, err := s.repo.ExtendHold(ctx, token, now.Add(s.holdTTL), now)
	if err != nil {
		return domain.Hold{}, err
	}
	if !extended {
		hold, err := s.repo.GetHold(ctx, token)
		if err != nil {
			return domain.Hold{}, err
		}
		if hold.Status == domain.HoldStatusActive || hold.Status == domain.HoldStatusExpired {
			return domain.Hold{}, domain.ErrHoldExpired
		}
		return domain.Hold{}, domain.ErrHoldNotActive
	}
	return s.repo.GetHold(ctx, token)
}

// ReleaseHold returns the hold's inventory to the ledger. Releasing an
// already-terminal hold is a no-op, so the inventory delta is given
// back exactly once no matter how often the client retries.
func (s *HoldService) ReleaseHold(ctx context.Context, token string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, token)
		if err != nil {
			return err
		}
		if hold.Status.Terminal() {
			return nil
		}
		won, err := s.repo.TransitionStatus(txCtx, hold.ID, domain.HoldStatusActive, domain.HoldStatusReleased)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		return s.releaseLines(txCtx, hold)
	})
}

// ExpireDue transitions every overdue active hold to expired and
// releases its inventory. Safe to run concurrently with confirms: the
// conditional status update decides the winner per hold.
func (s *HoldService) ExpireDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	ids, err := s.repo.ListExpired(ctx, now, expiryBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		won, err := s.expireHold(ctx, id, now)
		if err != nil {
			return expired, err
		}
		if won {
			expired++
		}
	}
	if expired > 0 {
		metrics.HoldsExpired.Add(float64(expired))
	}
	return expired, nil
}

// RunExpirySweep runs ExpireDue on a ticker until ctx is cancelled.
// The interval bounds how long expired holds can linger as phantom
// unavailability.
func (s *HoldService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepEvery
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithField("interval", interval.String()).Info("hold expiry sweep started")
	for {
		select {
		case <-ctx.Done():
			log.Info("hold expiry sweep stopped")
			return
		case <-ticker.C:
			count, err := s.ExpireDue(ctx)
			if err != nil {
				log.WithError(err).Warn("hold expiry sweep failed")
				continue
			}
			if count > 0 {
				log.WithField("expired", count).Info("released overdue holds")
			}
		}
	}
}

func (s *HoldService) expireHold(ctx context.Context, id string, now time.Time) (bool, error) {
	var won bool
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusActive || hold.ExpiresAt.After(now) {
			return nil
		}
		won, err = s.repo.TransitionStatus(txCtx, hold.ID, domain.HoldStatusActive, domain.HoldStatusExpired)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		return s.releaseLines(txCtx, hold)
	})
	return won, err
}

func (s *HoldService) releaseLines(ctx context.Context, hold domain.Hold) error {
	for _, line := range hold.Lines {
		if err := s.ledger.Release(ctx, line.RoomTypeID, hold.Stay, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}
