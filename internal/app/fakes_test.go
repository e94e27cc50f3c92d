package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/payment"
)

// memStore backs all fake repositories with one shared state so
// cross-repository transactions behave like the real database:
// withTx snapshots the state and restores it when fn fails.
type memStore struct {
	mu        sync.Mutex
	roomTypes map[string]domain.RoomType
	inventory map[string]map[string]*domain.InventoryDay
	holds     map[string]domain.Hold
	bookings  map[string]domain.Booking
	codes     map[string]string
	holdIDs   map[string]string
}

func newMemStore(roomTypes ...domain.RoomType) *memStore {
	s := &memStore{
		roomTypes: make(map[string]domain.RoomType),
		inventory: make(map[string]map[string]*domain.InventoryDay),
		holds:     make(map[string]domain.Hold),
		bookings:  make(map[string]domain.Booking),
		codes:     make(map[string]string),
		holdIDs:   make(map[string]string),
	}
	for _, rt := range roomTypes {
		s.roomTypes[rt.ID] = rt
	}
	return s
}

type memSnapshot struct {
	inventory map[string]map[string]domain.InventoryDay
	holds     map[string]domain.Hold
	bookings  map[string]domain.Booking
	codes     map[string]string
	holdIDs   map[string]string
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		inventory: make(map[string]map[string]domain.InventoryDay, len(s.inventory)),
		holds:     make(map[string]domain.Hold, len(s.holds)),
		bookings:  make(map[string]domain.Booking, len(s.bookings)),
		codes:     make(map[string]string, len(s.codes)),
		holdIDs:   make(map[string]string, len(s.holdIDs)),
	}
	for rt, days := range s.inventory {
		copied := make(map[string]domain.InventoryDay, len(days))
		for key, day := range days {
			copied[key] = *day
		}
		snap.inventory[rt] = copied
	}
	for id, hold := range s.holds {
		snap.holds[id] = hold
	}
	for id, booking := range s.bookings {
		snap.bookings[id] = booking
	}
	for code, id := range s.codes {
		snap.codes[code] = id
	}
	for holdID, id := range s.holdIDs {
		snap.holdIDs[holdID] = id
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.inventory = make(map[string]map[string]*domain.InventoryDay, len(snap.inventory))
	for rt, days := range snap.inventory {
		restored := make(map[string]*domain.InventoryDay, len(days))
		for key, day := range days {
			copied := day
			restored[key] = &copied
		}
		s.inventory[rt] = restored
	}
	s.holds = make(map[string]domain.Hold, len(snap.holds))
	for id, hold := range snap.holds {
		s.holds[id] = hold
	}
	s.bookings = make(map[string]domain.Booking, len(snap.bookings))
	for id, booking := range snap.bookings {
		s.bookings[id] = booking
	}
	s.codes = make(map[string]string, len(snap.codes))
	for code, id := range snap.codes {
		s.codes[code] = id
	}
	s.holdIDs = make(map[string]string, len(snap.holdIDs))
	for holdID, id := range snap.holdIDs {
		s.holdIDs[holdID] = id
	}
}

func (s *memStore) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func dateKey(day time.Time) string {
	return day.Format("2006-01-02")
}

func (s *memStore) day(roomTypeID string, day time.Time) (*domain.InventoryDay, bool) {
	days, ok := s.inventory[roomTypeID]
	if !ok {
		return nil, false
	}
	d, ok := days[dateKey(day)]
	return d, ok
}

func (s *memStore) heldOn(roomTypeID string, day time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.day(roomTypeID, day); ok {
		return d.HeldCount
	}
	return 0
}

func (s *memStore) bookedOn(roomTypeID string, day time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.day(roomTypeID, day); ok {
		return d.BookedCount
	}
	return 0
}

type fakeRoomTypes struct {
	store *memStore
}

func (f *fakeRoomTypes) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	rt, ok := f.store.roomTypes[id]
	if !ok {
		return domain.RoomType{}, domain.ErrRoomTypeNotFound
	}
	return rt, nil
}

type fakeInventoryRepo struct {
	store *memStore
}

func (f *fakeInventoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.store.withTx(ctx, fn)
}

func (f *fakeInventoryRepo) EnsureDays(ctx context.Context, roomTypeID string, totalCount int, dates []time.Time) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	days, ok := f.store.inventory[roomTypeID]
	if !ok {
		days = make(map[string]*domain.InventoryDay)
		f.store.inventory[roomTypeID] = days
	}
	for _, date := range dates {
		key := dateKey(date)
		if _, exists := days[key]; !exists {
			days[key] = &domain.InventoryDay{
				RoomTypeID: roomTypeID,
				Day:        date,
				TotalCount: totalCount,
			}
		}
	}
	return nil
}

func (f *fakeInventoryRepo) GetDaysForUpdate(ctx context.Context, roomTypeID string, dates []time.Time) ([]domain.InventoryDay, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]domain.InventoryDay, 0, len(dates))
	for _, date := range dates {
		if d, ok := f.store.day(roomTypeID, date); ok {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (f *fakeInventoryRepo) AddHeld(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, date := range dates {
		d, ok := f.store.day(roomTypeID, date)
		if !ok {
			return domain.ErrConcurrencyConflict
		}
		if d.HeldCount+d.BookedCount+quantity > d.TotalCount {
			return domain.ErrConcurrencyConflict
		}
		d.HeldCount += quantity
	}
	return nil
}

func (f *fakeInventoryRepo) ReleaseHeld(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, date := range dates {
		if d, ok := f.store.day(roomTypeID, date); ok {
			d.HeldCount -= quantity
			if d.HeldCount < 0 {
				d.HeldCount = 0
			}
		}
	}
	return nil
}

func (f *fakeInventoryRepo) MoveHeldToBooked(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, date := range dates {
		d, ok := f.store.day(roomTypeID, date)
		if !ok || d.HeldCount < quantity {
			return domain.ErrConcurrencyConflict
		}
	}
	for _, date := range dates {
		d, _ := f.store.day(roomTypeID, date)
		d.HeldCount -= quantity
		d.BookedCount += quantity
	}
	return nil
}

func (f *fakeInventoryRepo) ReleaseBooked(ctx context.Context, roomTypeID string, dates []time.Time, quantity int) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, date := range dates {
		if d, ok := f.store.day(roomTypeID, date); ok {
			d.BookedCount -= quantity
			if d.BookedCount < 0 {
				d.BookedCount = 0
			}
		}
	}
	return nil
}

func (f *fakeInventoryRepo) FreeCounts(ctx context.Context, roomTypeID string, totalCount int, stay domain.StayRange) ([]domain.DayAvailability, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]domain.DayAvailability, 0, stay.Nights())
	for _, date := range stay.Dates() {
		free := totalCount
		if d, ok := f.store.day(roomTypeID, date); ok {
			free = d.Free()
		}
		out = append(out, domain.DayAvailability{Day: date, Free: free})
	}
	return out, nil
}

type fakeHoldRepo struct {
	store *memStore
}

func (f *fakeHoldRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.store.withTx(ctx, fn)
}

func (f *fakeHoldRepo) CreateHold(ctx context.Context, hold domain.Hold) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.holds[hold.ID] = hold
	return nil
}

func (f *fakeHoldRepo) GetHold(ctx context.Context, id string) (domain.Hold, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	hold, ok := f.store.holds[id]
	if !ok {
		return domain.Hold{}, domain.ErrHoldNotFound
	}
	return hold, nil
}

func (f *fakeHoldRepo) GetHoldForUpdate(ctx context.Context, id string) (domain.Hold, error) {
	return f.GetHold(ctx, id)
}

func (f *fakeHoldRepo) TransitionStatus(ctx context.Context, id string, from, to domain.HoldStatus) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	hold, ok := f.store.holds[id]
	if !ok || hold.Status != from {
		return false, nil
	}
	hold.Status = to
	f.store.holds[id] = hold
	return true, nil
}

func (f *fakeHoldRepo) ExtendHold(ctx context.Context, id string, expiresAt, now time.Time) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	hold, ok := f.store.holds[id]
	if !ok || hold.Status != domain.HoldStatusActive || !hold.ExpiresAt.After(now) {
		return false, nil
	}
	hold.ExpiresAt = expiresAt
	f.store.holds[id] = hold
	return true, nil
}

func (f *fakeHoldRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var ids []string
	for id, hold := range f.store.holds {
		if hold.Status == domain.HoldStatusActive && !hold.ExpiresAt.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakeBookingRepo struct {
	store *memStore
}

func (f *fakeBookingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.store.withTx(ctx, fn)
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking domain.Booking) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, exists := f.store.holdIDs[booking.HoldID]; exists {
		return domain.ErrConcurrencyConflict
	}
	f.store.bookings[booking.ID] = booking
	f.store.codes[booking.Code] = booking.ID
	f.store.holdIDs[booking.HoldID] = booking.ID
	return nil
}

func (f *fakeBookingRepo) GetBookingByCode(ctx context.Context, code string) (domain.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	id, ok := f.store.codes[code]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return f.store.bookings[id], nil
}

func (f *fakeBookingRepo) GetBookingByCodeForUpdate(ctx context.Context, code string) (domain.Booking, error) {
	return f.GetBookingByCode(ctx, code)
}

func (f *fakeBookingRepo) SetStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	booking, ok := f.store.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	booking.Status = status
	f.store.bookings[id] = booking
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id, reason string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	booking, ok := f.store.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	booking.Status = domain.BookingStatusCancelled
	booking.CancelReason = reason
	f.store.bookings[id] = booking
	return nil
}

func (f *fakeBookingRepo) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, transactionID string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	booking, ok := f.store.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	booking.PaymentStatus = status
	if transactionID != "" {
		booking.TransactionID = transactionID
	}
	f.store.bookings[id] = booking
	return nil
}

type fakeGateway struct {
	chargeResult payment.ChargeResult
	chargeErr    error
	event        payment.Event
	parseErr     error
	charges      []payment.ChargeRequest
}

func (f *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	f.charges = append(f.charges, req)
	if f.chargeErr != nil {
		return payment.ChargeResult{}, f.chargeErr
	}
	return f.chargeResult, nil
}

func (f *fakeGateway) ParseWebhook(gateway string, body []byte) (payment.Event, error) {
	if f.parseErr != nil {
		return payment.Event{}, f.parseErr
	}
	return f.event, nil
}
