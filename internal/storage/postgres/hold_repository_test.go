package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/testutil"
)

func TestHoldRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewHoldRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	newHold := func(roomTypeID string) domain.Hold {
		return domain.Hold{
			ID:     uuid.NewString(),
			Status: domain.HoldStatusActive,
			Stay: domain.StayRange{
				CheckIn:  time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
				CheckOut: time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC),
			},
			Lines: []domain.HoldLine{
				{RoomTypeID: roomTypeID, Quantity: 2, MealPlan: domain.MealPlanBreakfast, Adults: 2, QuotedCents: 26000},
			},
			Extras:           []domain.Extra{{Code: "spa", AmountCents: 4000, Quantity: 1}},
			QuotedTotalCents: 30000,
			ExpiresAt:        now.Add(15 * time.Minute),
			CreatedAt:        now,
		}
	}

	t.Run("CreateHold and GetHold round trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, roomTypeID := testutil.InsertHotelAndRoomType(t, ctx, pool, "Grand Nile", 5, 10000)

		hold := newHold(roomTypeID)
		if err := repo.CreateHold(ctx, hold); err != nil {
			t.Fatalf("create hold: %v", err)
		}

		got, err := repo.GetHold(ctx, hold.ID)
		if err != nil {
			t.Fatalf("get hold: %v", err)
		}
		if got.Status != domain.HoldStatusActive {
			t.Fatalf("expected active, got %s", got.Status)
		}
		if !got.Stay.CheckIn.Equal(hold.Stay.CheckIn) || !got.Stay.CheckOut.Equal(hold.Stay.CheckOut) {
			t.Fatalf("unexpected stay: %+v", got.Stay)
		}
		if len(got.Lines) != 1 || got.Lines[0].QuotedCents != 26000 || got.Lines[0].MealPlan != domain.MealPlanBreakfast {
			t.Fatalf("unexpected lines: %+v", got.Lines)
		}
		if len(got.Extras) != 1 || got.Extras[0].Code != "spa" {
			t.Fatalf("unexpected extras: %+v", got.Extras)
		}
		if got.QuotedTotalCents != 30000 {
			t.Fatalf("expected total 30000, got %d", got.QuotedTotalCents)
		}
	})

	t.Run("GetHold missing and invalid IDs", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if _, err := repo.GetHold(ctx, uuid.NewString()); err != domain.ErrHoldNotFound {
			t.Fatalf("expected ErrHoldNotFound, got %v", err)
		}
		if _, err := repo.GetHold(ctx, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("TransitionStatus is a compare-and-set", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, roomTypeID := testutil.InsertHotelAndRoomType(t, ctx, pool, "Grand Nile", 5, 10000)

		hold := newHold(roomTypeID)
		if err := repo.CreateHold(ctx, hold); err != nil {
			t.Fatalf("create hold: %v", err)
		}

		won, err := repo.TransitionStatus(ctx, hold.ID, domain.HoldStatusActive, domain.HoldStatusConsumed)
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		if !won {
			t.Fatalf("expected first transition to win")
		}

		// A racing expiry arriving second must lose.
		won, err = repo.TransitionStatus(ctx, hold.ID, domain.HoldStatusActive, domain.HoldStatusExpired)
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		if won {
			t.Fatalf("expected second transition to lose")
		}

		got, err := repo.GetHold(ctx, hold.ID)
		if err != nil {
			t.Fatalf("get hold: %v", err)
		}
		if got.Status != domain.HoldStatusConsumed {
			t.Fatalf("expected consumed, got %s", got.Status)
		}
	})

	t.Run("ExtendHold only while active and unexpired", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, roomTypeID := testutil.InsertHotelAndRoomType(t, ctx, pool, "Grand Nile", 5, 10000)

		hold := newHold(roomTypeID)
		if err := repo.CreateHold(ctx, hold); err != nil {
			t.Fatalf("create hold: %v", err)
		}

		extended, err := repo.ExtendHold(ctx, hold.ID, now.Add(30*time.Minute), now)
		if err != nil {
			t.Fatalf("extend: %v", err)
		}
		if !extended {
			t.Fatalf("expected extend to succeed")
		}

		// Past the deadline the conditional update matches nothing.
		extended, err = repo.ExtendHold(ctx, hold.ID, now.Add(time.Hour), now.Add(45*time.Minute))
		if err != nil {
			t.Fatalf("extend: %v", err)
		}
		if extended {
			t.Fatalf("expected overdue extend to fail")
		}
	})

	t.Run("ListExpired returns overdue active holds oldest first", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, roomTypeID := testutil.InsertHotelAndRoomType(t, ctx, pool, "Grand Nile", 5, 10000)

		overdue1 := newHold(roomTypeID)
		overdue1.ExpiresAt = now.Add(-10 * time.Minute)
		overdue2 := newHold(roomTypeID)
		overdue2.ExpiresAt = now.Add(-5 * time.Minute)
		fresh := newHold(roomTypeID)
		fresh.ExpiresAt = now.Add(10 * time.Minute)
		released := newHold(roomTypeID)
		released.Status = domain.HoldStatusReleased
		released.ExpiresAt = now.Add(-20 * time.Minute)

		for _, h := range []domain.Hold{overdue1, overdue2, fresh, released} {
			if err := repo.CreateHold(ctx, h); err != nil {
				t.Fatalf("create hold: %v", err)
			}
		}

		ids, err := repo.ListExpired(ctx, now, 100)
		if err != nil {
			t.Fatalf("list expired: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("expected 2 overdue holds, got %d", len(ids))
		}
		if ids[0] != overdue1.ID || ids[1] != overdue2.ID {
			t.Fatalf("expected oldest first, got %v", ids)
		}

		ids, err = repo.ListExpired(ctx, now, 1)
		if err != nil {
			t.Fatalf("list expired: %v", err)
		}
		if len(ids) != 1 {
			t.Fatalf("expected limit respected, got %d", len(ids))
		}
	})
}
