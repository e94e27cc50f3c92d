package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/app"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type stubHoldService struct {
	hold     domain.Hold
	summary  app.HoldSummary
	err      error
	released []string
}

func (s *stubHoldService) CreateHold(_ context.Context, _ app.CreateHoldInput) (domain.Hold, error) {
	return s.hold, s.err
}

func (s *stubHoldService) GetHoldSummary(_ context.Context, token string) (app.HoldSummary, error) {
	return s.summary, s.err
}

func (s *stubHoldService) ExtendHold(_ context.Context, token string) (domain.Hold, error) {
	return s.hold, s.err
}

func (s *stubHoldService) ReleaseHold(_ context.Context, token string) error {
	s.released = append(s.released, token)
	return s.err
}

func activeHold(now time.Time) domain.Hold {
	return domain.Hold{
		ID:     "hold-123",
		Status: domain.HoldStatusActive,
		Stay: domain.StayRange{
			CheckIn:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		Lines: []domain.HoldLine{
			{RoomTypeID: "rt-1", Quantity: 2, MealPlan: domain.MealPlanBreakfast, Adults: 2, QuotedCents: 26000},
		},
		QuotedTotalCents: 26000,
		ExpiresAt:        now.Add(15 * time.Minute),
	}
}

func TestHandleInitBooking(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	validBody := `{"check_in":"2026-03-10","check_out":"2026-03-12","rooms":[{"room_type_id":"rt-1","quantity":2,"meal_plan":"breakfast","adults":2}]}`

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           validBody,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"token":"hold-123"`,
		},
		{
			name:           "invalid json",
			body:           `{"check_in":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date format",
			body:           `{"check_in":"10/03/2026","check_out":"2026-03-12","rooms":[{"room_type_id":"rt-1","quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no rooms",
			body:           `{"check_in":"2026-03-10","check_out":"2026-03-12","rooms":[]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero quantity",
			body:           `{"check_in":"2026-03-10","check_out":"2026-03-12","rooms":[{"room_type_id":"rt-1","quantity":0}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "insufficient inventory",
			body:           validBody,
			serviceErr:     &domain.InsufficientInventoryError{RoomTypeID: "rt-1"},
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"insufficient_inventory"`,
		},
		{
			name:           "room type not found",
			body:           validBody,
			serviceErr:     domain.ErrRoomTypeNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "internal error",
			body:           validBody,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubHoldService{hold: activeHold(now), err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/bookings/init", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleInitBooking(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleInitBooking(&stubHoldService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/init", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleHold(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("get summary", func(t *testing.T) {
		hold := activeHold(now)
		svc := &stubHoldService{summary: app.HoldSummary{
			Hold:      hold,
			RoomNames: map[string]string{"rt-1": "Standard Double"},
		}}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/hold/hold-123", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		for _, want := range []string{`"token":"hold-123"`, `"room_name":"Standard Double"`, `"nights":2`} {
			if !strings.Contains(rec.Body.String(), want) {
				t.Fatalf("expected response to contain %q, got %q", want, rec.Body.String())
			}
		}
	})

	t.Run("get expired hold is 404", func(t *testing.T) {
		svc := &stubHoldService{err: domain.ErrHoldExpired}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/hold/hold-123", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for expired token, got %d", rec.Code)
		}
	})

	t.Run("get unknown hold is 404", func(t *testing.T) {
		svc := &stubHoldService{err: domain.ErrHoldNotFound}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/hold/nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("extend", func(t *testing.T) {
		svc := &stubHoldService{hold: activeHold(now)}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/hold/hold-123/extend", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("extend expired hold is 400", func(t *testing.T) {
		svc := &stubHoldService{err: domain.ErrHoldExpired}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/hold/hold-123/extend", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("delete releases and is idempotent", func(t *testing.T) {
		svc := &stubHoldService{}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/bookings/hold/hold-123", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(svc.released) != 1 || svc.released[0] != "hold-123" {
			t.Fatalf("expected release of hold-123, got %v", svc.released)
		}
	})

	t.Run("delete unknown hold still 200", func(t *testing.T) {
		svc := &stubHoldService{err: domain.ErrHoldNotFound}
		rec := httptest.NewRecorder()

		HandleHold(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/bookings/hold/nope", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("bad paths", func(t *testing.T) {
		for _, path := range []string{"/bookings/hold/", "/bookings/hold/x/confirm", "/bookings/hold/x/extend/more"} {
			rec := httptest.NewRecorder()
			HandleHold(&stubHoldService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNotFound {
				t.Fatalf("path %s: expected 404, got %d", path, rec.Code)
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleHold(&stubHoldService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/bookings/hold/hold-123", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}
