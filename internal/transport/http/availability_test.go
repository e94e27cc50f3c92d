package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

type stubAvailability struct {
	days []domain.DayAvailability
	err  error
}

func (s *stubAvailability) Availability(_ context.Context, _ string, _ domain.StayRange) ([]domain.DayAvailability, error) {
	return s.days, s.err
}

func TestHandleAvailability(t *testing.T) {
	t.Parallel()

	t.Run("lists free counts per day", func(t *testing.T) {
		svc := &stubAvailability{days: []domain.DayAvailability{
			{Day: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Free: 3},
			{Day: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), Free: 5},
		}}
		rec := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodGet, "/rooms/rt-1/availability?from=2026-03-10&to=2026-03-12", nil)
		HandleAvailability(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		for _, want := range []string{`"room_type_id":"rt-1"`, `{"day":"2026-03-10","free":3}`, `{"day":"2026-03-11","free":5}`} {
			if !strings.Contains(rec.Body.String(), want) {
				t.Fatalf("expected response to contain %q, got %q", want, rec.Body.String())
			}
		}
	})

	t.Run("missing dates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rooms/rt-1/availability", nil)
		HandleAvailability(&stubAvailability{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("reversed range", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rooms/rt-1/availability?from=2026-03-12&to=2026-03-10", nil)
		HandleAvailability(&stubAvailability{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown room type", func(t *testing.T) {
		svc := &stubAvailability{err: domain.ErrRoomTypeNotFound}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rooms/rt-missing/availability?from=2026-03-10&to=2026-03-12", nil)
		HandleAvailability(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("bad path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rooms/rt-1/rates", nil)
		HandleAvailability(&stubAvailability{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rooms/rt-1/availability?from=2026-03-10&to=2026-03-12", nil)
		HandleAvailability(&stubAvailability{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}
