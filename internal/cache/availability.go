// Package cache fronts availability browsing with redis. Only the
// read-only browse path goes through it; reservations always hit the
// ledger's locked rows, so a stale cache entry can never oversell.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

const defaultTTL = 30 * time.Second

// AvailabilitySource is the uncached lookup, implemented by app.Ledger.
type AvailabilitySource interface {
	Availability(ctx context.Context, roomTypeID string, stay domain.StayRange) ([]domain.DayAvailability, error)
}

// Availability is a read-through cache over an AvailabilitySource.
type Availability struct {
	client *redis.Client
	source AvailabilitySource
	ttl    time.Duration
}

func NewAvailability(client *redis.Client, source AvailabilitySource, ttl time.Duration) *Availability {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Availability{client: client, source: source, ttl: ttl}
}

type cachedDay struct {
	Day  string `json:"day"`
	Free int    `json:"free"`
}

// Availability serves from redis when possible and falls back to the
// source on miss or redis failure. Cache errors are logged, never
// surfaced.
func (a *Availability) Availability(ctx context.Context, roomTypeID string, stay domain.StayRange) ([]domain.DayAvailability, error) {
	key := availabilityKey(roomTypeID, stay)

	if raw, err := a.client.Get(ctx, key).Result(); err == nil {
		if days, err := decodeDays(raw); err == nil {
			return days, nil
		}
	} else if err != redis.Nil {
		log.WithError(err).Warn("availability cache read failed")
	}

	days, err := a.source.Availability(ctx, roomTypeID, stay)
	if err != nil {
		return nil, err
	}

	if raw, err := encodeDays(days); err == nil {
		if err := a.client.Set(ctx, key, raw, a.ttl).Err(); err != nil {
			log.WithError(err).Warn("availability cache write failed")
		}
	}
	return days, nil
}

func availabilityKey(roomTypeID string, stay domain.StayRange) string {
	return fmt.Sprintf("availability:%s:%s:%s",
		roomTypeID,
		stay.CheckIn.Format("2006-01-02"),
		stay.CheckOut.Format("2006-01-02"),
	)
}

func encodeDays(days []domain.DayAvailability) (string, error) {
	out := make([]cachedDay, 0, len(days))
	for _, d := range days {
		out = append(out, cachedDay{Day: d.Day.Format("2006-01-02"), Free: d.Free})
	}
	raw, err := json.Marshal(out)
	return string(raw), err
}

func decodeDays(raw string) ([]domain.DayAvailability, error) {
	var in []cachedDay
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}
	days := make([]domain.DayAvailability, 0, len(in))
	for _, d := range in {
		day, err := time.Parse("2006-01-02", d.Day)
		if err != nil {
			return nil, err
		}
		days = append(days, domain.DayAvailability{Day: day, Free: d.Free})
	}
	return days, nil
}
