// Package ratelimit implements the per-client sliding-window quota in front of the model call.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultClientID identifies requests that carry no forwarding header.
const DefaultClientID = "127.0.0.1"

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter consumes a permit for id when one is available and reports whether the
// request may proceed. Denied checks consume nothing.
type Limiter interface {
	Limit(ctx context.Context, id string) (Result, error)
}

// Store holds fixed-window counters.
type Store interface {
	// Increment adds one to key unless its live count has already reached ceiling,
	// and reports whether it did. The check and the add must be atomic per key.
	// The returned count is the value after the increment; it is unspecified when
	// ok is false.
	Increment(ctx context.Context, key string, ceiling int64, expiresAt time.Time) (count int64, ok bool, err error)
	Count(ctx context.Context, key string) (int64, error)
}

// SlidingWindow approximates a rolling window by weighting the previous fixed
// window's count by the share of it still inside the rolling window.
type SlidingWindow struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewSlidingWindow allows at most limit requests per id in any window-long span.
func NewSlidingWindow(store Store, limit int, window time.Duration, prefix string) *SlidingWindow {
	return &SlidingWindow{
		store:  store,
		limit:  limit,
		window: window,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *SlidingWindow) key(id string, index int64) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, id, index)
}

// Limit allows the request while floor(previous*(1-elapsed)) + current stays
// within the quota. Only allowed requests are counted.
func (s *SlidingWindow) Limit(ctx context.Context, id string) (Result, error) {
	now := s.now()
	size := s.window.Milliseconds()
	index := now.UnixMilli() / size
	start := time.UnixMilli(index * size)
	denied := Result{Limit: s.limit, Reset: start.Add(s.window)}

	previous, err := s.store.Count(ctx, s.key(id, index-1))
	if err != nil {
		return Result{}, fmt.Errorf("read rate limit counter: %w", err)
	}
	elapsed := float64(now.Sub(start)) / float64(s.window)
	carried := int64(math.Floor(float64(previous) * (1 - elapsed)))

	ceiling := int64(s.limit) - carried
	if ceiling <= 0 {
		return denied, nil
	}
	// a counter outlives its window by one window so it can be read as "previous"
	current, ok, err := s.store.Increment(ctx, s.key(id, index), ceiling, start.Add(2*s.window))
	if err != nil {
		return Result{}, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if !ok {
		return denied, nil
	}

	remaining := int64(s.limit) - carried - current
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: int(remaining),
		Reset:     start.Add(s.window),
	}, nil
}

// Unlimited is the limiter used when no store is configured: every request passes.
type Unlimited struct{}

func (Unlimited) Limit(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}

// ClientID returns the first address of an X-Forwarded-For value, or DefaultClientID.
func ClientID(forwardedFor string) string {
	first, _, _ := strings.Cut(forwardedFor, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return DefaultClientID
}
