package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"doccompare/internal/metrics"
	"doccompare/internal/ratelimit"
)

// RateLimitExceededMessage is the body text of a 429 response.
const RateLimitExceededMessage = "Rate limit exceeded"

// RateLimit takes a permit for the client named by X-Forwarded-For.
// Denied requests end with 429; store failures surface as internal errors.
func RateLimit(l ratelimit.Limiter, m *metrics.Comparison) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := ratelimit.ClientID(c.Get(fiber.HeaderXForwardedFor))
		res, err := l.Limit(c.UserContext(), id)
		if err != nil {
			return fmt.Errorf("rate limit check: %w", err)
		}
		m.ObserveRateLimit(res.Allowed)

		if res.Limit > 0 {
			c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			c.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))
		}
		if !res.Allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, RateLimitExceededMessage)
		}
		return c.Next()
	}
}
