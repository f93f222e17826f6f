package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed answers 503 Service Unavailable if Redis is unavailable.
	FailClosed
)

// Messages shown on the error page when a limit trips.
const (
	TooManyAttemptsMessage = "Too many attempts. Please wait a moment and try again."
	LimiterDownMessage     = "This action is temporarily unavailable. Please try again later."
)

var errNoLimiterStore = errors.New("rate limit store is not configured")

// hitScript counts one hit and starts the window on the first one, atomically,
// returning the count and the milliseconds left in the window.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimitKey is the Redis counter for one resource and caller.
func RateLimitKey(resource, id string) string {
	return fmt.Sprintf("rl:%s:%s", resource, id)
}

func rateLimitDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit records a hit for id on resource. It reports whether the hit
// is within limit and, when it is not, how long until the window resets.
// Rate limiting is disabled when APP_ENV is unset, "test", "development" or "stress".
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, time.Duration, error) {
	if rateLimitDisabled() {
		return true, 0, nil
	}
	if rdb == nil {
		return false, 0, errNoLimiterStore
	}

	res, err := hitScript.Run(ctx, rdb, []string{RateLimitKey(resource, id)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		observability.RedisErrors.WithLabelValues("ratelimit").Inc()
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply %v", res)
	}

	if res[0] <= int64(limit) {
		return true, 0, nil
	}
	retry := time.Duration(res[1]) * time.Millisecond
	if retry <= 0 {
		// no TTL reported; assume a full window
		retry = window
	}
	return false, retry, nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by the signed-in user when there is one, otherwise by remote IP.
// It defaults to FailOpen policy.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy. Rejections
// are returned as *fiber.Error so the app error handler renders the page.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = "ip:" + c.IP()
		}

		// Named limits share one counter across routes; otherwise the path is the resource.
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, retry, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "Rate limit unavailable, failing closed",
					"path", c.Path(), "resource", resource, "error", err)
				return fiber.NewError(fiber.StatusServiceUnavailable, LimiterDownMessage)
			}
			return c.Next()
		}

		if !allowed {
			Logger.InfoContext(c.UserContext(), "Rate limit exceeded",
				"resource", resource, "caller", id)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			return fiber.NewError(fiber.StatusTooManyRequests, TooManyAttemptsMessage)
		}
		return c.Next()
	}
}
