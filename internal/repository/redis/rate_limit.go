package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
)

var (
	errNonPositiveWindow = errors.New("window must be positive")
	errNonPositiveLimit  = errors.New("limit must be positive")
)

// allowScript trims the window, counts what is left and records the attempt when
// under the limit, in one server-side step. Scores are microseconds since the epoch.
//
// KEYS[1] bucket
// ARGV[1] now, ARGV[2] window, ARGV[3] limit, ARGV[4] member, ARGV[5] ttl in ms
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end

if count > 0 then
  redis.call('PEXPIRE', key, tonumber(ARGV[5]))
end

local oldest = -1
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if #first == 2 then
  oldest = tonumber(first[2])
end

return {allowed, count, oldest}
`)

// SlidingWindowConfig configures the sliding window store.
type SlidingWindowConfig struct {
	KeyPrefix string
	// TTL bounds how long an idle bucket survives. The window is used when it is shorter.
	TTL time.Duration
}

// RateLimitRepository keeps one sorted set per identifier, scored by attempt time.
type RateLimitRepository struct {
	client redis.UniversalClient
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client redis.UniversalClient, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// Allow implements port.RateLimitStore. The window is (now-window, now].
func (r *RateLimitRepository) Allow(ctx context.Context, identifier string, limit int, window time.Duration, now time.Time) (port.RateLimitDecision, error) {
	if window <= 0 {
		return port.RateLimitDecision{}, errNonPositiveWindow
	}
	if limit <= 0 {
		return port.RateLimitDecision{}, errNonPositiveLimit
	}

	ttl := max(r.cfg.TTL, window)
	nowMicros := now.UnixMicro()
	member := strconv.FormatInt(nowMicros, 10) + "-" + uuid.NewString()

	res, err := allowScript.Run(ctx, r.client, []string{r.key(identifier)},
		nowMicros, window.Microseconds(), limit, member, ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return port.RateLimitDecision{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(res) != 3 {
		return port.RateLimitDecision{}, fmt.Errorf("redis rate limit script: unexpected reply %v", res)
	}

	decision := port.RateLimitDecision{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
	}
	if res[2] >= 0 {
		decision.Oldest = time.UnixMicro(res[2])
	}
	return decision, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	prefix := strings.TrimSuffix(r.cfg.KeyPrefix, ":")
	if prefix == "" {
		return identifier
	}
	return prefix + ":" + identifier
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
