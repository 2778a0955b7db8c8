// Package ratelimit implements a fixed-window admission gate on Redis.
//
// Each (route, caller) pair owns one counter. The first hit in a window
// creates the counter with a TTL equal to the window; the increment, the TTL
// and the read-back happen in a single Lua script so concurrent requests can
// never both slip under the limit.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// Limit allows Max requests per Window. A zero Limit disables the gate.
type Limit struct {
	Max    int
	Window time.Duration
}

func (l Limit) Enabled() bool { return l.Max > 0 && l.Window > 0 }

// LimitError is returned when a request is rejected. It matches ErrRateLimited.
type LimitError struct {
	Limit      Limit
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *LimitError) Is(target error) bool { return target == ErrRateLimited }

// Decision describes the counter state after an admitted or rejected request.
type Decision struct {
	Limit     Limit
	Count     int
	Remaining int
	ResetIn   time.Duration
}

// incr + expire on first hit, then read the remaining TTL
var admitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

type Gate struct {
	rdb    redis.Scripter
	prefix string
}

func NewGate(rdb redis.Scripter) *Gate {
	return &Gate{rdb: rdb, prefix: "rl"}
}

func (g *Gate) key(route, caller string) string {
	return g.prefix + ":" + route + ":" + caller
}

// Admit counts one request of caller on route. It returns a *LimitError when
// the count exceeds limit.Max within the current window. Redis failures are
// returned as-is so callers can decide whether to fail open.
func (g *Gate) Admit(ctx context.Context, caller, route string, limit Limit) (Decision, error) {
	d := Decision{Limit: limit}
	if !limit.Enabled() {
		return d, nil
	}
	res, err := admitScript.Run(ctx, g.rdb, []string{g.key(route, caller)}, limit.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return d, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return d, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	d.Count = int(res[0])
	d.ResetIn = time.Duration(res[1]) * time.Millisecond
	d.Remaining = limit.Max - d.Count
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if d.Count > limit.Max {
		return d, &LimitError{Limit: limit, RetryAfter: d.ResetIn}
	}
	return d, nil
}
