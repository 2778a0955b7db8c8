package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*Gate, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewGate(rdb), mr
}

func TestGate_RejectsAfterMaxWithinWindow(t *testing.T) {
	g, mr := newTestGate(t)
	ctx := context.Background()
	limit := Limit{Max: 3, Window: time.Minute}

	for i := 1; i <= 3; i++ {
		d, err := g.Admit(ctx, "10.0.0.1", "contacts.list", limit)
		require.NoError(t, err, "request %d", i)
		assert.Equal(t, i, d.Count)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d, err := g.Admit(ctx, "10.0.0.1", "contacts.list", limit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.Greater(t, le.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, le.RetryAfter, time.Minute)
	assert.Equal(t, 0, d.Remaining)

	mr.FastForward(time.Minute)

	d, err = g.Admit(ctx, "10.0.0.1", "contacts.list", limit)
	require.NoError(t, err, "next window must admit again")
	assert.Equal(t, 1, d.Count)
}

func TestGate_KeysAreIndependent(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()
	limit := Limit{Max: 1, Window: time.Minute}

	_, err := g.Admit(ctx, "alice", "contacts.list", limit)
	require.NoError(t, err)
	_, err = g.Admit(ctx, "alice", "contacts.list", limit)
	require.ErrorIs(t, err, ErrRateLimited)

	_, err = g.Admit(ctx, "bob", "contacts.list", limit)
	assert.NoError(t, err, "other caller")
	_, err = g.Admit(ctx, "alice", "auth.login", limit)
	assert.NoError(t, err, "other route")
}

func TestGate_DisabledLimitAlwaysAdmits(t *testing.T) {
	g, mr := newTestGate(t)
	for i := 0; i < 10; i++ {
		_, err := g.Admit(context.Background(), "c", "r", Limit{})
		require.NoError(t, err)
	}
	assert.Empty(t, mr.Keys())
}

func TestGate_ConcurrentRequestsNeverExceedMax(t *testing.T) {
	g, _ := newTestGate(t)
	limit := Limit{Max: 10, Window: time.Minute}

	const workers = 50
	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := g.Admit(context.Background(), "10.0.0.9", "contacts.list", limit)
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, ErrRateLimited):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(10), admitted.Load())
	assert.Equal(t, int32(workers-10), rejected.Load())
}

func TestGate_RedisDown(t *testing.T) {
	g, mr := newTestGate(t)
	mr.Close()
	_, err := g.Admit(context.Background(), "c", "r", Limit{Max: 1, Window: time.Second})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
}
