package fleet

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PreservesHostOrder(t *testing.T) {
	hosts := []string{"sw1", "sw2", "sw3"}

	results := Run(context.Background(), hosts, 2, func(_ context.Context, host string) (string, error) {
		if host == "sw1" {
			time.Sleep(10 * time.Millisecond)
		}
		return "hello " + host, nil
	})

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, hosts[i], r.Host)
		assert.Equal(t, "hello "+hosts[i], r.Value)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, 0, Failed(results))
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("login failed")

	results := Run(context.Background(), []string{"a", "b", "c"}, 3, func(_ context.Context, host string) (int, error) {
		if host == "b" {
			return 0, boom
		}
		return len(host), nil
	})

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 1, Failed(results))
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32

	Run(context.Background(), []string{"1", "2", "3", "4", "5", "6"}, 2, func(context.Context, string) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	results := Run(ctx, []string{"sw1"}, 1, func(context.Context, string) (int, error) {
		called.Store(true)
		return 1, nil
	})

	assert.False(t, called.Load())
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
