package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_PutGet(t *testing.T) {
	c := NewResponseCache(8, time.Minute)

	c.Put(Key("sw1", "/system"), &Response{StatusCode: 200, Body: []byte(`{}`)})
	got, ok := c.Get(Key("sw1", "/system"))
	require.True(t, ok)
	assert.Equal(t, []byte(`{}`), got.Body)

	_, ok = c.Get(Key("sw2", "/system"))
	assert.False(t, ok)
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	c := NewResponseCache(8, time.Minute)

	c.Put("k", &Response{StatusCode: 401, Body: []byte("login required")})
	c.Put("nil", nil)
	assert.Equal(t, 0, c.Len())
}

func TestResponseCache_Expires(t *testing.T) {
	c := NewResponseCache(8, 20*time.Millisecond)
	c.Put("k", &Response{StatusCode: 200})

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestResponseCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResponseCache(2, time.Minute)
	c.Put("a", &Response{StatusCode: 200})
	c.Put("b", &Response{StatusCode: 200})
	c.Get("a")
	c.Put("c", &Response{StatusCode: 200})

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.True(t, okA)
	assert.False(t, okB)
}

func TestResponseCache_GetOrFetch(t *testing.T) {
	c := NewResponseCache(8, time.Minute)
	var calls atomic.Int32
	fetch := func(context.Context) (*Response, error) {
		calls.Add(1)
		return &Response{StatusCode: 200, Body: []byte("x")}, nil
	}

	resp, cached, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, []byte("x"), resp.Body)

	_, cached, err = c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResponseCache_GetOrFetchSharesConcurrentMisses(t *testing.T) {
	c := NewResponseCache(8, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (*Response, error) {
		calls.Add(1)
		<-release
		return &Response{StatusCode: 200}, nil
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrFetch(context.Background(), "k", fetch)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, 1, c.Len())
}

func TestResponseCache_GetOrFetchSurvivesFirstCallerCancel(t *testing.T) {
	c := NewResponseCache(8, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (*Response, error) {
		close(started)
		select {
		case <-release:
			return &Response{StatusCode: 200, Body: []byte("x")}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrFetch(firstCtx, "k", fetch)
		firstErr <- err
	}()
	<-started

	secondDone := make(chan error, 1)
	var second *Response
	go func() {
		resp, _, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (*Response, error) {
			return nil, errors.New("second fetch must not run")
		})
		second = resp
		secondDone <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-secondDone)
	require.NotNil(t, second)
	assert.Equal(t, []byte("x"), second.Body)
}

func TestResponseCache_GetOrFetchError(t *testing.T) {
	c := NewResponseCache(8, time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (*Response, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}
