package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type countingObserver struct {
	hits, misses, recomputes atomic.Int64
}

func (o *countingObserver) Hit(string)  { o.hits.Add(1) }
func (o *countingObserver) Miss(string) { o.misses.Add(1) }
func (o *countingObserver) Recomputed(string, time.Duration, error) {
	o.recomputes.Add(1)
}

func TestGetOrCompute_FreshEntryIsServedWithoutRecompute(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	ctx := context.Background()

	var calls int
	compute := func(context.Context) ([]string, error) {
		calls++
		return []string{"15-122", "15-150"}, nil
	}

	v, err := GetOrCompute(ctx, c, "courses:all", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, []string{"15-122", "15-150"}, v)

	clock.Advance(59 * time.Minute)
	v, err = GetOrCompute(ctx, c, "courses:all", time.Hour, compute)
	require.NoError(t, err)
	assert.Len(t, v, 2)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Minute)
	_, err = GetOrCompute(ctx, c, "courses:all", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "an entry exactly ttl old is stale")
}

func TestGetOrCompute_TTLIsPerCall(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	ctx := context.Background()

	var calls int
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := GetOrCompute(ctx, c, "k", time.Hour, compute)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	v, err := GetOrCompute(ctx, c, "k", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = GetOrCompute(ctx, c, "k", 5*time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestGetOrCompute_ConcurrentCallersShareOneRecompute(t *testing.T) {
	obs := &countingObserver{}
	c := New(WithObserver(obs))
	ctx := context.Background()

	const n = 50
	var calls atomic.Int64
	release := make(chan struct{})
	compute := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "snapshot", nil
	}

	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = GetOrCompute(ctx, c, "syllabi:all", time.Hour, compute)
		}(i)
	}

	require.Eventually(t, func() bool { return obs.misses.Load() == n }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "snapshot", results[i])
	}
}

func TestGetOrCompute_KeysDoNotBlockEachOther(t *testing.T) {
	c := New()
	ctx := context.Background()

	block := make(chan struct{})
	defer close(block)
	started := make(chan struct{})
	go func() {
		_, _ = GetOrCompute(ctx, c, "slow", time.Hour, func(context.Context) (int, error) {
			close(started)
			<-block
			return 1, nil
		})
	}()
	<-started

	done := make(chan int, 1)
	go func() {
		v, _ := GetOrCompute(ctx, c, "fast", time.Hour, func(context.Context) (int, error) { return 2, nil })
		done <- v
	}()

	select {
	case v := <-done:
		assert.Equal(t, 2, v)
	case <-time.After(time.Second):
		t.Fatal("recomputing one key blocked another")
	}
}

func TestGetOrCompute_FailureKeepsPreviousValueAndRetries(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	ctx := context.Background()

	_, err := GetOrCompute(ctx, c, "instructors:all", time.Hour, func(context.Context) ([]string, error) {
		return []string{"Kesden"}, nil
	})
	require.NoError(t, err)
	_, firstComputedAt, ok := Peek[[]string](c, "instructors:all")
	require.True(t, ok)

	clock.Advance(2 * time.Hour)
	boom := errors.New("store unavailable")
	_, err = GetOrCompute(ctx, c, "instructors:all", time.Hour, func(context.Context) ([]string, error) {
		return nil, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRecomputationFailed)
	assert.ErrorIs(t, err, boom)

	stale, computedAt, ok := Peek[[]string](c, "instructors:all")
	require.True(t, ok)
	assert.Equal(t, []string{"Kesden"}, stale)
	assert.Equal(t, firstComputedAt, computedAt)

	var retried bool
	v, err := GetOrCompute(ctx, c, "instructors:all", time.Hour, func(context.Context) ([]string, error) {
		retried = true
		return []string{"Kesden", "Eckhardt"}, nil
	})
	require.NoError(t, err)
	assert.True(t, retried, "a failure must not be cached")
	assert.Len(t, v, 2)
}

func TestGetOrCompute_FailureWithoutPreviousValue(t *testing.T) {
	c := New()
	_, err := GetOrCompute(context.Background(), c, "k", time.Hour, func(context.Context) (int, error) {
		return 0, errors.New("nope")
	})
	require.ErrorIs(t, err, apperrors.ErrRecomputationFailed)

	_, _, ok := Peek[int](c, "k")
	assert.False(t, ok)
	assert.Empty(t, c.Keys())
}

func TestGetOrCompute_PanicBecomesRecomputationFailed(t *testing.T) {
	clock := newFakeClock()
	obs := &countingObserver{}
	c := New(WithClock(clock.Now), WithObserver(obs))
	ctx := context.Background()

	_, err := GetOrCompute(ctx, c, "departments:all", time.Hour, func(context.Context) ([]string, error) {
		return []string{"CS"}, nil
	})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	require.NotPanics(t, func() {
		_, err = GetOrCompute(ctx, c, "departments:all", time.Hour, func(context.Context) ([]string, error) {
			var m map[string][]string
			m["CS"] = nil
			return nil, nil
		})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRecomputationFailed)
	assert.Contains(t, err.Error(), "panic")
	assert.EqualValues(t, 2, obs.recomputes.Load())

	stale, _, ok := Peek[[]string](c, "departments:all")
	require.True(t, ok)
	assert.Equal(t, []string{"CS"}, stale)

	v, err := GetOrCompute(ctx, c, "departments:all", time.Hour, func(context.Context) ([]string, error) {
		return []string{"CS", "ECE"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "ECE"}, v)
}

func TestGetOrCompute_AbandonedCallerDoesNotCancelRecompute(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	finished := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		_, err := GetOrCompute(ctx, c, "courses:all", time.Hour, func(computeCtx context.Context) (int, error) {
			defer close(finished)
			<-release
			if computeCtx.Err() != nil {
				return 0, computeCtx.Err()
			}
			return 42, nil
		})
		errCh <- err
	}()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	<-finished
	require.Eventually(t, func() bool {
		v, _, ok := Peek[int](c, "courses:all")
		return ok && v == 42
	}, time.Second, time.Millisecond)
}

func TestGetOrCompute_TypeMismatch(t *testing.T) {
	c := New()
	ctx := context.Background()
	_, err := GetOrCompute(ctx, c, "k", time.Hour, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = GetOrCompute(ctx, c, "k", time.Hour, func(context.Context) (string, error) { return "x", nil })
	assert.Error(t, err)
}

func TestStore_ComputedAtIsMonotonic(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.store("k", 1)
	_, first, _ := Peek[int](c, "k")

	clock.Advance(-time.Hour)
	c.store("k", 2)
	v, second, _ := Peek[int](c, "k")

	assert.Equal(t, 2, v)
	assert.False(t, second.Before(first))
}
