// Package snapshot caches fully materialized listings per key.
//
// Each key holds one value and the time it was computed. A lookup serves the
// value while it is younger than the caller's TTL; otherwise it recomputes.
// Recomputation is single-flight per key: concurrent callers that find the
// same key stale share one invocation of the compute function and receive
// its result. Keys never block each other and are never evicted.
//
// A failed recomputation leaves the previous value in place and is reported
// only to the callers that waited on that attempt; the next lookup retries.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
)

// Observer receives cache events. Implementations must be safe for concurrent use.
type Observer interface {
	Hit(key string)
	Miss(key string)
	Recomputed(key string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Hit(string)                              {}
func (nopObserver) Miss(string)                             {}
func (nopObserver) Recomputed(string, time.Duration, error) {}

// entry is replaced as a whole so value and computedAt never diverge.
type entry struct {
	value      any
	computedAt time.Time
}

// Cache is a process-lifetime snapshot cache. The zero value is not usable;
// use New.
type Cache struct {
	entries  sync.Map // string -> *atomic.Pointer[entry]
	group    singleflight.Group
	now      func() time.Time
	observer Observer
	logger   zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithObserver installs an event observer.
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

// WithLogger sets the logger used for recomputation events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		now:      time.Now,
		observer: nopObserver{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComputeFunc produces a fresh value for a key.
type ComputeFunc[T any] func(ctx context.Context) (T, error)

// GetOrCompute returns the value cached under key if it is younger than ttl,
// and otherwise recomputes it with compute.
//
// compute runs detached from ctx cancellation: once started it completes and
// stores its result even if every waiting caller gives up. A caller whose ctx
// ends while waiting gets ctx.Err(). Recomputation errors and panics are
// wrapped in apperrors.ErrRecomputationFailed.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute ComputeFunc[T]) (T, error) {
	var zero T

	if e := c.load(key); e != nil && c.fresh(e, ttl) {
		c.observer.Hit(key)
		return cast[T](key, e.value)
	}
	c.observer.Miss(key)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (result any, flightErr error) {
		// Another flight may have finished between our check and this one starting.
		if e := c.load(key); e != nil && c.fresh(e, ttl) {
			return e.value, nil
		}

		start := c.now()
		// The flight runs in its own goroutine, out of reach of any HTTP
		// recovery middleware, so a panic becomes a failed recomputation.
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				c.observer.Recomputed(key, c.now().Sub(start), err)
				c.logger.Error().Err(err).Str("key", key).Msg("Snapshot recomputation panicked, keeping previous value")
				result, flightErr = nil, fmt.Errorf("%w: %s: %w", apperrors.ErrRecomputationFailed, key, err)
			}
		}()

		v, err := compute(detached)
		c.observer.Recomputed(key, c.now().Sub(start), err)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Snapshot recomputation failed, keeping previous value")
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrRecomputationFailed, key, err)
		}

		c.store(key, v)
		c.logger.Debug().Str("key", key).Dur("took", c.now().Sub(start)).Msg("Snapshot recomputed")
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return cast[T](key, res.Val)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Peek returns the current value of key without recomputing, however old it is.
func Peek[T any](c *Cache, key string) (value T, computedAt time.Time, ok bool) {
	e := c.load(key)
	if e == nil {
		return value, time.Time{}, false
	}
	v, err := cast[T](key, e.value)
	if err != nil {
		return value, time.Time{}, false
	}
	return v, e.computedAt, true
}

// Keys lists every key that currently holds a value.
func (c *Cache) Keys() []string {
	var keys []string
	c.entries.Range(func(k, v any) bool {
		if v.(*atomic.Pointer[entry]).Load() != nil {
			keys = append(keys, k.(string))
		}
		return true
	})
	return keys
}

func (c *Cache) fresh(e *entry, ttl time.Duration) bool {
	return c.now().Sub(e.computedAt) < ttl
}

func (c *Cache) slot(key string) *atomic.Pointer[entry] {
	if p, ok := c.entries.Load(key); ok {
		return p.(*atomic.Pointer[entry])
	}
	p, _ := c.entries.LoadOrStore(key, new(atomic.Pointer[entry]))
	return p.(*atomic.Pointer[entry])
}

func (c *Cache) load(key string) *entry {
	p, ok := c.entries.Load(key)
	if !ok {
		return nil
	}
	return p.(*atomic.Pointer[entry]).Load()
}

// store replaces the entry for key. computedAt never moves backwards.
func (c *Cache) store(key string, v any) {
	slot := c.slot(key)
	next := &entry{value: v, computedAt: c.now()}
	for {
		prev := slot.Load()
		if prev != nil && next.computedAt.Before(prev.computedAt) {
			next.computedAt = prev.computedAt
		}
		if slot.CompareAndSwap(prev, next) {
			return
		}
	}
}

func cast[T any](key string, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("snapshot %q holds %T, not %T", key, v, zero)
	}
	return t, nil
}
