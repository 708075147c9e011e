package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roombook/infras/otel"
	"roombook/shared/constant"
)

type entry struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu   sync.Mutex
	keys map[string]*entry
	otel otel.Otel
	wait time.Duration
}

// NewLocal returns a keyed mutex. Entries are reference counted and dropped once nobody holds or waits on them.
func NewLocal(otl otel.Otel, wait time.Duration) Locker {
	return &localLocker{
		keys: map[string]*entry{},
		otel: otl,
		wait: wait,
	}
}

func (l *localLocker) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.keys[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.keys[key] = e
	}

	e.refs++

	return e
}

func (l *localLocker) releaseEntry(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
}

func (l *localLocker) Lock(ctx context.Context, key string) (_ Unlock, err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".local.Lock")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("lock.key", key)

	e := l.acquireEntry(key)

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)

		defer cancel()
	}

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(key, e)

		return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			<-e.ch
			l.releaseEntry(key, e)
		})
	}, nil
}
