package lock

import (
	"context"
	"fmt"
	"sync"
)

// LocalLocker serializa por sede dentro del proceso. Acquire respeta la cancelación del contexto.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(locationID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[locationID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[locationID] = ch
	}
	return ch
}

// Acquire espera hasta obtener la sede o hasta que ctx termine.
func (l *LocalLocker) Acquire(ctx context.Context, locationID string) (func(), error) {
	ch := l.slot(locationID)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("esperando sede %s: %w", locationID, ctx.Err())
	}
}
