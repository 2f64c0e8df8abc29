// Package loop provides the single goroutine that drives a marker layer.
//
// Layer methods and icon load completions must never run concurrently.
// Work started elsewhere, such as an icon fetch, hands its result back with
// Post and the loop goroutine runs it in order.
package loop

import (
	"context"
	"sync"
)

// Loop is a FIFO queue of functions run by one goroutine at a time.
//
// Example:
//
//	l := loop.New()
//	go fetch(url, func(img image.Image, err error) {
//	    l.Post(func() { done(img, err) })
//	})
//	err := l.RunUntil(ctx, func() bool { return layer.IconStats().Pending == 0 })
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New returns an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks and may be called from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Ready receives a value after functions are posted. A host with its own
// event loop waits on it and then calls Drain on its loop goroutine.
func (l *Loop) Ready() <-chan struct{} {
	return l.wake
}

// Len returns the number of queued functions.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

// Drain runs queued functions on the calling goroutine until the queue is
// empty, including functions posted while draining. It returns how many
// ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		batch := l.take()
		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// Run drains the queue as work arrives until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, func() bool { return false })
}

// RunUntil drains the queue as work arrives until done reports true, which
// is checked after every drain, or ctx is done.
func (l *Loop) RunUntil(ctx context.Context, done func() bool) error {
	for {
		l.Drain()
		if done() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
