package session

import (
	"context"
	"sync"
)

// Dispatcher serializes events per user. Events of one user run strictly in
// arrival order on a single goroutine; different users run concurrently.
// The per-user goroutine exits as soon as its queue drains.
type Dispatcher[E any] struct {
	mu      sync.Mutex
	queues  map[int64][]E
	handler func(ctx context.Context, event E)
	ctx     context.Context
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose workers run handler with ctx
func NewDispatcher[E any](ctx context.Context, handler func(ctx context.Context, event E)) *Dispatcher[E] {
	return &Dispatcher[E]{
		queues:  make(map[int64][]E),
		handler: handler,
		ctx:     ctx,
	}
}

// Submit enqueues an event for userID
func (d *Dispatcher[E]) Submit(userID int64, event E) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue, running := d.queues[userID]
	d.queues[userID] = append(queue, event)
	if running {
		return
	}

	d.wg.Add(1)
	go d.drain(userID)
}

func (d *Dispatcher[E]) drain(userID int64) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.queues[userID]
		if len(queue) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		event := queue[0]
		d.queues[userID] = queue[1:]
		d.mu.Unlock()

		d.handler(d.ctx, event)
	}
}

// Wait blocks until every queued event has been handled
func (d *Dispatcher[E]) Wait() {
	d.wg.Wait()
}
