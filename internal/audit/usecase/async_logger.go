package usecase

import (
	"context"
	"sync"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

type queuedEntry struct {
	ctx   context.Context
	entry *auditDomain.Entry
}

// AsyncLogger queues entries for a background worker. When the queue is full
// or the logger is closed, entries are written synchronously so none are dropped.
type AsyncLogger struct {
	logger *Logger
	queue  chan queuedEntry
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncLogger starts a worker draining a queue of the given size.
func NewAsyncLogger(logger *Logger, size int) *AsyncLogger {
	a := &AsyncLogger{
		logger: logger,
		queue:  make(chan queuedEntry, size),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncLogger) run() {
	defer close(a.done)
	for q := range a.queue {
		a.logger.Log(q.ctx, q.entry)
	}
}

// Log enqueues entry, falling back to a synchronous write.
func (a *AsyncLogger) Log(ctx context.Context, entry *auditDomain.Entry) {
	ctx = context.WithoutCancel(ctx)

	a.mu.RLock()
	if !a.closed {
		select {
		case a.queue <- queuedEntry{ctx: ctx, entry: entry}:
			a.mu.RUnlock()
			return
		default:
		}
	}
	a.mu.RUnlock()

	a.logger.Log(ctx, entry)
}

// Close stops accepting queued entries and waits for the worker to drain the
// queue or for ctx to expire.
func (a *AsyncLogger) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
