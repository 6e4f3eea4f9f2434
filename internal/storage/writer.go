package storage

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	writeRetries    = 2
	writeRetryDelay = 50 * time.Millisecond
	stopFlushLimit  = 5 * time.Second
)

// Writer is the single task that performs blob store writes. Enqueue never
// blocks; only the latest value per key is kept, so a newer snapshot can never
// be overwritten by an older one.
type Writer struct {
	store  Store
	logger *slog.Logger

	mu        sync.Mutex
	pending   map[string]string
	enqueued  uint64
	processed uint64
	busy      bool
	progress  chan struct{}

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWriter(store Store, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:    store,
		logger:   logger,
		pending:  make(map[string]string),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Start runs the write loop until Stop is called or ctx is cancelled.
func (w *Writer) Start(ctx context.Context) {
	w.mu.Lock()
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.mu.Unlock()

	// Writes that have started are allowed to finish after Stop.
	writeCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				// Best effort for whatever is still pending.
				flushCtx, cancel := context.WithTimeout(context.Background(), stopFlushLimit)
				w.drain(flushCtx)
				cancel()
				return
			case <-w.wake:
				w.drain(writeCtx)
			}
		}
	}()
}

// Stop cancels the loop after writing what is pending.
func (w *Writer) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Enqueue schedules value to be written under key.
func (w *Writer) Enqueue(key, value string) {
	w.mu.Lock()
	w.pending[key] = value
	w.enqueued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Discard drops writes that have not started yet.
func (w *Writer) Discard() {
	w.mu.Lock()
	w.pending = make(map[string]string)
	w.processed = w.enqueued
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()
}

// Flush waits until everything enqueued before the call has been written
// or dropped, and no write is in flight.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.enqueued
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if w.processed >= target && !w.busy {
			w.mu.Unlock()
			return nil
		}
		ch := w.progress
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Writer) drain(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	upto := w.enqueued
	w.pending = make(map[string]string)
	w.busy = true
	w.mu.Unlock()

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.write(ctx, k, batch[k])
	}

	w.mu.Lock()
	if upto > w.processed {
		w.processed = upto
	}
	w.busy = false
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()
}

func (w *Writer) write(ctx context.Context, key, value string) {
	backoff := retry.WithMaxRetries(writeRetries, retry.NewConstant(writeRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := w.store.Set(ctx, key, value); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		w.logger.Error("save failed", "key", key, "bytes", len(value), "error", err)
		return
	}
	w.logger.Debug("saved", "key", key, "bytes", len(value))
}
