package dataflow

import (
	"context"
	"sync"
	"time"
)

// Stream is a read-only channel of items.
type Stream[T any] <-chan T

// From creates a stream from a slice of items. The channel is buffered to
// hold every item so the producer never outlives a cancelled consumer.
func From[T any](items ...T) Stream[T] {
	out := make(chan T, len(items))
	for _, item := range items {
		out <- item
	}
	close(out)
	return out
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) Stream[[]T] {
	if size <= 0 {
		size = len(items)
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return From(chunks...)
}

// ForEach runs fn for every item of the stream and blocks until the stream is
// drained. The first unhandled error cancels the remaining work and is returned.
func ForEach[T any](ctx context.Context, input Stream[T], fn func(context.Context, T) error, opts ...Option) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-input:
				if !ok {
					return
				}
				if err := run(ctx, cfg, item, fn); err != nil {
					if cfg.errorHandler != nil && cfg.errorHandler(err) {
						continue
					}
					fail(err)
					return
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func run[T any](ctx context.Context, cfg *config, item T, fn func(context.Context, T) error) error {
	err := fn(ctx, item)
	for attempt := 1; err != nil && attempt <= cfg.maxRetries; attempt++ {
		if cfg.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.backoff(attempt)):
			}
		}
		err = fn(ctx, item)
	}
	return err
}
