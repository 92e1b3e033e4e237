// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package eventstream implements the single-producer multi-consumer
// broadcast channels the engine publishes on_header and on_transaction
// through (spec.md component C6), adapted from the source's Twisted-based
// StreamController and the pack's typed-event style (p2pool-go's
// internal/node/events.go) without either's dependency.
package eventstream

import "sync"

// DefaultCapacity bounds each subscriber's queue. A subscriber that falls
// this far behind the producer starts losing events rather than blocking
// it (see New and Publish below).
const DefaultCapacity = 64

// Stream is a broadcast channel of values of type T. The zero value is not
// usable; use New.
type Stream[T any] struct {
	mu          sync.Mutex
	subscribers map[int]chan T
	nextID      int
	capacity    int
	onDrop      func(dropped T)
}

// New returns a Stream with the given per-subscriber queue capacity.
// onDrop, if non-nil, is invoked (from the publisher's goroutine) whenever
// a slow subscriber's queue is full and its oldest event is dropped to make
// room — the bus's documented backpressure policy: bounded queue,
// drop-oldest, never block the producer.
func New[T any](capacity int, onDrop func(dropped T)) *Stream[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stream[T]{
		subscribers: make(map[int]chan T),
		capacity:    capacity,
		onDrop:      onDrop,
	}
}

// Subscribe registers a new listener and returns its channel plus an
// Unsubscribe function. The channel is closed when Unsubscribe is called.
func (s *Stream[T]) Subscribe() (ch <-chan T, unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	c := make(chan T, s.capacity)
	s.subscribers[id] = c

	return c, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Publish delivers value to every current subscriber. A subscriber whose
// queue is full has its oldest queued value dropped to make room; Publish
// itself never blocks.
func (s *Stream[T]) Publish(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscribers {
		select {
		case sub <- value:
		default:
			select {
			case dropped := <-sub:
				if s.onDrop != nil {
					s.onDrop(dropped)
				}
			default:
			}
			select {
			case sub <- value:
			default:
				// Subscriber is being drained concurrently faster than we
				// can requeue; give up on this publish for this
				// subscriber rather than spin.
			}
		}
	}
}

// SubscriberCount reports the number of active subscribers, for metrics.
func (s *Stream[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
