// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// SPSC is a single-producer single-consumer bounded channel.
//
// Based on the teacher's Lamport ring buffer with cached opposite-side
// index: the producer caches the consumer's head, and vice versa, so the
// full and empty tests only take the cross-core cache miss when the cached
// value shows the ring full or empty. Deciding whether a wake is needed
// reloads the opposite index unless the cached value already shows the
// empty (send side) or full (receive side) boundary.
type SPSC[T any] struct {
	_               pad
	head            atomix.Uint64 // consumer's published read position
	_               pad
	cachedTail      uint64 // consumer's cached view of tail
	_               pad
	tail            atomix.Uint64 // producer's published write position
	_               pad
	cachedHead      uint64 // producer's cached view of head
	_               pad
	reserved        uint64 // outstanding ReserveBatch count, producer-private
	_               pad
	closed          atomix.Bool
	_               pad
	producerWaiters atomic.Uint32
	_               pad
	consumerWaiters atomic.Uint32
	_               pad
	buffer          []T
	mask            uint64
}

// NewSPSC creates an SPSC channel. capacity rounds up to the next power of
// two and must be at least 1.
func NewSPSC[T any](capacity int, opts ...Option) (*SPSC[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	n := roundToPow2(capacity)
	if n == 0 {
		return nil, ErrInvalidCapacity
	}
	cfg := newConfig(opts)
	buf, err := alignedSlice[T](cfg.allocator, n)
	if err != nil {
		return nil, err
	}
	return &SPSC[T]{buffer: buf, mask: n - 1}, nil
}

// TrySend attempts to enqueue v without blocking. Returns false if the
// channel is full or closed.
func (q *SPSC[T]) TrySend(v T) bool {
	if q.closed.LoadAcquire() {
		return false
	}
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return false
		}
	}
	wasEmpty := tail == q.cachedHead
	if !wasEmpty {
		// cachedHead may lag behind head; the empty→nonempty wake needs
		// the consumer's actual position.
		q.cachedHead = q.head.LoadAcquire()
		wasEmpty = tail == q.cachedHead
	}
	q.buffer[tail&q.mask] = v
	q.tail.StoreRelease(tail + 1)
	if wasEmpty {
		wakeAllIfWaiting(&q.consumerWaiters)
	}
	return true
}

// Send enqueues v, parking the caller while the channel is full. Returns
// false only if the channel closed before v could be accepted.
func (q *SPSC[T]) Send(v T) bool {
	return blockUntil(func() bool { return q.TrySend(v) }, q.IsClosed, &q.producerWaiters)
}

// TrySendBatch enqueues a prefix of items without blocking, returning how
// many were accepted (0 if the channel is full or closed).
func (q *SPSC[T]) TrySendBatch(items []T) int {
	if q.closed.LoadAcquire() || len(items) == 0 {
		return 0
	}
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	free := q.mask + 1 - (tail - head)
	n := len(items)
	if uint64(n) > free {
		n = int(free)
	}
	if n <= 0 {
		return 0
	}
	wasEmpty := tail == head
	for i := 0; i < n; i++ {
		q.buffer[(tail+uint64(i))&q.mask] = items[i]
	}
	q.tail.StoreRelease(tail + uint64(n))
	if wasEmpty {
		wakeAllIfWaiting(&q.consumerWaiters)
	}
	return n
}

// SendBatch enqueues every item in items, parking between partial batches
// while the channel is full. Returns the number actually sent, less than
// len(items) only if the channel closed partway through.
func (q *SPSC[T]) SendBatch(items []T) int {
	sent := 0
	for sent < len(items) {
		ok := blockUntil(func() bool {
			n := q.TrySendBatch(items[sent:])
			if n > 0 {
				sent += n
				return true
			}
			return false
		}, q.IsClosed, &q.producerWaiters)
		if !ok {
			return sent
		}
	}
	return sent
}

// ReserveBatch hands back up to len(ptrs) mutable pointers directly into
// ring slots, for zero-copy in-place construction. Producer-only. The
// returned count must be committed with CommitBatch before any other send
// or reserve on this channel.
func (q *SPSC[T]) ReserveBatch(ptrs []*T) int {
	if q.closed.LoadAcquire() || len(ptrs) == 0 {
		return 0
	}
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	free := q.mask + 1 - (tail - head)
	n := len(ptrs)
	if uint64(n) > free {
		n = int(free)
	}
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		ptrs[i] = &q.buffer[(tail+uint64(i))&q.mask]
	}
	q.reserved = uint64(n)
	return n
}

// CommitBatch publishes a reservation of n slots previously returned by
// ReserveBatch. n must equal that return value exactly (0 abandons the
// reservation).
func (q *SPSC[T]) CommitBatch(n int) error {
	if uint64(n) != q.reserved {
		return ErrReserveMismatch
	}
	q.reserved = 0
	if n == 0 {
		return nil
	}
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	wasEmpty := tail == head
	q.tail.StoreRelease(tail + uint64(n))
	if wasEmpty {
		wakeAllIfWaiting(&q.consumerWaiters)
	}
	return nil
}

// TryReceive attempts to dequeue an element without blocking.
func (q *SPSC[T]) TryReceive() (T, bool) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero T
			return zero, false
		}
	}
	wasFull := q.cachedTail-head == q.mask+1
	if !wasFull {
		// cachedTail may lag behind tail; the full→not-full wake needs
		// the producer's actual position.
		q.cachedTail = q.tail.LoadAcquire()
		wasFull = q.cachedTail-head == q.mask+1
	}
	v := q.buffer[head&q.mask]
	var zero T
	q.buffer[head&q.mask] = zero
	q.head.StoreRelease(head + 1)
	if wasFull {
		swapToZeroAndWake(&q.producerWaiters)
	}
	return v, true
}

// Receive dequeues an element, parking the caller while the channel is
// empty. Returns ok=false only once the channel has closed and drained.
func (q *SPSC[T]) Receive() (T, bool) {
	var out T
	ok := blockUntil(func() bool {
		v, got := q.TryReceive()
		if got {
			out = v
		}
		return got
	}, q.IsClosed, &q.consumerWaiters)
	if !ok {
		var zero T
		return zero, false
	}
	return out, true
}

// TryReceiveBatch dequeues up to len(out) elements without blocking,
// returning how many were copied into out.
func (q *SPSC[T]) TryReceiveBatch(out []T) int {
	if len(out) == 0 {
		return 0
	}
	head := q.head.LoadRelaxed()
	tail := q.tail.LoadAcquire()
	avail := tail - head
	n := len(out)
	if uint64(n) > avail {
		n = int(avail)
	}
	if n <= 0 {
		return 0
	}
	wasFull := avail == q.mask+1
	var zero T
	for i := 0; i < n; i++ {
		idx := (head + uint64(i)) & q.mask
		out[i] = q.buffer[idx]
		q.buffer[idx] = zero
	}
	q.head.StoreRelease(head + uint64(n))
	if wasFull {
		swapToZeroAndWake(&q.producerWaiters)
	}
	return n
}

// ReceiveBatch parks while the channel is empty, then returns as soon as
// the first nonzero batch is available. Returns 0 only once the channel
// has closed and drained.
func (q *SPSC[T]) ReceiveBatch(out []T) int {
	n := 0
	ok := blockUntil(func() bool {
		n = q.TryReceiveBatch(out)
		return n > 0
	}, q.IsClosed, &q.consumerWaiters)
	if !ok {
		return 0
	}
	return n
}

// Close marks the channel closed and wakes every blocked producer and
// consumer. A second call is a no-op.
func (q *SPSC[T]) Close() {
	if q.closed.LoadAcquire() {
		return
	}
	q.closed.StoreRelease(true)
	swapToZeroAndWake(&q.producerWaiters)
	swapToZeroAndWake(&q.consumerWaiters)
}

// IsClosed reports whether Close has been called.
func (q *SPSC[T]) IsClosed() bool {
	return q.closed.LoadAcquire()
}

// Cap returns the channel's capacity (rounded up to a power of two).
func (q *SPSC[T]) Cap() int {
	return int(q.mask + 1)
}

// Destroy releases the backing buffer. The caller must ensure no
// operations are in flight.
func (q *SPSC[T]) Destroy() {
	q.buffer = nil
}
