// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SPMC is a single-producer multi-consumer bounded channel.
//
// Based on the teacher's CAS-based SPMCSeq: the single producer writes
// sequentially and owns sp_tail outright; consumers race a
// compare-and-swap on the shared head to claim a slot, and only the
// winner reads it. Unlike SPMCSeq this drops the per-slot sequence
// number — the full/empty test is against consumer_head directly.
type SPMC[T any] struct {
	_               pad
	head            atomix.Uint64 // consumers CAS here to claim a slot
	_               pad
	tail            atomix.Uint64 // single producer writes here
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

// NewSPMC creates an SPMC channel. capacity rounds up to the next power
// of two and must be at least 1.
func NewSPMC[T any](capacity int, opts ...Option) (*SPMC[T], error) {
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
	return &SPMC[T]{buffer: buf, mask: n - 1}, nil
}

// TrySend attempts to enqueue v without blocking (single producer only).
func (q *SPMC[T]) TrySend(v T) bool {
	if q.closed.LoadAcquire() {
		return false
	}
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	if tail-head >= q.mask+1 {
		return false
	}
	wasEmpty := tail == head
	q.buffer[tail&q.mask] = v
	q.tail.StoreRelease(tail + 1)
	if wasEmpty {
		wakeAllIfWaiting(&q.consumerWaiters)
	}
	return true
}

// Send enqueues v, parking the caller while the channel is full.
func (q *SPMC[T]) Send(v T) bool {
	return blockUntil(func() bool { return q.TrySend(v) }, q.IsClosed, &q.producerWaiters)
}

// TrySendBatch enqueues a prefix of items without blocking (single
// producer only), returning how many were accepted.
func (q *SPMC[T]) TrySendBatch(items []T) int {
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

// SendBatch enqueues every item in items, parking between partial
// batches while the channel is full.
func (q *SPMC[T]) SendBatch(items []T) int {
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
// ring slots (single producer only). The returned count must be
// committed with CommitBatch before any other send or reserve.
func (q *SPMC[T]) ReserveBatch(ptrs []*T) int {
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
// ReserveBatch.
func (q *SPMC[T]) CommitBatch(n int) error {
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

// TryReceive attempts to claim and dequeue one element without blocking.
// Safe for any number of concurrent consumers.
func (q *SPMC[T]) TryReceive() (T, bool) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadRelaxed()
		tail := q.tail.LoadAcquire()
		if head >= tail {
			var zero T
			return zero, false
		}
		if q.head.CompareAndSwapAcqRel(head, head+1) {
			v := q.buffer[head&q.mask]
			if tail-head == q.mask+1 {
				swapToZeroAndWake(&q.producerWaiters)
			}
			return v, true
		}
		sw.Once()
	}
}

// Receive dequeues an element, parking the caller while the channel is
// empty. Returns ok=false only once the channel has closed and drained.
func (q *SPMC[T]) Receive() (T, bool) {
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

// TryReceiveBatch claims and dequeues up to len(out) elements without
// blocking. Safe for any number of concurrent consumers: each element is
// individually claimed by CAS, so two concurrent batch calls never
// overlap on the same slot, but the batch as a whole is not atomic
// against interleaved single-element TryReceive calls.
func (q *SPMC[T]) TryReceiveBatch(out []T) int {
	n := 0
	for n < len(out) {
		v, ok := q.TryReceive()
		if !ok {
			break
		}
		out[n] = v
		n++
	}
	return n
}

// ReceiveBatch parks while the channel is empty, then returns as soon as
// the first nonzero batch is available.
func (q *SPMC[T]) ReceiveBatch(out []T) int {
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
func (q *SPMC[T]) Close() {
	if q.closed.LoadAcquire() {
		return
	}
	q.closed.StoreRelease(true)
	swapToZeroAndWake(&q.producerWaiters)
	swapToZeroAndWake(&q.consumerWaiters)
}

// IsClosed reports whether Close has been called.
func (q *SPMC[T]) IsClosed() bool {
	return q.closed.LoadAcquire()
}

// Cap returns the channel's capacity (rounded up to a power of two).
func (q *SPMC[T]) Cap() int {
	return int(q.mask + 1)
}

// Destroy releases the backing buffer. The caller must ensure no
// operations are in flight.
func (q *SPMC[T]) Destroy() {
	q.buffer = nil
}
