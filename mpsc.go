// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// mpscSlot is one producer's table entry. tail/gen/active are written only
// by the owning producer handle; headLocal is written only by the single
// consumer but must stay atomic because the owning producer reads it for
// its own full-test, exactly as SPSC's head/tail pair cross between
// producer and consumer. cachedTail/cachedGen are written only by the
// consumer, so they are plain fields rather than atomics — the same
// "consumer-private cache next to a producer-written atomic" shape the
// teacher uses for cachedHead/cachedTail in SPSC.
type mpscSlot[T any] struct {
	_          pad
	tail       atomix.Uint64
	_          pad
	headLocal  atomix.Uint64
	_          pad
	gen        atomix.Uint64
	_          pad
	active     atomix.Bool
	_          pad
	cachedTail uint64
	cachedGen  uint64
}

// MPSC is a multi-producer single-consumer bounded channel.
//
// There is no direct teacher analogue: the teacher's own MPSC is FAA-based
// over one shared tail, which forces every producer through the same
// contended cache line. This instead gives every registered producer its
// own private ring segment of laneCap slots within the shared buffer, so
// producers never contend with each other, and a lone producer among
// max_producers gets the same full per-lane capacity whether or not every
// other slot is ever registered. The consumer scans every registered lane
// each call, using each lane's generation cache to skip a fresh tail load
// when nothing has changed, and dequeues from the first lane that has an
// item — retired lanes are scanned exactly like active ones, so nothing
// left behind by a producer that has already unregistered is ever missed.
type MPSC[T any] struct {
	_               pad
	activeProducers atomix.Uint64
	_               pad
	closed          atomix.Bool
	_               pad
	producerWaiters atomic.Uint32
	_               pad
	consumerWaiters atomic.Uint32
	_               pad
	buffer          []T
	laneMask        uint64
	laneCap         uint64
	producers       []mpscSlot[T]
	nextSlot        atomic.Uint32
}

// NewMPSC creates an MPSC channel. capacity rounds up to the next power of
// two and is the per-producer lane capacity (each registered producer gets
// its own ring of this size); maxProducers fixes the producer table size
// and must be positive.
func NewMPSC[T any](capacity, maxProducers int, opts ...Option) (*MPSC[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if maxProducers <= 0 {
		return nil, ErrMaxProducersRequired
	}
	n := roundToPow2(capacity)
	if n == 0 {
		return nil, ErrInvalidCapacity
	}
	cfg := newConfig(opts)
	buf, err := alignedSlice[T](cfg.allocator, n*uint64(maxProducers))
	if err != nil {
		return nil, err
	}
	return &MPSC[T]{
		buffer:    buf,
		laneMask:  n - 1,
		laneCap:   n,
		producers: make([]mpscSlot[T], maxProducers),
	}, nil
}

// Producer is a stable handle to one registered MPSC lane. It is not safe
// for concurrent use by more than one goroutine; register one handle per
// producer goroutine.
type Producer[T any] struct {
	q        *MPSC[T]
	slot     *mpscSlot[T]
	base     uint64
	reserved uint64
}

// RegisterProducer assigns the next unused table slot, and its dedicated
// ring segment, to a new producer handle. Slot indices are assigned
// monotonically and never reused within a channel's lifetime, even across
// Unregister calls.
func (q *MPSC[T]) RegisterProducer() (*Producer[T], error) {
	if q.closed.LoadAcquire() {
		return nil, ErrClosed
	}
	idx := q.nextSlot.Add(1) - 1
	if idx >= uint32(len(q.producers)) {
		return nil, ErrTooManyProducers
	}
	slot := &q.producers[idx]
	slot.tail.StoreRelaxed(0)
	slot.headLocal.StoreRelease(0)
	slot.gen.StoreRelease(1)
	slot.active.StoreRelease(true)
	q.activeProducers.AddAcqRel(1)
	return &Producer[T]{q: q, slot: slot, base: uint64(idx) * q.laneCap}, nil
}

// Unregister retires this producer's lane. Its table slot and ring segment
// are never reassigned; any items it already sent but the consumer has not
// yet drained remain reachable, since the consumer scans every registered
// lane regardless of active state. If this was the last active producer,
// wakes every blocked consumer.
func (p *Producer[T]) Unregister() {
	p.slot.active.StoreRelease(false)
	p.slot.gen.AddAcqRel(1)
	if p.q.activeProducers.AddAcqRel(^uint64(0)) == 0 {
		wakeAllIfWaiting(&p.q.consumerWaiters)
	}
}

// TrySend attempts to enqueue v on this producer's lane without blocking.
func (p *Producer[T]) TrySend(v T) bool {
	q := p.q
	if q.closed.LoadAcquire() {
		return false
	}
	tail := p.slot.tail.LoadRelaxed()
	head := p.slot.headLocal.LoadAcquire()
	if tail-head >= q.laneMask+1 {
		return false
	}
	wasEmpty := tail == head
	q.buffer[p.base+(tail&q.laneMask)] = v
	p.slot.tail.StoreRelease(tail + 1)
	p.slot.gen.AddAcqRel(1)
	if wasEmpty {
		// This lane going empty→nonempty implies the whole channel did too,
		// since every other lane was already empty or the consumer would
		// not have been (or stayed) blocked.
		wakeAllIfWaiting(&q.consumerWaiters)
	}
	return true
}

// Send enqueues v on this producer's lane, parking the caller while the
// lane has no free slot.
func (p *Producer[T]) Send(v T) bool {
	return blockUntil(func() bool { return p.TrySend(v) }, p.q.IsClosed, &p.q.producerWaiters)
}

// TrySendBatch enqueues a prefix of items on this producer's lane without
// blocking, returning how many were accepted.
func (p *Producer[T]) TrySendBatch(items []T) int {
	n := 0
	for n < len(items) {
		if !p.TrySend(items[n]) {
			break
		}
		n++
	}
	return n
}

// SendBatch enqueues every item in items on this producer's lane, parking
// between partial batches while the lane is full.
func (p *Producer[T]) SendBatch(items []T) int {
	sent := 0
	for sent < len(items) {
		ok := blockUntil(func() bool {
			if !p.TrySend(items[sent]) {
				return false
			}
			sent++
			return true
		}, p.q.IsClosed, &p.q.producerWaiters)
		if !ok {
			return sent
		}
	}
	return sent
}

// ReserveBatch hands back up to len(ptrs) mutable pointers into this
// producer's lane slots, for zero-copy in-place construction. The
// returned count must be committed with CommitBatch before any other send
// or reserve on this handle.
func (p *Producer[T]) ReserveBatch(ptrs []*T) int {
	q := p.q
	if q.closed.LoadAcquire() || len(ptrs) == 0 {
		return 0
	}
	tail := p.slot.tail.LoadRelaxed()
	head := p.slot.headLocal.LoadAcquire()
	free := q.laneMask + 1 - (tail - head)
	n := len(ptrs)
	if uint64(n) > free {
		n = int(free)
	}
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		ptrs[i] = &q.buffer[p.base+((tail+uint64(i))&q.laneMask)]
	}
	p.reserved = uint64(n)
	return n
}

// CommitBatch publishes a reservation of n slots previously returned by
// ReserveBatch on this handle.
func (p *Producer[T]) CommitBatch(n int) error {
	if uint64(n) != p.reserved {
		return ErrReserveMismatch
	}
	p.reserved = 0
	if n == 0 {
		return nil
	}
	tail := p.slot.tail.LoadRelaxed()
	head := p.slot.headLocal.LoadAcquire()
	wasEmpty := tail == head
	p.slot.tail.StoreRelease(tail + uint64(n))
	p.slot.gen.AddAcqRel(1)
	if wasEmpty {
		wakeAllIfWaiting(&p.q.consumerWaiters)
	}
	return nil
}

// lanePeek reports lane i's current head/tail and whether it has an item
// ready, using the generation cache to skip a fresh tail load when nothing
// has changed since the last call. Consumer-only.
func (q *MPSC[T]) lanePeek(i int) (head, tail uint64, ready bool) {
	s := &q.producers[i]
	head = s.headLocal.LoadRelaxed()
	gen := s.gen.LoadAcquire()
	if gen == s.cachedGen {
		tail = s.cachedTail
	} else {
		tail = s.tail.LoadAcquire()
		s.cachedTail = tail
		s.cachedGen = gen
	}
	return head, tail, tail > head
}

// takeFromLane dequeues the item at lane i's head, given the head/tail
// already observed by lanePeek. Consumer-only.
func (q *MPSC[T]) takeFromLane(i int, head, tail uint64) T {
	s := &q.producers[i]
	wasFull := tail-head == q.laneMask+1
	base := uint64(i) * q.laneCap
	idx := base + (head & q.laneMask)
	v := q.buffer[idx]
	var zero T
	q.buffer[idx] = zero
	s.headLocal.StoreRelease(head + 1)
	if wasFull {
		swapToZeroAndWake(&q.producerWaiters)
	}
	return v
}

// TryReceive attempts to dequeue one element without blocking. It scans
// every registered lane, active or retired, every call, so a producer
// that unregisters with unconsumed items can never be skipped over and a
// lane that no producer has ever claimed never contributes a phantom item.
func (q *MPSC[T]) TryReceive() (T, bool) {
	n := int(q.nextSlot.Load())
	if n > len(q.producers) {
		// nextSlot also counts registrations rejected with ErrTooManyProducers.
		n = len(q.producers)
	}
	for i := 0; i < n; i++ {
		if head, tail, ready := q.lanePeek(i); ready {
			return q.takeFromLane(i, head, tail), true
		}
	}
	var zero T
	return zero, false
}

// mpscTerminal reports whether a blocked receive should give up: either
// the channel was explicitly closed, or every producer has unregistered
// (in which case TryReceive's unconditional per-lane scan is already
// authoritative — there is nothing left any lane could still publish).
func (q *MPSC[T]) mpscTerminal() bool {
	return q.closed.LoadAcquire() || q.activeProducers.LoadAcquire() == 0
}

// Receive dequeues an element, parking the caller while the channel is
// empty. Returns ok=false once the channel has closed and drained, or
// once every producer has unregistered and the channel is empty.
func (q *MPSC[T]) Receive() (T, bool) {
	var out T
	ok := blockUntil(func() bool {
		v, got := q.TryReceive()
		if got {
			out = v
		}
		return got
	}, q.mpscTerminal, &q.consumerWaiters)
	if !ok {
		var zero T
		return zero, false
	}
	return out, true
}

// TryReceiveBatch dequeues up to len(out) elements without blocking.
func (q *MPSC[T]) TryReceiveBatch(out []T) int {
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
func (q *MPSC[T]) ReceiveBatch(out []T) int {
	n := 0
	ok := blockUntil(func() bool {
		n = q.TryReceiveBatch(out)
		return n > 0
	}, q.mpscTerminal, &q.consumerWaiters)
	if !ok {
		return 0
	}
	return n
}

// Close marks the channel closed and wakes every blocked producer and
// consumer. A second call is a no-op.
func (q *MPSC[T]) Close() {
	if q.closed.LoadAcquire() {
		return
	}
	q.closed.StoreRelease(true)
	swapToZeroAndWake(&q.producerWaiters)
	swapToZeroAndWake(&q.consumerWaiters)
}

// IsClosed reports whether Close has been called.
func (q *MPSC[T]) IsClosed() bool {
	return q.closed.LoadAcquire()
}

// Cap returns the per-lane capacity (rounded up to a power of two), i.e.
// how many items a single registered producer may have outstanding — not
// the total backing storage, which is Cap() * max_producers.
func (q *MPSC[T]) Cap() int {
	return int(q.laneMask + 1)
}

// Destroy releases the backing buffer and producer table. The caller must
// ensure no operations are in flight and no producer handles remain
// registered.
func (q *MPSC[T]) Destroy() {
	q.buffer = nil
	q.producers = nil
}
