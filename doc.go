// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfchan provides a bounded, lock-free, in-process message channel
// for a fixed element type T, in three topologies:
//
//   - SPSC: Single-Producer Single-Consumer
//   - MPSC: Multi-Producer Single-Consumer
//   - SPMC: Single-Producer Multi-Consumer
//
// MPMC is intentionally not provided.
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q, err := lfchan.NewSPSC[Event](1024)
//	q, err := lfchan.NewMPSC[Event](4096, 8) // capacity, max producers
//	q, err := lfchan.NewSPMC[Event](1024)
//
// Create/Builder select mode dynamically, for parity with other ecosystem
// packages that build channels from a runtime configuration:
//
//	ch, err := lfchan.Create[Event](1024, lfchan.SPSC)
//	ch, err := lfchan.Create[Event](4096, lfchan.MPSC, lfchan.WithMaxProducers(8))
//
// # Non-blocking and blocking operations
//
// Every mode exposes a Try* family that never suspends, and a blocking
// family that spins with exponential backoff before parking on a
// futex-style address once the spin count crosses a threshold. The one
// syscall a Try* call can make is the futex wake issued by a send that
// takes the channel (or MPSC lane) from empty to non-empty: the consumer
// side's waiter word is only cleared by Close, so once it is nonzero every
// such send issues the wake, whether or not a consumer is parked:
//
//	if ok := q.TrySend(v); !ok {
//	    // full or closed — try again later, or just call Send
//	}
//	q.Send(v) // blocks until accepted or the channel closes
//
//	v, ok := q.TryReceive()
//	v, ok = q.Receive() // blocks until an item arrives or the channel closes and drains
//
// # Batch and zero-copy operations
//
// TrySendBatch/SendBatch and TryReceiveBatch/ReceiveBatch move multiple
// elements per call. SPSC batches and SPMC send batches publish with one
// tail/head advancement; SPMC receive batches claim one element per CAS,
// and MPSC batches are loops of single-element sends and receives.
// ReserveBatch/CommitBatch (producer
// side only) hand back pointers directly into ring slots so callers can
// construct values in place with no intermediate copy:
//
//	var ptrs [32]*Event
//	n := q.ReserveBatch(ptrs[:])
//	for i := 0; i < n; i++ {
//	    *ptrs[i] = Event{ID: i}
//	}
//	q.CommitBatch(n)
//
// An in-flight reservation must be committed (possibly with n=0, to
// abandon it) before any other send or reserve on the same handle.
//
// # MPSC producer registration
//
// MPSC channels hand out a stable per-producer handle; each handle owns
// its own table slot, tail, and generation counter, so producers never
// contend with each other on a shared tail:
//
//	p, err := q.RegisterProducer()
//	defer p.Unregister()
//	p.Send(v)
//
// Handles do not outlive Unregister; the table slot they occupied is
// retired (not reused) once Unregister returns. Once every producer has
// unregistered, a blocked consumer observes emptiness through an
// authoritative scan and returns rather than parking forever.
//
// # Closing
//
// Close wakes every blocked producer and consumer. Every subsequent
// TrySend*/Send* call fails; Receive*/TryReceive* continue to drain
// whatever remains in the ring, then report ok=false once empty.
// A second Close is a no-op.
//
// # Thread safety
//
//   - SPSC: one producer goroutine, one consumer goroutine.
//   - MPSC: any number of registered producer handles, one consumer
//     goroutine.
//   - SPMC: one producer goroutine, any number of consumer goroutines.
//
// Violating these constraints (e.g. two goroutines sharing one SPSC
// handle) is undefined behavior: memory will not be corrupted as long as
// the mode's own contract is honored, but results are unspecified.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomics with explicit
// memory ordering and [code.hybscloud.com/spin] for the CPU pause hint
// behind its own exponential backoff. The futex-style park/wake primitive
// spec.md requires is backed by golang.org/x/sys/unix on Linux.
package lfchan
