// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

// Mode selects a channel's producer/consumer topology. Unlike the
// teacher's Options.compact/singleProducer/singleConsumer hints — which
// choose among several competing algorithms for the same topology — Mode
// selects between three topologies that each have exactly one algorithm
// in this package (spec.md §9: "treat mode as a compile-time or
// creation-time discriminator").
type Mode int

const (
	// SPSC is single-producer, single-consumer.
	SPSC Mode = iota
	// MPSC is multi-producer, single-consumer.
	MPSC
	// SPMC is single-producer, multi-consumer.
	SPMC
)

func (m Mode) String() string {
	switch m {
	case SPSC:
		return "SPSC"
	case MPSC:
		return "MPSC"
	case SPMC:
		return "SPMC"
	default:
		return "unknown"
	}
}

// Channel is the surface common to SPSC[T], SPMC[T], and the consumer side
// of MPSC[T]. It exists for documentation and for code that wants to hold
// any channel mode behind one reference; per-item Send/Receive are never
// called through it — every hot path in this package calls the concrete
// type's methods directly (spec.md §9).
type Channel interface {
	// Cap returns the channel's capacity (rounded up to a power of two).
	Cap() int
	// Close closes the channel. A second call is a no-op.
	Close()
	// IsClosed reports whether Close has been called. Monotonic.
	IsClosed() bool
	// Destroy releases the channel's backing buffer so it can be
	// collected promptly. The caller must ensure no operations are in
	// flight and no producer handles remain registered.
	Destroy()
}
