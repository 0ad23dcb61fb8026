// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

// config holds the options shared by NewSPSC/NewMPSC/NewSPMC and Create.
// Unlike the teacher's Options (which picks among algorithm families via
// Compact/SingleProducer/SingleConsumer), config only carries the
// constructor arguments spec.md's create() names: the capacity is passed
// positionally, mode is passed positionally to Create, and everything else
// — max producers, the allocator collaborator — is an Option.
type config struct {
	maxProducers int
	allocator    Allocator
}

func newConfig(opts []Option) *config {
	c := &config{allocator: globalDefaultAllocator}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a channel at construction time.
type Option func(*config)

// WithMaxProducers sets the fixed producer-table size for an MPSC channel.
// Required (n > 0) for NewMPSC/Create(..., MPSC, ...); ignored by SPSC and
// SPMC. The table never grows and its slots are never reused: once n
// producers have registered over the channel's lifetime, further
// registration returns ErrTooManyProducers.
func WithMaxProducers(n int) Option {
	return func(c *config) { c.maxProducers = n }
}

// WithAllocator overrides the byte allocator used for the ring's backing
// buffer; the MPSC producer table is always allocated on the Go heap. With
// the default allocator the buffer is a plain make([]T, n), aligned for T
// but not necessarily to a cache line; a supplied allocator is asked for
// cache-line alignment. WithAllocator exists so embedders with their own aligned-memory arena
// (e.g. a huge-page pool) can supply it instead.
func WithAllocator(a Allocator) Option {
	return func(c *config) { c.allocator = a }
}

// Builder offers the same two-step "configure, then build" shape the
// teacher's Builder does, for parity with spec.md §6's
// create(allocator, capacity, mode, max_producers) signature. Most callers
// should prefer the typed constructors (NewSPSC, NewMPSC, NewSPMC)
// directly, exactly as the teacher's own doc.go recommends direct
// constructors over the Builder for the common case.
type Builder struct {
	capacity int
	opts     []Option
}

// New starts building a channel of the given capacity (rounded up to the
// next power of two).
func New(capacity int) *Builder {
	return &Builder{capacity: capacity}
}

// MaxProducers is equivalent to passing WithMaxProducers to Create.
func (b *Builder) MaxProducers(n int) *Builder {
	b.opts = append(b.opts, WithMaxProducers(n))
	return b
}

// Allocator is equivalent to passing WithAllocator to Create.
func (b *Builder) Allocator(a Allocator) *Builder {
	b.opts = append(b.opts, WithAllocator(a))
	return b
}

// BuildChannel constructs the channel for the given Mode from a Builder.
// Returns a *SPSC[T], *MPSC[T], or *SPMC[T] as the any, matching Create's
// contract. Go methods cannot carry their own type parameter, so this is a
// free function over *Builder rather than a Builder method — the same
// shape as the teacher's own Build[T any](b *Builder) Queue[T].
func BuildChannel[T any](b *Builder, mode Mode) (any, error) {
	return Create[T](b.capacity, mode, b.opts...)
}

// Create is the uniform factory spec.md §6 names: create(allocator,
// capacity, mode, max_producers) → channel | CreationError. It returns a
// *SPSC[T], *MPSC[T], or *SPMC[T] depending on mode. Typed constructors
// (NewSPSC, NewMPSC, NewSPMC) are equivalent and avoid the any-typed
// return; Create exists for callers that select mode dynamically.
func Create[T any](capacity int, mode Mode, opts ...Option) (any, error) {
	switch mode {
	case SPSC:
		return NewSPSC[T](capacity, opts...)
	case MPSC:
		c := newConfig(opts)
		if c.maxProducers <= 0 {
			return nil, ErrMaxProducersRequired
		}
		return NewMPSC[T](capacity, c.maxProducers, opts...)
	case SPMC:
		return NewSPMC[T](capacity, opts...)
	default:
		return nil, ErrWrongMode
	}
}
