// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import "errors"

// Configuration errors, returned synchronously by Create/NewSPSC/NewMPSC/NewSPMC.
var (
	// ErrInvalidCapacity is returned when capacity is 0 or would overflow
	// when rounded up to the next power of two.
	ErrInvalidCapacity = errors.New("lfchan: invalid capacity")

	// ErrMaxProducersRequired is returned by Create when mode is MPSC and
	// WithMaxProducers was not supplied (or supplied as <= 0).
	ErrMaxProducersRequired = errors.New("lfchan: mpsc requires max producers")

	// ErrAllocationFailed is returned when the configured Allocator cannot
	// satisfy the ring buffer's aligned allocation request. When the
	// Allocator itself reports an error, that error is wrapped as well.
	ErrAllocationFailed = errors.New("lfchan: allocation failed")
)

// Mode errors, returned synchronously when an operation does not match the
// channel's topology.
var (
	// ErrWrongMode is returned by Create when mode matches none of SPSC,
	// MPSC, or SPMC.
	ErrWrongMode = errors.New("lfchan: operation not valid for this mode")
)

// Runtime capacity errors.
var (
	// ErrTooManyProducers is returned by RegisterProducer once all
	// max-producers table slots have been assigned over the channel's
	// lifetime. Slots are never reused within one channel.
	ErrTooManyProducers = errors.New("lfchan: too many producers")
)

// ErrClosed is returned by RegisterProducer once Close has been called on
// the channel; no further producers may join a closed channel.
var ErrClosed = errors.New("lfchan: channel closed")

// ErrReserveMismatch is returned by CommitBatch when n does not match the
// count most recently returned by ReserveBatch on the same handle, or when
// CommitBatch is called with n > 0 without a prior ReserveBatch (a commit
// of 0 with nothing reserved returns nil). This is a programmer
// error: an in-flight reservation must be committed (possibly with n=0 to
// abandon it) before any other send or reserve on the same handle.
var ErrReserveMismatch = errors.New("lfchan: commit does not match reservation")
