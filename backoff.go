// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// blockUntil implements spec.md §4.6's blocking discipline: exponential
// spin backoff (spin count doubles from 1 to a cap of 1024 pause hints,
// using spin.Wait{}.Once() exactly as the teacher's own CAS retry loops
// do) followed by a futex-style park once the spin count exceeds 512.
//
// try is retried until it reports success or isClosed reports the channel
// has closed; once closed is observed, try runs one final time, so
// anything published before the close is still taken. waiters is the caller's side of the park/wake protocol
// (producerWaiters for Send*, consumerWaiters for Receive*); blockUntil
// increments it exactly once per park call, addressing spec.md's Open
// Question about a prior implementation double-counting.
//
// Every wake resets the spin count back to 1, per spec.md §4.6.
func blockUntil(try func() bool, isClosed func() bool, waiters *atomic.Uint32) bool {
	n := 1
	for {
		if try() {
			return true
		}
		if isClosed() {
			return try()
		}
		if n > 512 {
			waiters.Add(1)
			expect := waiters.Load()
			if try() {
				return true
			}
			if isClosed() {
				return try()
			}
			futexWait(waiters, expect)
			n = 1
			continue
		}
		sw := spin.Wait{}
		for i := 0; i < n; i++ {
			sw.Once()
		}
		if n < 1024 {
			n <<= 1
		}
	}
}

// wakeAllIfWaiting wakes every park()ed waiter on w, used for the
// empty→nonempty transition and last-producer retire (spec.md §4.6: the
// producer "loads consumer_waiters; if nonzero, wakes all waiters").
//
// It bumps w before waking rather than only checking it: blockUntil
// captures w's post-increment value as its futex "expect" immediately
// before parking, so a wake landing in the window between that capture
// and the park syscall must change w's value — otherwise the syscall's
// own atomic recheck of addr against the stale expect would see them
// still equal and park through the wake that just raced it.
//
// The wake syscall is issued whenever w was nonzero before the bump. This
// path never clears w (only Close does, via swapToZeroAndWake), so once w
// has become nonzero every later call issues the wake, whether or not a
// waiter is currently parked.
func wakeAllIfWaiting(w *atomic.Uint32) {
	if w.Add(1) != 1 {
		futexWakeAll(w)
	}
}

// swapToZeroAndWake clears w and wakes every waiter if it was nonzero,
// used for the full→not-full transition and for Close (spec.md §4.6).
func swapToZeroAndWake(w *atomic.Uint32) {
	if w.Swap(0) != 0 {
		futexWakeAll(w)
	}
}
