// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package lfchan

import (
	"sync/atomic"
	"time"
)

// futexWait is the non-Linux fallback for the park/wake collaborator.
// golang.org/x/sys/unix only exposes SYS_FUTEX on Linux; other platforms
// have their own address-based primitives (e.g. Darwin's ulock,
// Windows' WaitOnAddress, both outside this module's wired dependency
// set), so this portability path polls instead of syscalling.
//
// It does not wait for addr to actually change value and ignores expect:
// it returns on its own after one short interval, a spurious wake every
// caller already handles by re-checking its own condition in a loop.
func futexWait(addr *atomic.Uint32, expect uint32) {
	const pollInterval = 50 * time.Microsecond
	time.Sleep(pollInterval)
}

// futexWakeAll is a no-op on the polling fallback: parked callers return
// on their own within one poll interval.
func futexWakeAll(addr *atomic.Uint32) {}
