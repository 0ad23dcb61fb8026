// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package lfchan

import (
	"math"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWaitOp uintptr = 0
	futexWakeOp uintptr = 1
)

// futexWait parks the calling goroutine on addr while its value equals
// expect. Returns as soon as a futexWake targeting addr observes the word
// changed, or spuriously — callers must re-check their own condition in a
// loop, exactly as every address-based park primitive requires.
func futexWait(addr *atomic.Uint32, expect uint32) {
	var ts unix.Timespec
	millis := int64(math.MaxInt32)
	ts.Sec = millis / 1000
	ts.Nsec = millis % 1000 * 1000000
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitOp,
		uintptr(expect),
		uintptr(unsafe.Pointer(&ts)),
		0, 0)
}

// futexWakeAll wakes every waiter parked on addr.
func futexWakeAll(addr *atomic.Uint32) {
	_, _, _ = unix.Syscall(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakeOp,
		^uintptr(0))
}
