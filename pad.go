// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// cacheLineSize is the padding unit used to keep every atomic that
// participates in a release/acquire hand-off on its own cache line, so
// that concurrent producers and the consumer never share one (spec.md
// §9 "cache-line padding").
const cacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// pad reserves a full cache line, used after an 8-byte atomic field.
type pad [cacheLineSize]byte

// roundToPow2 rounds n up to the next power of 2. Returns 0 if n would
// overflow a uint64 when rounded up.
func roundToPow2(n int) uint64 {
	if n <= 1 {
		return 1
	}
	v := uint64(n) - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	if v == ^uint64(0) {
		return 0
	}
	return v + 1
}
