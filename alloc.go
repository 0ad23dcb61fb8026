// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"fmt"
	"unsafe"
)

// Allocator is the byte-allocator collaborator this package consumes from
// its environment (spec.md §1/§6): something that can hand back a region
// of memory aligned to a cache-line boundary, for the ring's backing
// buffer. Implementations must return a region whose first byte's address
// is a multiple of align.
type Allocator interface {
	// AlignedAlloc returns a byte slice of at least size bytes whose
	// backing array starts on an align-byte boundary. align is always a
	// power of two (cacheLineSize in practice). Returns an error if the
	// request cannot be satisfied.
	AlignedAlloc(size, align int) ([]byte, error)
}

// defaultAllocator satisfies Allocator using the Go heap: it over-allocates
// by align-1 bytes and slices forward to the first aligned offset, the same
// trick every pack example that cares about alignment skips in favor of
// just padding struct fields — here it is pulled out as a pluggable
// collaborator because spec.md's create() takes an allocator explicitly.
type defaultAllocator struct{}

func (defaultAllocator) AlignedAlloc(size, align int) ([]byte, error) {
	if align <= 0 || align&(align-1) != 0 {
		align = int(cacheLineSize)
	}
	raw := make([]byte, size+align-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	offset := int((-base) & uintptr(align-1))
	return raw[offset : offset+size : offset+size], nil
}

var globalDefaultAllocator Allocator = defaultAllocator{}

// alignedSlice allocates n elements of T from a, returned as a []T. a must
// not be nil.
//
// The default allocator (the global, always-present one returned by
// newConfig when no WithAllocator option is given) is special-cased to a
// plain make([]T, n): Go's own allocator already places the backing array
// at an alignment sufficient for T, matching the teacher's reliance on
// plain make plus explicit struct padding rather than a raw-byte aligned
// region, and it keeps the buffer under normal GC scanning for any T that
// contains pointers.
//
// A caller-supplied Allocator, by contrast, hands back raw bytes: this is
// only safe to reinterpret as []T when T is pointer-free, since the GC
// does not scan an allocation it was never told holds pointers. Callers
// supplying WithAllocator with a pointer-containing T are responsible for
// their own GC cooperation (e.g. keeping the referents alive elsewhere).
func alignedSlice[T any](a Allocator, n uint64) ([]T, error) {
	if a == globalDefaultAllocator {
		return make([]T, n), nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n), nil
	}
	raw, err := a.AlignedAlloc(elemSize*int(n), int(cacheLineSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	if len(raw) < elemSize*int(n) {
		return nil, ErrAllocationFailed
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n), nil
}
