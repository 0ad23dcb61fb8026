// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan_test

import (
	"testing"

	"github.com/valyala/fastrand"
	"go.lfchan.dev/lfchan"
)

// TestSPSCRoundTrip checks spec's round-trip property: sending xs across a
// single producer and draining to ys yields ys == xs, under producer/
// consumer jitter driven by fastrand rather than math/rand's globally
// locked source, so the jitter itself never becomes the bottleneck this
// stress test is trying to create contention around.
func TestSPSCRoundTrip(t *testing.T) {
	if lfchan.RaceEnabled {
		t.Skip("skip: concurrent generic channel access trips false positives under -race")
	}

	const n = 50000
	q, err := lfchan.NewSPSC[int](256)
	if err != nil {
		t.Fatalf("NewSPSC: %v", err)
	}

	xs := make([]int, n)
	for i := range xs {
		xs[i] = i
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, v := range xs {
			if fastrand.Uint32n(64) == 0 {
				_ = fastrand.Uint32() // spend a cycle, simulating producer jitter
			}
			q.Send(v)
		}
		q.Close()
	}()

	ys := make([]int, 0, n)
	for {
		if fastrand.Uint32n(64) == 0 {
			_ = fastrand.Uint32()
		}
		v, ok := q.Receive()
		if !ok {
			break
		}
		ys = append(ys, v)
	}
	<-done

	if len(ys) != n {
		t.Fatalf("len(ys): got %d, want %d", len(ys), n)
	}
	for i := range xs {
		if ys[i] != xs[i] {
			t.Fatalf("ys[%d] = %d, want %d", i, ys[i], xs[i])
		}
	}
}

// TestSPMCNoLostWake drives many short bursts of full→drain cycles and
// checks that a producer blocked on a full channel always eventually
// returns once a consumer makes room, with a single consumer draining and
// fastrand adding jitter to the producer's sends.
func TestSPMCNoLostWake(t *testing.T) {
	if lfchan.RaceEnabled {
		t.Skip("skip: concurrent generic channel access trips false positives under -race")
	}

	const capacity = 4
	const rounds = 2000

	q, err := lfchan.NewSPMC[int](capacity)
	if err != nil {
		t.Fatalf("NewSPMC: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < rounds*capacity; i++ {
			if fastrand.Uint32n(32) == 0 {
				_ = fastrand.Uint32()
			}
			if !q.Send(i) {
				return
			}
		}
	}()

	for i := 0; i < rounds*capacity; i++ {
		if _, ok := q.Receive(); !ok {
			t.Fatalf("Receive(%d): want ok=true", i)
		}
	}
	<-done
}
