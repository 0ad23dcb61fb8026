// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestBlockUntilWakesOnCondition(t *testing.T) {
	var waiters atomic.Uint32
	var ready atomic.Bool
	closed := func() bool { return false }

	done := make(chan bool)
	go func() {
		done <- blockUntil(func() bool { return ready.Load() }, closed, &waiters)
	}()

	time.Sleep(5 * time.Millisecond)
	ready.Store(true)
	wakeAllIfWaiting(&waiters)

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("blockUntil: want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blockUntil did not return after wake")
	}
}

func TestBlockUntilReturnsFalseOnClose(t *testing.T) {
	var waiters atomic.Uint32
	var closed atomic.Bool

	done := make(chan bool)
	go func() {
		done <- blockUntil(func() bool { return false }, closed.Load, &waiters)
	}()

	time.Sleep(5 * time.Millisecond)
	closed.Store(true)

	select {
	case ok := <-done:
		if ok {
			t.Fatal("blockUntil: want false after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blockUntil did not return after close")
	}
}

func TestSwapToZeroAndWakeClearsWord(t *testing.T) {
	var w atomic.Uint32
	w.Store(3)
	swapToZeroAndWake(&w)
	if w.Load() != 0 {
		t.Fatalf("waiters: got %d, want 0", w.Load())
	}
}
