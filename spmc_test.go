// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan_test

import (
	"sort"
	"sync"
	"testing"

	"go.lfchan.dev/lfchan"
)

func TestSPMCBasic(t *testing.T) {
	q, err := lfchan.NewSPMC[int](16)
	if err != nil {
		t.Fatalf("NewSPMC: %v", err)
	}

	if !q.TrySend(42) {
		t.Fatal("TrySend(42): want true")
	}
	v, ok := q.TryReceive()
	if !ok || v != 42 {
		t.Fatalf("TryReceive: got (%d, %v), want (42, true)", v, ok)
	}
	if _, ok := q.TryReceive(); ok {
		t.Fatal("TryReceive on empty: want ok=false")
	}
}

func TestSPMCFull(t *testing.T) {
	q, err := lfchan.NewSPMC[int](4)
	if err != nil {
		t.Fatalf("NewSPMC: %v", err)
	}
	for i := 0; i < 4; i++ {
		if !q.TrySend(i) {
			t.Fatalf("TrySend(%d): want true", i)
		}
	}
	if q.TrySend(999) {
		t.Fatal("TrySend on full: want false")
	}
}

// TestSPMCMultiConsumer verifies exactly-once delivery across N concurrent
// consumers draining a single producer's output.
func TestSPMCMultiConsumer(t *testing.T) {
	if lfchan.RaceEnabled {
		t.Skip("skip: concurrent generic channel access trips false positives under -race")
	}

	const numItems = 20000
	const numConsumers = 8

	q, err := lfchan.NewSPMC[int](1024)
	if err != nil {
		t.Fatalf("NewSPMC: %v", err)
	}

	go func() {
		for i := 0; i < numItems; i++ {
			q.Send(i)
		}
		q.Close()
	}()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for c := 0; c < numConsumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local []int
			for {
				v, ok := q.Receive()
				if !ok {
					break
				}
				local = append(local, v)
			}
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(got) != numItems {
		t.Fatalf("total delivered: got %d, want %d", len(got), numItems)
	}
	sort.Ints(got)
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d (duplicate or dropped item)", i, v, i)
		}
	}
}
