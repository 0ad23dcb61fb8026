// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfchan_test

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"go.lfchan.dev/lfchan"
)

func TestMPSCBasic(t *testing.T) {
	q, err := lfchan.NewMPSC[int](16, 4)
	if err != nil {
		t.Fatalf("NewMPSC: %v", err)
	}
	p, err := q.RegisterProducer()
	if err != nil {
		t.Fatalf("RegisterProducer: %v", err)
	}
	defer p.Unregister()

	if !p.TrySend(42) {
		t.Fatal("TrySend(42): want true")
	}
	v, ok := q.TryReceive()
	if !ok || v != 42 {
		t.Fatalf("TryReceive: got (%d, %v), want (42, true)", v, ok)
	}
}

func TestMPSCTooManyProducers(t *testing.T) {
	q, err := lfchan.NewMPSC[int](16, 2)
	if err != nil {
		t.Fatalf("NewMPSC: %v", err)
	}
	if _, err := q.RegisterProducer(); err != nil {
		t.Fatalf("RegisterProducer 1: %v", err)
	}
	if _, err := q.RegisterProducer(); err != nil {
		t.Fatalf("RegisterProducer 2: %v", err)
	}
	if _, err := q.RegisterProducer(); !errors.Is(err, lfchan.ErrTooManyProducers) {
		t.Fatalf("RegisterProducer 3: got %v, want ErrTooManyProducers", err)
	}
}

// TestMPSCZeroCopyBatch mirrors the zero-copy batch scenario: a single
// registered producer reserves slots, writes through the returned
// pointers, commits, and the consumer drains the exact sequence back out.
func TestMPSCZeroCopyBatch(t *testing.T) {
	q, err := lfchan.NewMPSC[int](64, 1)
	if err != nil {
		t.Fatalf("NewMPSC: %v", err)
	}
	p, err := q.RegisterProducer()
	if err != nil {
		t.Fatalf("RegisterProducer: %v", err)
	}
	defer p.Unregister()

	ptrs := make([]*int, 10)
	n := p.ReserveBatch(ptrs)
	if n < 1 {
		t.Fatalf("ReserveBatch: got %d, want >= 1", n)
	}
	for i := 0; i < n; i++ {
		*ptrs[i] = i * 10
	}
	if err := p.CommitBatch(n); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	out := make([]int, 10)
	got := q.TryReceiveBatch(out)
	if got != n {
		t.Fatalf("TryReceiveBatch: got %d, want %d", got, n)
	}
	for i := 0; i < n; i++ {
		if out[i] != i*10 {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], i*10)
		}
	}
}

// TestMPSCAggregation sends 100, 200, 300 from a single producer and
// checks both the sum and the observed per-producer FIFO order.
func TestMPSCAggregation(t *testing.T) {
	q, err := lfchan.NewMPSC[int](64, 1)
	if err != nil {
		t.Fatalf("NewMPSC: %v", err)
	}
	p, err := q.RegisterProducer()
	if err != nil {
		t.Fatalf("RegisterProducer: %v", err)
	}
	defer p.Unregister()

	for _, v := range []int{100, 200, 300} {
		if !p.TrySend(v) {
			t.Fatalf("TrySend(%d): want true", v)
		}
	}

	var got []int
	sum := 0
	for i := 0; i < 3; i++ {
		v, ok := q.TryReceive()
		if !ok {
			t.Fatalf("TryReceive(%d): want ok=true", i)
		}
		got = append(got, v)
		sum += v
	}
	if sum != 600 {
		t.Fatalf("sum: got %d, want 600", sum)
	}
	want := []int{100, 200, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d (FIFO order violated)", i, got[i], want[i])
		}
	}
}

// TestMPSCTermination has 4 producers each send 10000 values concurrently
// while a consumer loops on TryReceive; once every producer unregisters,
// the consumer's loop must observe exactly 40000 deliveries and then a
// stable authoritative-empty state without deadlocking.
func TestMPSCTermination(t *testing.T) {
	if lfchan.RaceEnabled {
		t.Skip("skip: concurrent generic channel access trips false positives under -race")
	}

	const numProducers = 4
	const itemsPerProducer = 10000

	q, err := lfchan.NewMPSC[int](1024, numProducers)
	if err != nil {
		t.Fatalf("NewMPSC: %v", err)
	}

	var wg sync.WaitGroup
	for pi := 0; pi < numProducers; pi++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p, err := q.RegisterProducer()
			if err != nil {
				t.Errorf("RegisterProducer(%d): %v", id, err)
				return
			}
			defer p.Unregister()
			for i := 0; i < itemsPerProducer; i++ {
				p.Send(id*itemsPerProducer + i)
			}
		}(pi)
	}

	var got []int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for len(got) < numProducers*itemsPerProducer {
			v, ok := q.TryReceive()
			if ok {
				got = append(got, v)
			}
		}
	}()

	wg.Wait()
	<-done

	if len(got) != numProducers*itemsPerProducer {
		t.Fatalf("delivered: got %d, want %d", len(got), numProducers*itemsPerProducer)
	}
	sort.Ints(got)
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d (duplicate or dropped item)", i, v, i)
		}
	}
	if _, ok := q.TryReceive(); ok {
		t.Fatal("TryReceive after drain: want ok=false")
	}
}
