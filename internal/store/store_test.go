package store

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestCreateAndLookup(t *testing.T) {
	s := NewEventStore()
	if err := s.Create(42, 3, 4); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ev, ok := s.Lookup(42)
	if !ok {
		t.Fatal("Lookup(42) = not found")
	}
	if ev.Rows() != 3 || ev.Cols() != 4 {
		t.Fatalf("event dimensions %dx%d, want 3x4", ev.Rows(), ev.Cols())
	}
	if _, ok := s.Lookup(7); ok {
		t.Fatal("Lookup(7) found an event that was never created")
	}
}

func TestCreateDuplicateID(t *testing.T) {
	s := NewEventStore()
	if err := s.Create(1, 2, 2); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Create(1, 5, 5); !errors.Is(err, ErrEventExists) {
		t.Fatalf("Create duplicate error = %v, want ErrEventExists", err)
	}
	// The original event must be untouched by the failed create.
	ev, _ := s.Lookup(1)
	if ev.Rows() != 2 || ev.Cols() != 2 {
		t.Fatalf("event dimensions %dx%d after rejected create, want 2x2", ev.Rows(), ev.Cols())
	}
}

func TestCreateInvalidDimensions(t *testing.T) {
	s := NewEventStore()
	for _, dims := range [][2]uint64{{0, 3}, {3, 0}, {0, 0}} {
		if err := s.Create(1, dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Fatalf("Create(%dx%d) error = %v, want ErrInvalidDimensions", dims[0], dims[1], err)
		}
	}
	if len(s.List()) != 0 {
		t.Fatal("rejected creates left events in the store")
	}
}

func TestCreateGridSizeOverflow(t *testing.T) {
	s := NewEventStore()
	// rows*cols wraps to 0 in uint64; accepting it would build an empty
	// grid that in-bounds reservations then index past.
	if err := s.Create(1, 1<<32, 1<<32); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("Create(2^32 x 2^32) error = %v, want ErrInvalidDimensions", err)
	}
	if err := s.Create(2, math.MaxUint64, 2); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("Create(MaxUint64 x 2) error = %v, want ErrInvalidDimensions", err)
	}
	if len(s.List()) != 0 {
		t.Fatal("overflowing creates left events in the store")
	}
}

func TestListCreationOrder(t *testing.T) {
	s := NewEventStore()
	for _, id := range []uint32{5, 1, 3} {
		if err := s.Create(id, 1, 1); err != nil {
			t.Fatalf("Create(%d) failed: %v", id, err)
		}
	}
	got := s.List()
	want := []uint32{5, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List = %v, want creation order %v", got, want)
		}
	}
}

func TestConcurrentCreateSameID(t *testing.T) {
	s := NewEventStore()
	const attempts = 32
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Create(9, 2, 2)
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, ErrEventExists) {
			t.Fatalf("unexpected create error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("%d concurrent creates of the same id succeeded, want exactly 1", successes)
	}
	if got := s.List(); len(got) != 1 || got[0] != 9 {
		t.Fatalf("List = %v, want [9]", got)
	}
}

func TestConcurrentCreateDistinctIDs(t *testing.T) {
	s := NewEventStore()
	const n = 50
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			if err := s.Create(id, 1, 1); err != nil {
				t.Errorf("Create(%d) failed: %v", id, err)
			}
		}(uint32(i))
	}
	wg.Wait()

	got := s.List()
	if len(got) != n {
		t.Fatalf("List has %d events, want %d", len(got), n)
	}
	seen := make(map[uint32]bool, n)
	for _, id := range got {
		if seen[id] {
			t.Fatalf("id %d listed twice", id)
		}
		seen[id] = true
	}
}
