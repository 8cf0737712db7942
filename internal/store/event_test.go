package store

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/event-management-system/internal/model"
)

func TestReserveStampsAllSeats(t *testing.T) {
	ev := newEvent(7, 2, 3)
	rid, err := ev.Reserve([]model.Seat{{Row: 1, Col: 1}, {Row: 2, Col: 3}})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if rid != 1 {
		t.Fatalf("first reservation id = %d, want 1", rid)
	}
	snap := ev.Snapshot()
	want := []uint32{1, 0, 0, 0, 0, 1}
	for i, v := range want {
		if snap.Seats[i] != v {
			t.Fatalf("seat %d = %d, want %d (grid %v)", i, snap.Seats[i], v, snap.Seats)
		}
	}
}

func TestReserveIDsIncrease(t *testing.T) {
	ev := newEvent(1, 3, 3)
	for want := uint32(1); want <= 3; want++ {
		rid, err := ev.Reserve([]model.Seat{{Row: uint64(want), Col: 1}})
		if err != nil {
			t.Fatalf("Reserve %d failed: %v", want, err)
		}
		if rid != want {
			t.Fatalf("reservation id = %d, want %d", rid, want)
		}
	}
}

func TestReserveDuplicateSeat(t *testing.T) {
	ev := newEvent(1, 2, 2)
	_, err := ev.Reserve([]model.Seat{{Row: 1, Col: 1}, {Row: 1, Col: 1}})
	if !errors.Is(err, ErrDuplicateSeat) {
		t.Fatalf("Reserve error = %v, want ErrDuplicateSeat", err)
	}
	if got := ev.Snapshot().Seats[0]; got != 0 {
		t.Fatalf("seat (1,1) = %d after rejected duplicate, want 0", got)
	}
}

func TestReserveOutOfBoundsRollback(t *testing.T) {
	ev := newEvent(1, 2, 2)
	_, err := ev.Reserve([]model.Seat{{Row: 1, Col: 1}, {Row: 3, Col: 3}})
	if !errors.Is(err, ErrSeatOutOfBounds) {
		t.Fatalf("Reserve error = %v, want ErrSeatOutOfBounds", err)
	}
	for i, v := range ev.Snapshot().Seats {
		if v != 0 {
			t.Fatalf("seat %d = %d after rejected reservation, want 0", i, v)
		}
	}
}

func TestReserveCollisionTouchesNothing(t *testing.T) {
	ev := newEvent(1, 2, 2)
	if _, err := ev.Reserve([]model.Seat{{Row: 2, Col: 2}}); err != nil {
		t.Fatalf("setup reservation failed: %v", err)
	}
	// Overlaps the taken seat; the free seats it names must stay free.
	_, err := ev.Reserve([]model.Seat{{Row: 1, Col: 1}, {Row: 2, Col: 2}})
	if !errors.Is(err, ErrSeatReserved) {
		t.Fatalf("Reserve error = %v, want ErrSeatReserved", err)
	}
	snap := ev.Snapshot()
	if snap.Seats[0] != 0 {
		t.Fatalf("seat (1,1) = %d after failed reservation, want 0", snap.Seats[0])
	}
	if snap.Seats[3] != 1 {
		t.Fatalf("seat (2,2) = %d, want original reservation 1", snap.Seats[3])
	}
}

func TestReserveEmptyListIsNoOp(t *testing.T) {
	ev := newEvent(1, 2, 2)
	rid, err := ev.Reserve(nil)
	if err != nil || rid != 0 {
		t.Fatalf("Reserve(nil) = (%d, %v), want (0, nil)", rid, err)
	}
	if rid, err := ev.Reserve([]model.Seat{{Row: 1, Col: 1}}); err != nil || rid != 1 {
		t.Fatalf("counter advanced by empty reservation: next id = %d, err %v", rid, err)
	}
}

func TestReserveTooLarge(t *testing.T) {
	ev := newEvent(1, 100, 100)
	seats := make([]model.Seat, model.MaxReservationSize+1)
	for i := range seats {
		seats[i] = model.Seat{Row: uint64(i/100 + 1), Col: uint64(i%100 + 1)}
	}
	if _, err := ev.Reserve(seats); !errors.Is(err, ErrReservationTooLarge) {
		t.Fatalf("Reserve error = %v, want ErrReservationTooLarge", err)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		seats   []model.Seat
		want    []uint64
		wantErr error
	}{
		{
			name:  "sorted by linear index regardless of request order",
			seats: []model.Seat{{Row: 2, Col: 1}, {Row: 1, Col: 3}, {Row: 1, Col: 1}},
			want:  []uint64{0, 2, 3},
		},
		{
			name:    "duplicate seat",
			seats:   []model.Seat{{Row: 1, Col: 2}, {Row: 1, Col: 2}},
			wantErr: ErrDuplicateSeat,
		},
		{
			name:    "row out of bounds",
			seats:   []model.Seat{{Row: 3, Col: 1}},
			wantErr: ErrSeatOutOfBounds,
		},
		{
			name:    "zero coordinate",
			seats:   []model.Seat{{Row: 0, Col: 1}},
			wantErr: ErrSeatOutOfBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canonicalize(2, 3, tt.seats)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("canonicalize error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("canonicalize = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("canonicalize = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// TestConcurrentOverlappingReservations drives many goroutines at
// overlapping seat sets, some in reverse request order, and checks the
// two core guarantees: every attempt terminates, and a committed
// reservation owns every one of its seats while a failed one owns none.
func TestConcurrentOverlappingReservations(t *testing.T) {
	const (
		rows       = 10
		cols       = 10
		goroutines = 64
		seatsEach  = 8
	)
	ev := newEvent(1, rows, cols)

	type success struct {
		rid   uint32
		seats []model.Seat
	}
	results := make(chan success, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(g)))
			seats := make([]model.Seat, seatsEach)
			for i := range seats {
				seats[i] = model.Seat{
					Row: uint64(rng.Intn(rows) + 1),
					Col: uint64(rng.Intn(cols) + 1),
				}
			}
			if g%2 == 1 {
				// Reverse the request order: canonicalization must make
				// this indistinguishable from the forward order.
				for i, j := 0, len(seats)-1; i < j; i, j = i+1, j-1 {
					seats[i], seats[j] = seats[j], seats[i]
				}
			}
			rid, err := ev.Reserve(seats)
			if err == nil {
				results <- success{rid: rid, seats: seats}
			}
		}(g)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("reservations did not terminate: likely deadlock")
	}
	close(results)

	snap := ev.Snapshot()
	owners := make(map[uint32]bool)
	for res := range results {
		if owners[res.rid] {
			t.Fatalf("reservation id %d committed twice", res.rid)
		}
		owners[res.rid] = true
		for _, s := range res.seats {
			idx := (s.Row-1)*cols + (s.Col - 1)
			if snap.Seats[idx] != res.rid {
				t.Fatalf("seat (%d,%d) = %d, want owner %d", s.Row, s.Col, snap.Seats[idx], res.rid)
			}
		}
	}
	for i, v := range snap.Seats {
		if v != 0 && !owners[v] {
			t.Fatalf("seat %d owned by %d, which never committed", i, v)
		}
	}
}

// TestSnapshotDuringReservations checks that concurrent snapshots never
// observe torn state: every value is either free or a reservation id that
// the event has actually handed out.
func TestSnapshotDuringReservations(t *testing.T) {
	const rows, cols = 8, 8
	ev := newEvent(1, rows, cols)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(g)))
			for {
				select {
				case <-stop:
					return
				default:
				}
				ev.Reserve([]model.Seat{{
					Row: uint64(rng.Intn(rows) + 1),
					Col: uint64(rng.Intn(cols) + 1),
				}})
			}
		}(g)
	}

	for i := 0; i < 200; i++ {
		snap := ev.Snapshot()
		if snap.Rows != rows || snap.Cols != cols || len(snap.Seats) != rows*cols {
			t.Fatalf("snapshot shape %dx%d/%d seats", snap.Rows, snap.Cols, len(snap.Seats))
		}
	}
	close(stop)
	wg.Wait()

	snap := ev.Snapshot()
	for i, v := range snap.Seats {
		if v > ev.reservations {
			t.Fatalf("seat %d = %d exceeds reservation counter %d", i, v, ev.reservations)
		}
	}
}
