package server

import (
	"bytes"
	"testing"

	"github.com/iliyamo/event-management-system/internal/engine"
	"github.com/iliyamo/event-management-system/internal/model"
	"github.com/iliyamo/event-management-system/internal/protocol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng := engine.New()
	if err := eng.Init(engine.Config{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return New(eng, "/tmp/unused.pipe", 1, 1)
}

func mustStatus(t *testing.T, r *bytes.Buffer, want int32) {
	t.Helper()
	status, err := protocol.ReadStatus(r)
	if err != nil {
		t.Fatalf("reading status: %v", err)
	}
	if status != want {
		t.Fatalf("status = %d, want %d", status, want)
	}
}

// TestServeSessionLoop drives a whole session through serve with buffered
// channels: refused operations answer with an error status and the session
// keeps going until the quit request.
func TestServeSessionLoop(t *testing.T) {
	srv := newTestServer(t)

	var reqs bytes.Buffer
	const sid = 0
	protocol.WriteCreate(&reqs, sid, 1, 2, 3)
	protocol.WriteCreate(&reqs, sid, 1, 9, 9)         // duplicate id, refused
	protocol.WriteCreate(&reqs, sid, 2, 1<<32, 1<<32) // grid size overflows, refused
	protocol.WriteReserve(&reqs, sid, 1, []model.Seat{{Row: 1, Col: 1}, {Row: 2, Col: 3}})
	protocol.WriteReserve(&reqs, sid, 1, []model.Seat{{Row: 1, Col: 1}}) // taken, refused
	protocol.WriteReserve(&reqs, sid, 1, nil)                            // empty seat list, no-op
	protocol.WriteShow(&reqs, sid, 1)
	protocol.WriteShow(&reqs, sid, 99) // unknown event, refused
	protocol.WriteList(&reqs, sid)
	protocol.WriteQuit(&reqs, sid)
	protocol.WriteList(&reqs, sid) // must never be served

	var resps bytes.Buffer
	srv.serve(sid, &reqs, &resps)

	mustStatus(t, &resps, protocol.StatusOK)    // create
	mustStatus(t, &resps, protocol.StatusError) // duplicate create
	mustStatus(t, &resps, protocol.StatusError) // overflowing create
	mustStatus(t, &resps, protocol.StatusOK)    // reserve
	mustStatus(t, &resps, protocol.StatusError) // conflicting reserve
	mustStatus(t, &resps, protocol.StatusOK)    // empty reserve

	mustStatus(t, &resps, protocol.StatusOK) // show
	snap, err := protocol.ReadShowPayload(&resps)
	if err != nil {
		t.Fatalf("reading show payload: %v", err)
	}
	want := []uint32{1, 0, 0, 0, 0, 1}
	for i, v := range want {
		if snap.Seats[i] != v {
			t.Fatalf("show grid %v, want %v", snap.Seats, want)
		}
	}

	mustStatus(t, &resps, protocol.StatusError) // unknown show, no payload

	mustStatus(t, &resps, protocol.StatusOK) // list
	ids, err := protocol.ReadListPayload(&resps)
	if err != nil {
		t.Fatalf("reading list payload: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("list ids = %v, want [1]", ids)
	}

	// Quit ended the session: the trailing list request got no answer.
	if resps.Len() != 0 {
		t.Fatalf("%d response bytes after quit, want none", resps.Len())
	}
}

// TestServeBrokenChannel ends the request stream without a quit; serve must
// return instead of spinning.
func TestServeBrokenChannel(t *testing.T) {
	srv := newTestServer(t)

	var reqs bytes.Buffer
	protocol.WriteCreate(&reqs, 0, 1, 1, 1)

	var resps bytes.Buffer
	srv.serve(0, &reqs, &resps)
	mustStatus(t, &resps, protocol.StatusOK)
}

// TestServeMalformedRequest checks that a framing violation poisons the
// session: nothing after the bad request is served.
func TestServeMalformedRequest(t *testing.T) {
	srv := newTestServer(t)

	var reqs bytes.Buffer
	reqs.WriteByte('9')
	reqs.Write(make([]byte, 4)) // session id of the bad request
	protocol.WriteCreate(&reqs, 0, 1, 1, 1)

	var resps bytes.Buffer
	srv.serve(0, &reqs, &resps)
	if resps.Len() != 0 {
		t.Fatalf("%d response bytes after a malformed request, want none", resps.Len())
	}
}
