package server

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/iliyamo/event-management-system/internal/model"
	"github.com/iliyamo/event-management-system/internal/protocol"
	"github.com/iliyamo/event-management-system/internal/store"
)

// outcome is the explicit result of serving one request, instead of a
// shared flag read across goroutines.
type outcome int

const (
	outcomeContinue outcome = iota
	outcomeClosed
)

// handleSession is the pool's SessionHandler: it opens the client's two
// pipes, performs the handshake and serves requests until the client quits
// or the channel breaks. The worker survives either way and returns to the
// pool for its next session.
func (s *Server) handleSession(workerID uint32, p model.PendingSession) {
	req, err := os.OpenFile(p.ReqPipePath, os.O_RDONLY, 0)
	if err != nil {
		log.Printf("session %d: opening request pipe %s: %v", workerID, p.ReqPipePath, err)
		return
	}
	defer req.Close()

	resp, err := os.OpenFile(p.RespPipePath, os.O_WRONLY, 0)
	if err != nil {
		log.Printf("session %d: opening response pipe %s: %v", workerID, p.RespPipePath, err)
		return
	}
	defer resp.Close()

	if err := protocol.WriteSessionID(resp, workerID); err != nil {
		log.Printf("session %d: handshake failed: %v", workerID, err)
		return
	}
	s.serve(workerID, req, resp)
}

// serve processes requests in arrival order. An engine-level failure is
// answered with a non-zero status and the session continues; only a
// channel-level read or write failure ends the session early.
func (s *Server) serve(sessionID uint32, r io.Reader, w io.Writer) {
	for {
		req, err := protocol.ReadRequest(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("session %d: request channel failed: %v", sessionID, err)
			}
			return
		}
		out, err := s.handleRequest(req, w)
		if err != nil {
			log.Printf("session %d: response channel failed: %v", sessionID, err)
			return
		}
		if out == outcomeClosed {
			return
		}
	}
}

// handleRequest dispatches one decoded request into the engine and writes
// the response. The returned error is channel-level only; engine failures
// are encoded into the status.
func (s *Server) handleRequest(req protocol.Request, w io.Writer) (outcome, error) {
	switch req.Op {
	case protocol.OpQuit:
		return outcomeClosed, nil

	case protocol.OpCreate:
		err := s.eng.Create(req.EventID, req.Rows, req.Cols)
		logOpError("create", req, err)
		return outcomeContinue, protocol.WriteStatus(w, statusOf(err))

	case protocol.OpReserve:
		err := s.eng.Reserve(req.EventID, req.Seats)
		logOpError("reserve", req, err)
		return outcomeContinue, protocol.WriteStatus(w, statusOf(err))

	case protocol.OpShow:
		snap, err := s.eng.Show(req.EventID)
		if err != nil {
			logOpError("show", req, err)
			return outcomeContinue, protocol.WriteStatus(w, protocol.StatusError)
		}
		return outcomeContinue, protocol.WriteShowResponse(w, snap)

	case protocol.OpList:
		ids, err := s.eng.List()
		if err != nil {
			logOpError("list", req, err)
			return outcomeContinue, protocol.WriteStatus(w, protocol.StatusError)
		}
		return outcomeContinue, protocol.WriteListResponse(w, ids)

	default:
		// ReadRequest validates opcodes; an unknown one here means the
		// stream is poisoned.
		return outcomeClosed, nil
	}
}

func statusOf(err error) int32 {
	if err != nil {
		return protocol.StatusError
	}
	return protocol.StatusOK
}

// logOpError records expected engine failures at the same level the rest
// of the server logs, keyed by session and operation. Not-found and
// collision errors are normal traffic, but operators still want them
// visible when debugging a client.
func logOpError(op string, req protocol.Request, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrEventExists),
		errors.Is(err, store.ErrSeatReserved),
		errors.Is(err, store.ErrSeatOutOfBounds),
		errors.Is(err, store.ErrDuplicateSeat):
		log.Printf("session %d: %s event %d refused: %v", req.SessionID, op, req.EventID, err)
	default:
		log.Printf("session %d: %s event %d failed: %v", req.SessionID, op, req.EventID, err)
	}
}
