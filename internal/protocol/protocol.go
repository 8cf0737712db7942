// Package protocol defines the byte framing spoken between clients and
// session workers over the request/response channels. All multi-byte
// fields are little-endian; ids and statuses are 32-bit, counts and
// coordinates 64-bit. Requests and responses are built in memory and
// written with a single Write so each message reaches the pipe whole.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/iliyamo/event-management-system/internal/model"
)

// Operation codes. A session starts with OpSetup on the server's public
// channel; everything else flows on the per-session request channel.
const (
	OpSetup   byte = '1'
	OpQuit    byte = '2'
	OpCreate  byte = '3'
	OpReserve byte = '4'
	OpShow    byte = '5'
	OpList    byte = '6'
)

// PipePathMax is the fixed width of a pipe path field in a setup message.
// Shorter paths are NUL-padded.
const PipePathMax = 40

// SetupMessageSize is the exact size of a setup message: the opcode plus
// two fixed-width pipe paths.
const SetupMessageSize = 1 + 2*PipePathMax

// Response status codes. Anything non-zero is a failure; the payload of a
// failed response is empty.
const (
	StatusOK    int32 = 0
	StatusError int32 = 1
)

// ErrPathTooLong is returned when a pipe path does not fit a setup field.
var ErrPathTooLong = errors.New("pipe path exceeds maximum length")

// ErrBadMessage is returned when a message violates the framing: unknown
// opcode, oversized seat count, or a setup message with the wrong tag.
var ErrBadMessage = errors.New("malformed protocol message")

// Request is one decoded session request. Fields beyond Op and SessionID
// are populated per operation: EventID for create/reserve/show, Rows/Cols
// for create, Seats for reserve.
type Request struct {
	Op        byte
	SessionID uint32
	EventID   uint32
	Rows      uint64
	Cols      uint64
	Seats     []model.Seat
}

func padPath(p string) ([]byte, error) {
	if len(p) >= PipePathMax {
		return nil, ErrPathTooLong
	}
	buf := make([]byte, PipePathMax)
	copy(buf, p)
	return buf, nil
}

func trimPath(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// WriteSetup sends a session request on the server's public channel,
// naming the two pipes the client created for this session.
func WriteSetup(w io.Writer, reqPath, respPath string) error {
	req, err := padPath(reqPath)
	if err != nil {
		return err
	}
	resp, err := padPath(respPath)
	if err != nil {
		return err
	}
	msg := make([]byte, 0, SetupMessageSize)
	msg = append(msg, OpSetup)
	msg = append(msg, req...)
	msg = append(msg, resp...)
	_, err = w.Write(msg)
	return err
}

// ReadSetup reads one fixed-size setup message and returns the pending
// session it describes.
func ReadSetup(r io.Reader) (model.PendingSession, error) {
	var msg [SetupMessageSize]byte
	if _, err := io.ReadFull(r, msg[:]); err != nil {
		return model.PendingSession{}, err
	}
	if msg[0] != OpSetup {
		return model.PendingSession{}, fmt.Errorf("%w: setup opcode %q", ErrBadMessage, msg[0])
	}
	return model.PendingSession{
		ReqPipePath:  trimPath(msg[1 : 1+PipePathMax]),
		RespPipePath: trimPath(msg[1+PipePathMax:]),
	}, nil
}

// WriteSessionID performs the server side of the session handshake.
func WriteSessionID(w io.Writer, sessionID uint32) error {
	return binary.Write(w, binary.LittleEndian, sessionID)
}

// ReadSessionID performs the client side of the session handshake.
func ReadSessionID(r io.Reader) (uint32, error) {
	var id uint32
	err := binary.Read(r, binary.LittleEndian, &id)
	return id, err
}

// ReadRequest decodes the next request from a session's request channel.
// A framing violation poisons the stream and must terminate the session;
// it is indistinguishable from a broken channel.
func ReadRequest(r io.Reader) (Request, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Request{}, err
	}
	req := Request{Op: header[0]}
	if err := binary.Read(r, binary.LittleEndian, &req.SessionID); err != nil {
		return Request{}, err
	}

	switch req.Op {
	case OpQuit, OpList:
		return req, nil
	case OpCreate:
		if err := binary.Read(r, binary.LittleEndian, &req.EventID); err != nil {
			return Request{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &req.Rows); err != nil {
			return Request{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &req.Cols); err != nil {
			return Request{}, err
		}
		return req, nil
	case OpShow:
		if err := binary.Read(r, binary.LittleEndian, &req.EventID); err != nil {
			return Request{}, err
		}
		return req, nil
	case OpReserve:
		if err := binary.Read(r, binary.LittleEndian, &req.EventID); err != nil {
			return Request{}, err
		}
		var count uint64
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return Request{}, err
		}
		// Zero seats is a valid, if pointless, request: the engine answers
		// it as a no-op. Only an oversized count poisons the stream.
		if count > model.MaxReservationSize {
			return Request{}, fmt.Errorf("%w: seat count %d", ErrBadMessage, count)
		}
		xs := make([]uint64, count)
		ys := make([]uint64, count)
		if err := binary.Read(r, binary.LittleEndian, xs); err != nil {
			return Request{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, ys); err != nil {
			return Request{}, err
		}
		req.Seats = make([]model.Seat, count)
		for i := range req.Seats {
			req.Seats[i] = model.Seat{Row: xs[i], Col: ys[i]}
		}
		return req, nil
	default:
		return Request{}, fmt.Errorf("%w: opcode %q", ErrBadMessage, req.Op)
	}
}

func writeMessage(w io.Writer, op byte, fields ...any) error {
	var buf bytes.Buffer
	buf.WriteByte(op)
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteQuit ends the session on the server side without a response.
func WriteQuit(w io.Writer, sessionID uint32) error {
	return writeMessage(w, OpQuit, sessionID)
}

// WriteCreate encodes a create request.
func WriteCreate(w io.Writer, sessionID, eventID uint32, rows, cols uint64) error {
	return writeMessage(w, OpCreate, sessionID, eventID, rows, cols)
}

// WriteReserve encodes a reserve request. The seat list is split into the
// xs/ys coordinate arrays the wire format expects.
func WriteReserve(w io.Writer, sessionID, eventID uint32, seats []model.Seat) error {
	if len(seats) > model.MaxReservationSize {
		return fmt.Errorf("%w: seat count %d", ErrBadMessage, len(seats))
	}
	xs := make([]uint64, len(seats))
	ys := make([]uint64, len(seats))
	for i, s := range seats {
		xs[i] = s.Row
		ys[i] = s.Col
	}
	return writeMessage(w, OpReserve, sessionID, eventID, uint64(len(seats)), xs, ys)
}

// WriteShow encodes a show request.
func WriteShow(w io.Writer, sessionID, eventID uint32) error {
	return writeMessage(w, OpShow, sessionID, eventID)
}

// WriteList encodes a list request.
func WriteList(w io.Writer, sessionID uint32) error {
	return writeMessage(w, OpList, sessionID)
}

// WriteStatus sends a bare status response, used for create/reserve
// results and for any failed operation.
func WriteStatus(w io.Writer, status int32) error {
	return binary.Write(w, binary.LittleEndian, status)
}

// ReadStatus reads the status that opens every response.
func ReadStatus(r io.Reader) (int32, error) {
	var status int32
	err := binary.Read(r, binary.LittleEndian, &status)
	return status, err
}

// WriteShowResponse sends a successful show response: status, grid
// dimensions, then the row-major seat values.
func WriteShowResponse(w io.Writer, snap model.Snapshot) error {
	var buf bytes.Buffer
	for _, f := range []any{StatusOK, snap.Rows, snap.Cols, snap.Seats} {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadShowPayload reads the payload that follows a StatusOK show response.
func ReadShowPayload(r io.Reader) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := binary.Read(r, binary.LittleEndian, &snap.Rows); err != nil {
		return model.Snapshot{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &snap.Cols); err != nil {
		return model.Snapshot{}, err
	}
	snap.Seats = make([]uint32, snap.Rows*snap.Cols)
	if err := binary.Read(r, binary.LittleEndian, snap.Seats); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// WriteListResponse sends a successful list response: status, event count,
// then the event ids in creation order.
func WriteListResponse(w io.Writer, ids []uint32) error {
	var buf bytes.Buffer
	for _, f := range []any{StatusOK, uint64(len(ids)), ids} {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadListPayload reads the payload that follows a StatusOK list response.
func ReadListPayload(r io.Reader) ([]uint32, error) {
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	ids := make([]uint32, count)
	if count > 0 {
		if err := binary.Read(r, binary.LittleEndian, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
