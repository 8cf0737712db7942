// Package client implements the session API a program uses to talk to the
// reservation server: it creates the per-session pipes, performs the setup
// handshake and exposes one method per operation. Methods are not safe for
// concurrent use; a session's requests are strictly ordered.
package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/iliyamo/event-management-system/internal/model"
	"github.com/iliyamo/event-management-system/internal/protocol"
)

// ErrRequestRefused is returned when the server answers an operation with
// a non-zero status. The session remains usable.
var ErrRequestRefused = errors.New("request refused by server")

// Client is one established session. Create it with Setup and end it with
// Quit, which also removes the session's pipes.
type Client struct {
	reqPipe   *os.File
	respPipe  *os.File
	reqPath   string
	respPath  string
	sessionID uint32
}

// Setup creates the session's request and response pipes, announces them
// on the server's public pipe and completes the handshake. The returned
// client carries the session id assigned by the server.
func Setup(reqPath, respPath, serverPath string) (*Client, error) {
	if err := makePipe(reqPath); err != nil {
		return nil, err
	}
	if err := makePipe(respPath); err != nil {
		os.Remove(reqPath)
		return nil, err
	}

	cleanup := func() {
		os.Remove(reqPath)
		os.Remove(respPath)
	}

	serverPipe, err := os.OpenFile(serverPath, os.O_WRONLY, 0)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("opening server pipe: %w", err)
	}
	err = protocol.WriteSetup(serverPipe, reqPath, respPath)
	serverPipe.Close()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("sending setup request: %w", err)
	}

	// Open order matters: the worker opens the request pipe for reading
	// first, then the response pipe for writing, and FIFO opens block
	// until both ends exist.
	reqPipe, err := os.OpenFile(reqPath, os.O_WRONLY, 0)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("opening request pipe: %w", err)
	}
	respPipe, err := os.OpenFile(respPath, os.O_RDONLY, 0)
	if err != nil {
		reqPipe.Close()
		cleanup()
		return nil, fmt.Errorf("opening response pipe: %w", err)
	}

	sessionID, err := protocol.ReadSessionID(respPipe)
	if err != nil {
		reqPipe.Close()
		respPipe.Close()
		cleanup()
		return nil, fmt.Errorf("reading session id: %w", err)
	}

	return &Client{
		reqPipe:   reqPipe,
		respPipe:  respPipe,
		reqPath:   reqPath,
		respPath:  respPath,
		sessionID: sessionID,
	}, nil
}

func makePipe(path string) error {
	if err := syscall.Mkfifo(path, 0o666); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("creating pipe %s: %w", path, err)
	}
	return nil
}

// SessionID returns the identifier assigned during the handshake.
func (c *Client) SessionID() uint32 { return c.sessionID }

// Quit tells the server to end the session, then closes and removes the
// session's pipes.
func (c *Client) Quit() error {
	err := protocol.WriteQuit(c.reqPipe, c.sessionID)
	if cerr := c.reqPipe.Close(); err == nil {
		err = cerr
	}
	if cerr := c.respPipe.Close(); err == nil {
		err = cerr
	}
	for _, p := range []string{c.reqPath, c.respPath} {
		if rerr := os.Remove(p); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
			err = rerr
		}
	}
	return err
}

// Create asks the server to create an event with a rows×cols seat grid.
func (c *Client) Create(eventID uint32, rows, cols uint64) error {
	if err := protocol.WriteCreate(c.reqPipe, c.sessionID, eventID, rows, cols); err != nil {
		return err
	}
	return c.readStatus()
}

// Reserve asks the server to claim the given seats, all or nothing.
func (c *Client) Reserve(eventID uint32, seats []model.Seat) error {
	if err := protocol.WriteReserve(c.reqPipe, c.sessionID, eventID, seats); err != nil {
		return err
	}
	return c.readStatus()
}

// Show fetches the event's seat grid and renders it to w, one line of
// space-separated seat values per row.
func (c *Client) Show(w io.Writer, eventID uint32) error {
	if err := protocol.WriteShow(c.reqPipe, c.sessionID, eventID); err != nil {
		return err
	}
	if err := c.readStatus(); err != nil {
		return err
	}
	snap, err := protocol.ReadShowPayload(c.respPipe)
	if err != nil {
		return err
	}
	return snap.WriteGrid(w)
}

// List fetches the event ids in creation order and renders them to w as
// "Event: <id>" lines, or "No events" when none exist.
func (c *Client) List(w io.Writer) error {
	if err := protocol.WriteList(c.reqPipe, c.sessionID); err != nil {
		return err
	}
	if err := c.readStatus(); err != nil {
		return err
	}
	ids, err := protocol.ReadListPayload(c.respPipe)
	if err != nil {
		return err
	}
	return model.WriteEventList(w, ids)
}

func (c *Client) readStatus() error {
	status, err := protocol.ReadStatus(c.respPipe)
	if err != nil {
		return err
	}
	if status != protocol.StatusOK {
		return ErrRequestRefused
	}
	return nil
}
