// Package server implements the long-lived reservation server: it accepts
// session requests on a public named pipe, buffers them in the dispatch
// queue and serves each one from a fixed worker pool backed by the
// reservation engine.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/event-management-system/internal/dispatch"
	"github.com/iliyamo/event-management-system/internal/engine"
	"github.com/iliyamo/event-management-system/internal/protocol"
)

// Server owns the public pipe, the dispatch queue and the worker pool.
type Server struct {
	eng      *engine.Engine
	pipePath string
	queue    *dispatch.Queue
	pool     *dispatch.Pool
}

// New wires a server around an initialized engine. queueCapacity bounds
// how many sessions may wait for a worker; workers is the fixed pool size.
func New(eng *engine.Engine, pipePath string, queueCapacity, workers int) *Server {
	s := &Server{eng: eng, pipePath: pipePath}
	s.queue = dispatch.NewQueue(queueCapacity)
	s.pool = dispatch.NewPool(workers, s.queue, s.handleSession)
	return s
}

// Run creates the public pipe, starts the worker pool and accepts session
// requests until ctx is cancelled. SIGUSR1 dumps every event's grid to
// stderr while running. On shutdown the queue is closed, buffered sessions
// are still served, and the public pipe is removed.
func (s *Server) Run(ctx context.Context) error {
	if err := syscall.Mkfifo(s.pipePath, 0o666); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	// Opened read-write so the acceptor never sees EOF between clients.
	pipe, err := os.OpenFile(s.pipePath, os.O_RDWR, 0)
	if err != nil {
		return err
	}

	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)
	go func() {
		for range usr1 {
			if err := s.eng.DumpAll(os.Stderr); err != nil {
				log.Printf("server: state dump failed: %v", err)
			}
		}
	}()

	s.pool.Start()

	acceptDone := make(chan error, 1)
	go func() { acceptDone <- s.acceptLoop(pipe) }()

	var runErr error
	select {
	case <-ctx.Done():
		pipe.Close() // unblocks the acceptor's pending read
		<-acceptDone
	case runErr = <-acceptDone:
		pipe.Close()
	}

	s.queue.Close()
	s.pool.Wait()
	close(usr1)
	if err := os.Remove(s.pipePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("server: removing %s: %v", s.pipePath, err)
	}
	return runErr
}

// acceptLoop reads setup messages and enqueues pending sessions. Enqueue
// blocks while the queue is full: backpressure on connection bursts.
func (s *Server) acceptLoop(pipe io.Reader) error {
	for {
		pending, err := protocol.ReadSetup(pipe)
		if err != nil {
			if errors.Is(err, os.ErrClosed) || errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, protocol.ErrBadMessage) {
				log.Printf("server: rejecting session request: %v", err)
				continue
			}
			return err
		}
		if err := s.queue.Enqueue(pending); err != nil {
			return nil // queue closed: shutting down
		}
	}
}
