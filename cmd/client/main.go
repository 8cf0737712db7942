package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-management-system/internal/batch"
	"github.com/iliyamo/event-management-system/internal/client"
)

// Usage: client <req_pipe> <resp_pipe> <server_pipe> [job_file]
//
// The client establishes one session with the server and replays the
// commands of a job file (or stdin) over it. SHOW and LIST output goes
// to stdout; failures are reported on stderr and do not end the session.
func main() {
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) < 3 || len(args) > 4 {
		log.Fatalf("usage: %s <req_pipe> <resp_pipe> <server_pipe> [job_file]", os.Args[0])
	}

	var in io.Reader = os.Stdin
	if len(args) == 4 {
		f, err := os.Open(args[3])
		if err != nil {
			log.Fatalf("opening job file: %v", err)
		}
		defer f.Close()
		in = f
	}

	c, err := client.Setup(args[0], args[1], args[2])
	if err != nil {
		log.Fatalf("establishing session: %v", err)
	}
	log.Printf("session %d established", c.SessionID())

	run(c, in)

	if err := c.Quit(); err != nil {
		log.Fatalf("closing session: %v", err)
	}
}

// run replays commands until end of input. Per-request refusals keep the
// session going; a broken channel ends the replay.
func run(c *client.Client, in io.Reader) {
	p := batch.NewParser(in)
	for {
		cmd, ok := p.Next()
		if !ok {
			return
		}
		var err error
		switch cmd.Kind {
		case batch.CmdCreate:
			if err = c.Create(cmd.EventID, cmd.Rows, cmd.Cols); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to create event")
			}
		case batch.CmdReserve:
			if err = c.Reserve(cmd.EventID, cmd.Seats); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to reserve seats")
			}
		case batch.CmdShow:
			if err = c.Show(os.Stdout, cmd.EventID); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to show event")
			}
		case batch.CmdList:
			if err = c.List(os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to list events")
			}
		case batch.CmdWait:
			// WAIT is local in a session: targeted waits only make sense
			// in the batch runner, so the target is ignored here.
			fmt.Fprintln(os.Stderr, "Waiting...")
			time.Sleep(cmd.Delay)
		case batch.CmdHelp:
			fmt.Fprint(os.Stderr, batch.HelpText)
		case batch.CmdBarrier, batch.CmdInvalid:
			fmt.Fprintln(os.Stderr, "Invalid command. See HELP for usage")
		case batch.CmdEmpty:
			continue
		}
		if err != nil && err != client.ErrRequestRefused {
			log.Printf("session channel failed: %v", err)
			return
		}
	}
}
