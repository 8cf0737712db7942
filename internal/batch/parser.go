// Package batch implements the in-process deployment shape: textual
// command files (".jobs") executed by a fixed number of worker goroutines
// against a private engine per job. This file is the command parser; the
// runner lives in runner.go.
package batch

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/event-management-system/internal/model"
)

// CommandKind enumerates the verbs of the job-file language.
type CommandKind int

const (
	CmdEmpty CommandKind = iota // blank line or comment
	CmdInvalid
	CmdCreate
	CmdReserve
	CmdShow
	CmdList
	CmdWait
	CmdBarrier
	CmdHelp
)

// HelpText lists the accepted commands, printed in response to HELP and
// suggested after an invalid command.
const HelpText = `Available commands:
  CREATE <event_id> <num_rows> <num_columns>
  RESERVE <event_id> [(<x1>,<y1>) (<x2>,<y2>) ...]
  SHOW <event_id>
  LIST
  WAIT <delay_ms> [worker_id]
  BARRIER
  HELP
`

// Command is one parsed job-file line. Fields beyond Kind are populated
// per verb; TargetWorker is 0 when a WAIT names no worker.
type Command struct {
	Kind         CommandKind
	EventID      uint32
	Rows         uint64
	Cols         uint64
	Seats        []model.Seat
	Delay        time.Duration
	TargetWorker int
}

// Parser reads commands line by line. It is not safe for concurrent use;
// the job runner serializes access so that each line is consumed by
// exactly one worker.
type Parser struct {
	s *bufio.Scanner
}

// NewParser wraps a job-file reader.
func NewParser(r io.Reader) *Parser {
	return &Parser{s: bufio.NewScanner(r)}
}

// Next returns the next command. ok is false at end of input; malformed
// lines come back as CmdInvalid so a bad line never aborts the job.
func (p *Parser) Next() (cmd Command, ok bool) {
	if !p.s.Scan() {
		return Command{}, false
	}
	return parseLine(p.s.Text()), true
}

func parseLine(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Command{Kind: CmdEmpty}
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "CREATE":
		return parseCreate(fields[1:])
	case "RESERVE":
		return parseReserve(fields[1:])
	case "SHOW":
		return parseShow(fields[1:])
	case "LIST":
		if len(fields) != 1 {
			return Command{Kind: CmdInvalid}
		}
		return Command{Kind: CmdList}
	case "WAIT":
		return parseWait(fields[1:])
	case "BARRIER":
		if len(fields) != 1 {
			return Command{Kind: CmdInvalid}
		}
		return Command{Kind: CmdBarrier}
	case "HELP":
		return Command{Kind: CmdHelp}
	default:
		return Command{Kind: CmdInvalid}
	}
}

func parseCreate(args []string) Command {
	if len(args) != 3 {
		return Command{Kind: CmdInvalid}
	}
	id, err1 := strconv.ParseUint(args[0], 10, 32)
	rows, err2 := strconv.ParseUint(args[1], 10, 64)
	cols, err3 := strconv.ParseUint(args[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return Command{Kind: CmdInvalid}
	}
	return Command{Kind: CmdCreate, EventID: uint32(id), Rows: rows, Cols: cols}
}

func parseShow(args []string) Command {
	if len(args) != 1 {
		return Command{Kind: CmdInvalid}
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Command{Kind: CmdInvalid}
	}
	return Command{Kind: CmdShow, EventID: uint32(id)}
}

// parseReserve handles "RESERVE <id> [(x,y) (x,y) ...]". The seat list
// keeps its textual order; canonicalization for locking happens in the
// store, not here.
func parseReserve(args []string) Command {
	if len(args) < 2 {
		return Command{Kind: CmdInvalid}
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Command{Kind: CmdInvalid}
	}
	list := strings.Join(args[1:], " ")
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return Command{Kind: CmdInvalid}
	}
	body := strings.TrimSpace(list[1 : len(list)-1])
	if body == "" {
		return Command{Kind: CmdInvalid}
	}
	var seats []model.Seat
	for _, pair := range strings.Fields(body) {
		if !strings.HasPrefix(pair, "(") || !strings.HasSuffix(pair, ")") {
			return Command{Kind: CmdInvalid}
		}
		coords := strings.Split(pair[1:len(pair)-1], ",")
		if len(coords) != 2 {
			return Command{Kind: CmdInvalid}
		}
		row, err1 := strconv.ParseUint(strings.TrimSpace(coords[0]), 10, 64)
		col, err2 := strconv.ParseUint(strings.TrimSpace(coords[1]), 10, 64)
		if err1 != nil || err2 != nil {
			return Command{Kind: CmdInvalid}
		}
		seats = append(seats, model.Seat{Row: row, Col: col})
	}
	if len(seats) > model.MaxReservationSize {
		return Command{Kind: CmdInvalid}
	}
	return Command{Kind: CmdReserve, EventID: uint32(id), Seats: seats}
}

func parseWait(args []string) Command {
	if len(args) < 1 || len(args) > 2 {
		return Command{Kind: CmdInvalid}
	}
	ms, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Command{Kind: CmdInvalid}
	}
	cmd := Command{Kind: CmdWait, Delay: time.Duration(ms) * time.Millisecond}
	if len(args) == 2 {
		target, err := strconv.Atoi(args[1])
		if err != nil || target < 1 {
			return Command{Kind: CmdInvalid}
		}
		cmd.TargetWorker = target
	}
	return cmd
}
