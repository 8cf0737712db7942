package model

import (
	"fmt"
	"io"
	"strings"
)

// Snapshot is a consistent copy of one event's seat grid, taken at a point
// in time. Seats holds rows*cols values in row-major order; 0 marks a free
// seat, any other value is the reservation id that claimed it.
type Snapshot struct {
	Rows  uint64
	Cols  uint64
	Seats []uint32
}

// WriteGrid renders the snapshot as rows of space-separated seat values,
// one line per row, matching the output format of the SHOW command.
func (s Snapshot) WriteGrid(w io.Writer) error {
	var b strings.Builder
	for r := uint64(0); r < s.Rows; r++ {
		for c := uint64(0); c < s.Cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", s.Seats[r*s.Cols+c])
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteEventList renders a LIST result: one "Event: <id>" line per event
// in creation order, or a single "No events" line when none exist.
func WriteEventList(w io.Writer, ids []uint32) error {
	if len(ids) == 0 {
		_, err := fmt.Fprintln(w, "No events")
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "Event: %d\n", id); err != nil {
			return err
		}
	}
	return nil
}
