package batch

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/event-management-system/internal/engine"
	"github.com/iliyamo/event-management-system/internal/model"
)

// Runner executes every ".jobs" file under a directory, producing a
// ".out" file next to each. Up to MaxJobs files run concurrently, each
// against its own private engine so jobs never observe one another's
// events; within a job, Workers command goroutines share one parser and
// run against the job's engine in parallel.
type Runner struct {
	Workers          int
	MaxJobs          int
	StateAccessDelay time.Duration
}

// Run processes dir and returns the first job-level failure, if any.
// Command-level failures (bad event id, seat collisions, invalid lines)
// are reported on stderr and never fail the job.
func (r *Runner) Run(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	maxJobs := r.MaxJobs
	if maxJobs < 1 {
		maxJobs = 1
	}
	sem := make(chan struct{}, maxJobs)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jobs") {
			continue
		}
		inPath := filepath.Join(dir, entry.Name())
		outPath := strings.TrimSuffix(inPath, ".jobs") + ".out"
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := r.runJob(inPath, outPath); err != nil {
				log.Printf("batch: job %s failed: %v", inPath, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// runJob drives one job file to completion, restarting the worker wave
// after every BARRIER.
func (r *Runner) runJob(inPath, outPath string) error {
	eng := engine.New()
	if err := eng.Init(engine.Config{StateAccessDelay: r.StateAccessDelay}); err != nil {
		return err
	}
	defer eng.Terminate()

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	job := &jobState{
		eng:          eng,
		parser:       NewParser(in),
		out:          out,
		pendingWaits: make(map[int]time.Duration),
	}
	for job.runWave(workers) == waveBarrier {
		// BARRIER: every worker has stopped; restart the wave from the
		// line after the barrier.
	}
	return nil
}

// waveOutcome reports why a wave of workers ended.
type waveOutcome int

const (
	waveDone    waveOutcome = iota // job file exhausted
	waveBarrier                    // a worker hit BARRIER
)

// workerOutcome is the explicit result of one worker's loop, rather than
// shared flags mutated across goroutines.
type workerOutcome int

const (
	workerEndOfJob workerOutcome = iota
	workerBarrier                // this worker parsed the BARRIER
	workerStopped                // stopped because another worker did
)

// jobState is everything one job's workers share: the engine, the single
// parser (serialized by mu), the output file (serialized by outMu), the
// barrier latch and the per-worker targeted WAIT delays.
type jobState struct {
	eng    *engine.Engine
	mu     sync.Mutex
	parser *Parser
	outMu  sync.Mutex
	out    io.Writer

	barrier atomic.Bool

	waitMu       sync.Mutex
	pendingWaits map[int]time.Duration
}

func (j *jobState) runWave(workers int) waveOutcome {
	j.barrier.Store(false)
	outcomes := make(chan workerOutcome, workers)
	for i := 1; i <= workers; i++ {
		go func(id int) { outcomes <- j.runWorker(id) }(i)
	}
	result := waveDone
	for i := 0; i < workers; i++ {
		if <-outcomes == workerBarrier {
			result = waveBarrier
		}
	}
	return result
}

// runWorker executes commands until the job ends or a barrier stops the
// wave. Each iteration first serves any WAIT another worker targeted at
// this one, then claims the next line under the parser lock.
func (j *jobState) runWorker(id int) workerOutcome {
	for {
		j.serveTargetedWait(id)

		j.mu.Lock()
		if j.barrier.Load() {
			j.mu.Unlock()
			return workerStopped
		}
		cmd, ok := j.parser.Next()
		if !ok {
			j.mu.Unlock()
			return workerEndOfJob
		}
		if cmd.Kind == CmdBarrier {
			j.barrier.Store(true)
			j.mu.Unlock()
			return workerBarrier
		}
		j.mu.Unlock()

		j.execute(id, cmd)
	}
}

// serveTargetedWait sleeps out a delay another worker latched for this
// one. A later targeted WAIT overwrites an unserved one; the latch is
// cleared before sleeping.
func (j *jobState) serveTargetedWait(id int) {
	j.waitMu.Lock()
	d := j.pendingWaits[id]
	delete(j.pendingWaits, id)
	j.waitMu.Unlock()
	if d > 0 {
		fmt.Fprintln(os.Stderr, "Waiting...")
		time.Sleep(d)
	}
}

func (j *jobState) execute(id int, cmd Command) {
	switch cmd.Kind {
	case CmdCreate:
		if err := j.eng.Create(cmd.EventID, cmd.Rows, cmd.Cols); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to create event")
		}
	case CmdReserve:
		if err := j.eng.Reserve(cmd.EventID, cmd.Seats); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to reserve seats")
		}
	case CmdShow:
		snap, err := j.eng.Show(cmd.EventID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to show event")
			return
		}
		j.outMu.Lock()
		defer j.outMu.Unlock()
		if err := snap.WriteGrid(j.out); err != nil {
			log.Printf("batch: writing show output: %v", err)
		}
	case CmdList:
		ids, err := j.eng.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to list events")
			return
		}
		j.outMu.Lock()
		defer j.outMu.Unlock()
		if err := model.WriteEventList(j.out, ids); err != nil {
			log.Printf("batch: writing list output: %v", err)
		}
	case CmdWait:
		j.executeWait(id, cmd)
	case CmdHelp:
		fmt.Fprint(os.Stderr, HelpText)
	case CmdInvalid:
		fmt.Fprintln(os.Stderr, "Invalid command. See HELP for usage")
	case CmdEmpty:
		// nothing to do
	}
}

// executeWait handles WAIT. Untargeted, or targeted at the issuing
// worker, it sleeps immediately; targeted elsewhere it latches the delay
// for that worker to serve before its next command.
func (j *jobState) executeWait(id int, cmd Command) {
	if cmd.TargetWorker == 0 || cmd.TargetWorker == id {
		fmt.Fprintln(os.Stderr, "Waiting...")
		time.Sleep(cmd.Delay)
		return
	}
	j.waitMu.Lock()
	j.pendingWaits[cmd.TargetWorker] = cmd.Delay
	j.waitMu.Unlock()
}
