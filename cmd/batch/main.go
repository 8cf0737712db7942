package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-management-system/internal/batch"
)

// Usage: batch <jobs_dir> <max_jobs> <workers> [state_access_delay_ms]
//
// Every "<name>.jobs" file under jobs_dir is executed against its own
// fresh engine, producing "<name>.out" beside it. max_jobs bounds how
// many files run at once; workers is the number of command goroutines
// per job.
func main() {
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) < 3 || len(args) > 4 {
		log.Fatalf("usage: %s <jobs_dir> <max_jobs> <workers> [state_access_delay_ms]", os.Args[0])
	}

	maxJobs, err := strconv.Atoi(args[1])
	if err != nil || maxJobs <= 0 {
		log.Fatalf("invalid max_jobs value: %q", args[1])
	}
	workers, err := strconv.Atoi(args[2])
	if err != nil || workers <= 0 {
		log.Fatalf("invalid workers value: %q", args[2])
	}
	var delay time.Duration
	if len(args) == 4 {
		ms, err := strconv.ParseUint(args[3], 10, 32)
		if err != nil {
			log.Fatalf("invalid delay value: %q", args[3])
		}
		delay = time.Duration(ms) * time.Millisecond
	}

	r := &batch.Runner{Workers: workers, MaxJobs: maxJobs, StateAccessDelay: delay}
	if err := r.Run(args[0]); err != nil {
		log.Fatalf("batch run failed: %v", err)
	}
}
