// Package config loads application configuration from environment
// variables. Every knob has a default so the binaries run with an empty
// environment; a .env file, when present, is loaded by each main before
// Load is called.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration shared by the server binary.
// The types reflect how the values are used: durations for delays,
// ints for sizing, strings for paths and addresses.
type Config struct {
	PipePath         string        // path of the server's public named pipe
	StateAccessDelay time.Duration // artificial delay on every event-table access
	SessionWorkers   int           // fixed size of the session worker pool
	QueueCapacity    int           // bound of the session dispatch queue
	HTTPAddr         string        // listen address of the monitoring gateway; empty disables it
	PublishEnabled   bool          // publish reservation-confirmed events to the broker
	ConsumerEnabled  bool          // run the reservation-confirmed log consumer
}

// Load reads configuration from environment variables, falling back to
// defaults when unset.
func Load() Config {
	return Config{
		PipePath:         getenv("EMS_PIPE_PATH", "/tmp/ems.pipe"),
		StateAccessDelay: time.Duration(atoi(getenv("EMS_STATE_ACCESS_DELAY_US", "0"))) * time.Microsecond,
		SessionWorkers:   atoi(getenv("EMS_SESSION_WORKERS", "8")),
		QueueCapacity:    atoi(getenv("EMS_QUEUE_CAPACITY", "8")),
		HTTPAddr:         os.Getenv("EMS_HTTP_ADDR"),
		PublishEnabled:   getenv("EMS_PUBLISH_CONFIRMED", "false") == "true",
		ConsumerEnabled:  getenv("EMS_CONSUMER_ENABLED", "false") == "true",
	}
}

// Helper functions shared by the config loaders in this package.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
