package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-management-system/internal/config"
	"github.com/iliyamo/event-management-system/internal/engine"
	"github.com/iliyamo/event-management-system/internal/handler"
	"github.com/iliyamo/event-management-system/internal/middleware"
	"github.com/iliyamo/event-management-system/internal/model"
	"github.com/iliyamo/event-management-system/internal/queue"
	"github.com/iliyamo/event-management-system/internal/router"
	"github.com/iliyamo/event-management-system/internal/server"
	queue_publisher "github.com/iliyamo/event-management-system/internal/service"
)

// Usage: server [pipe_path] [state_access_delay_us]
//
// Positional arguments override the environment so the server can be
// launched the classic way; everything else comes from env / .env.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	args := os.Args[1:]
	if len(args) > 2 {
		log.Fatalf("usage: %s [pipe_path] [state_access_delay_us]", os.Args[0])
	}
	if len(args) >= 1 {
		cfg.PipePath = args[0]
	}
	if len(args) == 2 {
		us, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatalf("invalid delay value: %q", args[1])
		}
		cfg.StateAccessDelay = time.Duration(us) * time.Microsecond
	}

	engCfg := engine.Config{StateAccessDelay: cfg.StateAccessDelay}
	if cfg.PublishEnabled {
		engCfg.OnReservation = publishReservation
	}
	eng := engine.New()
	if err := eng.Init(engCfg); err != nil {
		log.Fatalf("initializing engine: %v", err)
	}

	if cfg.ConsumerEnabled {
		go func() {
			if err := queue.StartReservationConsumer(); err != nil {
				log.Printf("reservation consumer stopped: %v", err)
			}
		}()
	}

	if cfg.HTTPAddr != "" {
		go startGateway(cfg, eng)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(eng, cfg.PipePath, cfg.QueueCapacity, cfg.SessionWorkers)
	log.Printf("serving on %s (workers=%d, queue=%d, delay=%s)",
		cfg.PipePath, cfg.SessionWorkers, cfg.QueueCapacity, cfg.StateAccessDelay)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	if err := eng.Terminate(); err != nil {
		log.Printf("terminating engine: %v", err)
	}
}

// startGateway runs the read-only HTTP monitoring surface. It shares the
// live engine with the pipe server; losing it never affects sessions.
func startGateway(cfg config.Config, eng *engine.Engine) {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), config.NewRedisClient())
	router.RegisterRoutes(e, &handler.MonitorHandler{Engine: eng}, cache)

	log.Printf("monitoring gateway listening on %s", cfg.HTTPAddr)
	if err := e.Start(cfg.HTTPAddr); err != nil {
		log.Printf("monitoring gateway stopped: %v", err)
	}
}

// publishReservation forwards a committed reservation to the broker as a
// best-effort audit event. It runs off the reserving goroutine so broker
// trouble never slows a client down.
func publishReservation(eventID, reservationID uint32, seats []model.Seat) {
	evt := queue.ReservationConfirmedEvent{
		EventID:       eventID,
		ReservationID: reservationID,
		Seats:         seats,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationConfirmed(ctx, evt)
	}()
}
