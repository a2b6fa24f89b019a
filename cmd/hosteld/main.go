package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"hostel-backend/config"
	"hostel-backend/internal/api"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/booking"
	"hostel-backend/internal/db"
	"hostel-backend/internal/jobs"
	"hostel-backend/internal/mw"
	"hostel-backend/internal/notification"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/records"
	"hostel-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "hostel ", log.LstdFlags)

	configPath := pflag.String("config", envOr("CONFIG_PATH", "./config/config.yaml"), "path to the YAML configuration file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", *configPath, err)
	}
	logger.Printf("configuration loaded from %s", *configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewAuthenticator(tokens, appStore)

	hub := realtime.NewHub()
	if cfg.Realtime.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Realtime.RedisAddr})
		defer client.Close()
		go realtime.NewRedisBridge(client, cfg.Realtime.RedisChannel, hub).Run(ctx)
	}

	// Push stays off without VAPID keys; the notifier must then be a nil
	// interface, not a nil *WorkerPool.
	var (
		webpushOptions *webpush.Options
		bookingPush    booking.Notifier
		recordsPush    records.Notifier
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		bookingPush, recordsPush = pool, pool
		logger.Printf("web push enabled with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; web push disabled")
	}

	bookings := booking.NewService(appStore, hub, bookingPush, cfg.Booking)
	recs := records.New(gormDB, hub, records.Options{
		Location: cfg.Server.Location(),
		Curfew:   cfg.Attendance.Curfew,
		Push:     recordsPush,
	})
	chats := realtime.NewChatLog(gormDB)

	runner, err := jobs.New(cfg.Jobs, recs.GatePasses)
	if err != nil {
		logger.Fatalf("failed to schedule jobs: %v", err)
	}
	runner.Start()

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go sweepLimiter(ctx, limiter)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Store:    appStore,
		Tokens:   tokens,
		Auth:     authenticator,
		Bookings: bookings,
		Records:  recs,
		Chats:    chats,
		Hub:      hub,
		Realtime: realtime.NewServer(hub, authenticator, chats, cfg.Server.AllowedOrigins, cfg.Realtime.OutboxSize),
		WebPush:  webpushOptions,
		Limiter:  limiter,
	})

	ln, port, err := listen(cfg.Server.Port, cfg.Server.PortAttempts)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	server := &http.Server{Handler: router}

	go func() {
		logger.Printf("HTTP server starting on port %d", port)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server Serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	// Hijacked websocket connections outlive Shutdown.
	if n := hub.Close(); n > 0 {
		logger.Printf("closed %d websocket clients", n)
	}
	if err := runner.Shutdown(); err != nil {
		logger.Printf("scheduler shutdown: %v", err)
	}
	cancel()

	logger.Println("Server gracefully stopped")
}

// listen binds the first free port in [port, port+attempts).
func listen(port, attempts int) (net.Listener, int, error) {
	var lastErr error
	for i := 0; i < max(attempts, 1); i++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port+i))
		if err == nil {
			return ln, port + i, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, 0, err
		}
		log.Printf("port %d in use, trying %d", port+i, port+i+1)
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in %d..%d: %w", port, port+attempts-1, lastErr)
}

func sweepLimiter(ctx context.Context, limiter *mw.IPRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(10 * time.Minute); n > 0 {
				log.Printf("rate limiter: forgot %d idle clients", n)
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
