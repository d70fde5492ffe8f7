package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cqs/queue-service/internal/config"
	"cqs/queue-service/internal/httpapi"
	"cqs/queue-service/internal/hub"
	"cqs/queue-service/internal/pubsub"
	"cqs/queue-service/internal/relay"
	"cqs/queue-service/internal/store/postgres"
	"cqs/queue-service/internal/telemetry"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup("queue-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	queueStore := postgres.NewStore(pool)
	broadcastHub := hub.New()
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	publishers := []relay.Publisher{broadcastHub}
	redisPublisher := pubsub.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisPublisher != nil {
		defer redisPublisher.Close()
		publishers = append(publishers, redisPublisher)
	}

	eventRelay := relay.New(queueStore, publishers, relay.Config{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		Retention:    cfg.OutboxRetention,
	})
	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	go eventRelay.Run(relayCtx)

	handler := httpapi.NewHandler(queueStore, queueStore)
	mux := http.NewServeMux()
	mux.Handle("/", handler.Routes())

	sockjsHandler := sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := hub.NewClient(uuid.NewString(), 16)
		broadcastHub.Register(client)
		defer broadcastHub.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				broadcastHub.Unsubscribe(client, parsed.Scope)
			} else {
				broadcastHub.Subscribe(client, parsed.Scope)
			}
		}
	})
	mux.Handle("/realtime/", sockjsHandler)

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "queue-service")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("queue-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelRelay()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
