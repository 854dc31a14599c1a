package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/aeroshieldgt/enviro-api/internal/alerts"
	"github.com/aeroshieldgt/enviro-api/internal/api"
	"github.com/aeroshieldgt/enviro-api/internal/cache"
	"github.com/aeroshieldgt/enviro-api/internal/config"
	"github.com/aeroshieldgt/enviro-api/internal/data"
	"github.com/aeroshieldgt/enviro-api/internal/envdata"
	"github.com/aeroshieldgt/enviro-api/internal/metrics"
	"github.com/aeroshieldgt/enviro-api/internal/middleware"
	"github.com/aeroshieldgt/enviro-api/internal/notify"
	"github.com/aeroshieldgt/enviro-api/internal/ratelimit"
	"github.com/aeroshieldgt/enviro-api/internal/stream"
	"github.com/aeroshieldgt/enviro-api/internal/tokens"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "Path to YAML config")
	flag.Parse()

	// 1. Configuration
	_ = godotenv.Load() // .env is optional outside dev
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-do-not-use-in-prod"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Postgres
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("DB open error: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatalf("DB ping error: %v", err)
	}
	defer db.Close()

	// 3. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// 4. NATS JetStream
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		log.Fatalf("NATS connect error: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("JetStream context error: %v", err)
	}
	// The push gateway consumes this stream; create it if this is a
	// fresh deployment.
	if _, err := js.StreamInfo(cfg.NATS.Stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     cfg.NATS.Stream,
			Subjects: []string{cfg.NATS.SubjectPrefix + ".>"},
			MaxAge:   24 * time.Hour,
		})
		if err != nil {
			log.Fatalf("JetStream stream setup failed: %v", err)
		}
	}

	// 5. Upstream providers
	httpClient := envdata.NewHTTPClient(cfg.Upstreams.Timeout)
	provider := envdata.NewProvider(
		cfg.Location,
		envdata.NewUSGSClient(httpClient, cfg.Upstreams.USGSFeedURL, envdata.GuatemalaBBox),
		envdata.NewEONETClient(httpClient, cfg.Upstreams.EONETURL, envdata.GuatemalaBBox, cfg.Upstreams.EONETDays),
		envdata.NewMeteomaticsClient(httpClient, cfg.Upstreams.MeteomaticsURL, cfg.Upstreams.MeteomaticsUser, cfg.Upstreams.MeteomaticsPass),
		envdata.NewOpenAQClient(httpClient, cfg.Upstreams.OpenAQURL, envdata.GuatemalaBBox),
	)
	provider.SetWindSource(envdata.NewPOWERClient(httpClient, cfg.Upstreams.PowerURL, envdata.GuatemalaBBox, 3))

	// 6. Alert pipeline
	thresholds := config.NewThresholdStore(*configPath, cfg.Thresholds)
	thresholds.StartWatcher(ctx)

	window := alerts.NewWindow(cfg.Pipeline.DedupMaxKeys, cfg.Pipeline.DedupTTL)
	collector := metrics.NewCollector(window.Len)
	provider.OnSourceStatus(collector.SetUpstreamUp)
	hub := stream.NewHub()

	repo := &data.AlertModel{DB: db}
	notifier := notify.NewJetStreamNotifier(js, cfg.NATS.SubjectPrefix)
	dispatcher := alerts.NewDispatcher(repo, notifier, cfg.Pipeline.Topic, cfg.Pipeline.DispatchTimeout)
	pipeline := alerts.NewPipeline(provider, dispatcher, window, thresholds.Current, collector, hub)

	// 7. HTTP surface
	tokenMgr := tokens.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	jwtAuth := middleware.NewJWTAuth(tokenMgr)
	limiter := ratelimit.NewLimiter(rdb, cfg.RateLimit.Salt)
	rlMiddleware := middleware.NewRateLimitMiddleware(limiter, ratelimit.LimitConfig{
		Rate:   cfg.RateLimit.Rate,
		Window: cfg.RateLimit.Window,
	})

	alertHandler := &api.AlertHandler{
		Pipeline:   pipeline,
		Dispatcher: dispatcher,
		Repo:       repo,
		Location:   cfg.Location.Name,
		Latitude:   cfg.Location.Latitude,
		Longitude:  cfg.Location.Longitude,
	}
	envHandler := &api.EnvHandler{
		Provider:   provider,
		Cache:      cache.New(rdb, cfg.Cache.TTL),
		Thresholds: thresholds.Current,
		Evaluate:   pipeline.Evaluate,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS)

	r.Get("/health", envHandler.Healthz)
	r.Get("/healthz", envHandler.Healthz)
	r.Get("/metrics", collector.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rlMiddleware.Middleware)

		r.Get("/dashboard/summary", envHandler.DashboardSummary)
		r.Get("/environment/full", envHandler.EnvironmentFull)
		r.Get("/weather/current", envHandler.WeatherCurrent)
		r.Get("/weather/forecast", envHandler.WeatherForecast)
		r.Get("/weather/cities", envHandler.WeatherCities)
		r.Get("/cities/pollution", envHandler.CitiesPollution)
		r.Get("/pollutants/{pollutant}", envHandler.Pollutant)

		r.Get("/alerts/history", alertHandler.History)
		r.Get("/alerts/stats", alertHandler.Stats)
		r.Get("/alerts/stream", hub.ServeWS)

		// Write endpoints need an operator token.
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/alerts/check", alertHandler.CheckAlerts)
			r.Post("/alerts/send-test", alertHandler.SendTest)
		})
	})

	// 8. Background cycle ticker
	if cfg.Pipeline.Interval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Pipeline.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := pipeline.RunCycle(ctx); err != nil {
						log.Printf("Scheduled cycle failed: %v", err)
					}
				}
			}
		}()
	}

	// 9. Serve with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("Environmental alert API listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
