package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/invite-sh/server/internal/api"
	"github.com/invite-sh/server/internal/config"
	"github.com/invite-sh/server/internal/extract"
	"github.com/invite-sh/server/internal/health"
	"github.com/invite-sh/server/internal/platform/logger"
	"github.com/invite-sh/server/internal/ratelimit"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", 0, "Override INVITE_HTTP_PORT")
	flag.Parse()

	log := logger.New("invite-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != 0 {
		cfg.HTTPPort = *port
	}

	// A misconfigured service still serves: every invite request answers
	// with the generic configuration error until the environment is fixed.
	cfgErr := cfg.Validate()
	if cfgErr != nil {
		log.Error().Err(cfgErr).Msg("Required configuration missing; invite requests will be rejected")
	}

	ctx := context.Background()
	deps := api.Deps{Config: cfg, ConfigErr: cfgErr}

	if cfgErr == nil {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		counter := ratelimit.NewRedisCounter(rdb)
		deps.Limiter = ratelimit.NewLimiter(counter, cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitFailOpen)
		deps.Extractor = extract.NewExtractor(extract.NewAzureClient(cfg), cfg.ExtractTimeout)

		storeChecker := health.NewPingChecker("counter-store", counter, log, 2*time.Second)
		go storeChecker.Start(ctx, 30*time.Second)
		serviceHealth := health.NewServiceHealthChecker(log, storeChecker)
		go serviceHealth.Start(ctx, 30*time.Second)
		deps.IsHealthy = serviceHealth.IsHealthy
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Int("rate_limit_max", cfg.RateLimitMax).
		Dur("rate_limit_window", cfg.RateLimitWindow).
		Msg("Invite service starting")

	server := &http.Server{
		Addr:        cfg.GetHTTPAddr(),
		Handler:     api.NewRouter(deps),
		ReadTimeout: 15 * time.Second,
		// Extraction is the long pole; leave headroom past its timeout.
		WriteTimeout: cfg.ExtractTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
