package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"geo-dispatch-service/internal/adapters/cache"
	"geo-dispatch-service/internal/adapters/geocode"
	"geo-dispatch-service/internal/adapters/repositories"
	"geo-dispatch-service/internal/api"
	"geo-dispatch-service/internal/config"
	"geo-dispatch-service/internal/platform/db"
	"geo-dispatch-service/internal/ports"
	"geo-dispatch-service/internal/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("level=fatal err=%v", err)
	}
}

func run() error {
	// Local development reads overrides from .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Geocode.Email == "" {
		log.Printf("level=warn msg=\"GEOCODE_EMAIL is not set, the public provider may reject anonymous clients\"")
	}

	ctx := context.Background()

	var (
		sqlDB    *sql.DB
		hubRepo  ports.HubRepository
		store    ports.GeocodeStore
		seedHubs = repositories.SeedHubsFromJSON
	)
	if cfg.Database.URL != "" {
		sqlDB, err = db.OpenPostgres(cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := repositories.InitPostgresSchema(ctx, sqlDB); err != nil {
			return err
		}
		hubRepo = repositories.NewPostgresHubRepository(sqlDB)
		store = cache.NewPostgresGeocodeStore(sqlDB)
		seedHubs = repositories.SeedHubsPostgres
	} else {
		sqlDB, err = db.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		if err := repositories.InitSQLiteSchema(ctx, sqlDB); err != nil {
			return err
		}
		hubRepo = repositories.NewSQLiteHubRepository(sqlDB)
		store = cache.NewSQLiteGeocodeStore(sqlDB)
	}
	defer sqlDB.Close()

	if err := seedHubs(ctx, sqlDB, cfg.Database.HubSeedPath); err != nil {
		return err
	}

	var geoCache ports.GeocodeCache
	if cfg.Database.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Database.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("verify redis connection: %w", err)
		}
		defer rdb.Close()
		geoCache = cache.NewRedisGeocodeCache(rdb, cfg.Geocode.NegativeTTL())
		log.Printf("level=info msg=\"geocode cache backed by redis\" addr=%s", cfg.Database.RedisAddr)
	} else {
		geoCache = cache.NewMemoryGeocodeCache(cfg.Geocode.NegativeTTL())
	}

	userAgent := cfg.Geocode.UserAgent
	if cfg.Geocode.Email != "" {
		userAgent = fmt.Sprintf("%s (%s)", userAgent, cfg.Geocode.Email)
	}
	geocoder := geocode.NewNominatimClient(
		&http.Client{},
		geocode.NewRateGate(cfg.Geocode.MinInterval()),
		geocode.ClientConfig{
			BaseURL:        cfg.Geocode.BaseURL,
			Email:          cfg.Geocode.Email,
			UserAgent:      userAgent,
			AcceptLanguage: cfg.Geocode.AcceptLanguage,
			CountryCode:    cfg.Geocode.CountryCode,
			RetryBudget:    cfg.Geocode.RetryBudget,
			ForwardBackoff: cfg.Geocode.ForwardBackoff(),
			ReverseBackoff: cfg.Geocode.ReverseBackoff(),
		},
	)

	resolver := services.NewResolver(geocoder, geoCache, store, services.ResolverConfig{
		MaxCandidates:     cfg.Geocode.MaxCandidates,
		PerRequestTimeout: cfg.Geocode.PerRequestTimeout(),
		OriginTimeout:     cfg.Geocode.OriginTimeout(),
		DefaultCity:       cfg.Geocode.DefaultCity,
		Country:           cfg.Geocode.Country,
	})
	planner := services.NewRoutePlanner(resolver, hubRepo, services.PlannerConfig{
		MaxStopsToGeocode: cfg.Geocode.MaxStopsToGeocode,
		Optimizer: services.OptimizerConfig{
			TwoOptPasses: cfg.Optimizer.TwoOptPasses,
			Epsilon:      cfg.Optimizer.Epsilon,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(resolver, planner, hubRepo),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("level=info msg=\"listening\" addr=%s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("level=info msg=\"shutting down\" signal=%s", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
