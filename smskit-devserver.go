package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	authhttp "github.com/KenTanaka/smskit/adapters/http"
	"github.com/KenTanaka/smskit/core"
	pgstore "github.com/KenTanaka/smskit/storage/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type config struct {
	ListenAddr        string
	Issuer            string
	DeviceTrustSecret string
	DBURL             string
	RedisURL          string
	MigrateOnStart    bool
	SeedDemoAccount   bool
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	if err := runServe(cfg); err != nil {
		fatal(err)
	}
}

func loadConfig() (*config, error) {
	c := &config{
		ListenAddr:        envOr("SMSKIT_LISTEN_ADDR", ":8080"),
		Issuer:            strings.TrimRight(strings.TrimSpace(os.Getenv("SMSKIT_ISSUER")), "/"),
		DeviceTrustSecret: strings.TrimSpace(os.Getenv("SMSKIT_DEVICE_TRUST_SECRET")),
		DBURL:             firstEnv("DB_URL", "DATABASE_URL"),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		MigrateOnStart:    envBool("SMSKIT_MIGRATE_ON_START", true),
		SeedDemoAccount:   envBool("SMSKIT_SEED_DEMO_ACCOUNT", true),
	}
	if c.Issuer == "" {
		return nil, fmt.Errorf("SMSKIT_ISSUER is required (e.g. https://shop.example.com or http://localhost:8080)")
	}
	if c.DeviceTrustSecret == "" {
		if !core.IsDevEnvironment() {
			return nil, fmt.Errorf("SMSKIT_DEVICE_TRUST_SECRET is required in production")
		}
		c.DeviceTrustSecret = "dev-insecure-secret"
		stdlog.Printf("[smskit] SMSKIT_DEVICE_TRUST_SECRET not set, using a dev-only secret")
	}
	return c, nil
}

func runServe(cfg *config) error {
	ctx := context.Background()

	svc, err := authhttp.NewService(core.Config{
		Issuer:            cfg.Issuer,
		DeviceTrustSecret: cfg.DeviceTrustSecret,
	})
	if err != nil {
		return err
	}

	if cfg.DBURL != "" {
		pg, err := pgxpool.New(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		store := pgstore.New(pg)
		if cfg.MigrateOnStart {
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
		}
		svc.WithAccountStore(store)
	}

	if cfg.RedisURL != "" {
		ropts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		svc.WithRedis(goredis.NewClient(ropts))
	}

	if cfg.SeedDemoAccount {
		if err := seedDemoAccount(ctx, svc.Core()); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	mux.Handle("/auth/", svc.APIHandler())

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	stdlog.Printf("[smskit] listening on %s", cfg.ListenAddr)
	return server.ListenAndServe()
}

// seedDemoAccount creates one account to exercise the flow against without a
// host application. The id is logged so curl requests can reference it.
func seedDemoAccount(ctx context.Context, svc *core.Service) error {
	id := envOr("SMSKIT_DEMO_ACCOUNT_ID", "demo-"+uuid.NewString())
	if err := svc.SeedAccount(ctx, core.Account{ID: id}); err != nil {
		return fmt.Errorf("seed demo account: %w", err)
	}
	stdlog.Printf("[smskit] demo account id=%s", id)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

func fatal(err error) {
	if err == nil {
		os.Exit(0)
	}
	if errors.Is(err, http.ErrServerClosed) {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
