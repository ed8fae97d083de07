// cmd/web/main.go
//
// ProductPraat storefront – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Connect to Vault when VAULT_ADDR is set, then load and validate
//     conf/global.yaml with env overrides and Vault references resolved.
//
//  3. Start the daily rotating logger (tees to console in a TTY).
//
//  4. Open MySQL; with -migrate apply the schema, with -create-admin add an
//     admin account (password from PRODUCTPRAAT_ADMIN_PASSWORD) and exit.
//
//  5. Start the catalog load in the background.  Until it finishes the
//     storefront answers 503; shutdown cancels an in-flight load.
//
//  6. Build the router (aliases, GeoIP, Bol.com client, sessions) and serve
//     until SIGINT or SIGTERM.  SIGHUP re-reads the configuration and
//     reloads the catalog and the alias table.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/affiliate"
	"github.com/yanizio/productpraat/internal/auth"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/config"
	"github.com/yanizio/productpraat/internal/database"
	"github.com/yanizio/productpraat/internal/filter"
	"github.com/yanizio/productpraat/internal/logger"
	"github.com/yanizio/productpraat/internal/requestinfo"
	"github.com/yanizio/productpraat/internal/routing"
	"github.com/yanizio/productpraat/internal/server"
	"github.com/yanizio/productpraat/internal/session"
	"github.com/yanizio/productpraat/internal/store"
	"github.com/yanizio/productpraat/internal/vault"
	"github.com/yanizio/productpraat/internal/web"
)

const (
	serverEnvPath = "/usr/local/etc/productpraat/global.env"
	aliasTTL      = 10 * time.Minute
	sessionPurge  = time.Hour
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	migrate := flag.Bool("migrate", false, "apply the database schema and exit")
	createAdmin := flag.String("create-admin", "", "create an admin account for this email and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Secrets and configuration ──────────────────────────────────
	//
	vc, err := vault.FromEnv(ctx)
	if err != nil {
		log.Fatalf("vault: %v", err)
	}
	var secrets config.SecretResolver
	if vc != nil {
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 2.  Database ───────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, cfg.Database.DSN, cfg.Database.Password)
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()
	logOut.Infow("database online")

	st := store.New(db)
	sessions := auth.NewSessions(db, cfg.Session.TTL)

	if *migrate {
		if err := st.Migrate(ctx); err != nil {
			logOut.Fatalf("migrate: %v", err)
		}
		logOut.Infow("schema applied")
		return
	}
	if *createAdmin != "" {
		u, err := sessions.CreateUser(ctx, *createAdmin, os.Getenv("PRODUCTPRAAT_ADMIN_PASSWORD"))
		if err != nil {
			logOut.Fatalf("create admin: %v", err)
		}
		logOut.Infow("admin created", "id", u.ID, "email", u.Email)
		return
	}

	//
	// ── 3.  Catalog (background load, cancelled on shutdown) ───────────
	//
	cat := catalog.New(st)
	go func() {
		if err := cat.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logOut.Warnw("initial catalog load failed", "err", err)
		}
	}()
	go purgeSessions(ctx, sessions)

	//
	// ── 4.  Router ─────────────────────────────────────────────────────
	//
	enricher, err := requestinfo.NewEnricher(cfg.Geo.CityDB)
	if err != nil {
		logOut.Warnw("geoip disabled", "err", err)
		enricher, _ = requestinfo.NewEnricher("")
	}
	defer enricher.Close()

	bol := affiliate.New(affiliate.Config{
		ClientID:     cfg.Bol.ClientID,
		ClientSecret: cfg.Bol.ClientSecret,
		SiteCode:     cfg.Bol.SiteCode,
		Country:      cfg.Bol.Country,
	})
	if !bol.Configured() {
		logOut.Infow("bol.com credentials missing; partner import disabled")
	}

	aliases := routing.NewAliasCache(db.DB, aliasTTL)
	go reloadOnHangup(ctx, cat, aliases)

	handler := web.NewRouter(web.Deps{
		Catalog:    cat,
		Store:      st,
		Sessions:   sessions,
		Cookie:     session.Cookie{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL},
		CSRF:       auth.NewCSRF(cfg.CSRF.Key, cfg.Session.TTL),
		Affiliate:  bol,
		Searcher:   filter.NewSearcher(512),
		Aliases:    aliases,
		Enricher:   enricher,
		BaseURL:    cfg.HTTP.BaseURL,
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
	})

	//
	// ── 5.  Serve until signalled ──────────────────────────────────────
	//
	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, handler)); err != nil {
		logOut.Errorw("http server", "err", err)
	}
	logOut.Infow("bye")
}

// purgeSessions drops expired sessions once an hour.
func purgeSessions(ctx context.Context, s *auth.Sessions) {
	t := time.NewTicker(sessionPurge)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Purge(ctx)
			if err != nil {
				zap.L().Warn("session purge failed", zap.Error(err))
				continue
			}
			zap.L().Debug("sessions purged", zap.Int64("count", n))
		}
	}
}

// reloadOnHangup re-reads config and refreshes cached data on SIGHUP.
// Listener and database settings only change on restart.
func reloadOnHangup(ctx context.Context, cat *catalog.Catalog, aliases *routing.AliasCache) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := config.Reload(ctx); err != nil {
				zap.L().Error("config reload failed", zap.Error(err))
			}
			if err := cat.Load(ctx); err != nil {
				zap.L().Warn("catalog reload failed", zap.Error(err))
			}
			if err := aliases.Load(ctx); err != nil {
				zap.L().Warn("alias reload failed", zap.Error(err))
			}
			zap.L().Info("reloaded on SIGHUP")
		}
	}
}
