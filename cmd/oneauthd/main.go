// Command oneauthd runs the identity storage service. It wires every store
// over one shared connection pool and serves the JSON API plus health and
// metrics endpoints. Schema management lives in cmd/migrate, never here.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oneauth.org/internal/config"
	"oneauth.org/internal/demographics"
	"oneauth.org/internal/events"
	"oneauth.org/internal/httpapi"
	"oneauth.org/internal/identity"
	"oneauth.org/internal/oauth"
	"oneauth.org/internal/obs"
	"oneauth.org/internal/org"
	"oneauth.org/internal/pg"
	"oneauth.org/internal/recovery"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("missing DSN: set ONEAUTH_PG_DSN")
	}

	db, err := pg.Open(cfg)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	identityStore := identity.NewPGStore(db)
	recoveryStore := recovery.NewPGStore(db)
	oauthStore := oauth.NewPGStore(db)

	api := httpapi.New(httpapi.Deps{
		Identity:      identity.NewService(identityStore),
		IdentityStore: identityStore,
		Recovery:      recovery.NewService(recoveryStore, nil),
		RecoveryStore: recoveryStore,
		OAuth:         oauth.NewService(oauthStore),
		OAuthStore:    oauthStore,
		Orgs:          org.NewPGStore(db),
		Demographics:  demographics.NewPGStore(db),
		Events:        events.NewPGStore(db),
	}, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("starting oneauthd %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
