// Command migrate manages the database schema. Schema changes never happen
// implicitly at service startup; every create, drop, and seed goes through
// this tool.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"oneauth.org/internal/config"
	"oneauth.org/internal/migrate"
)

func main() {
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		dsn            = flag.String("dsn", cfg.DatabaseURL, "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", cfg.MigrationsDir, "Path to SQL migrations")
		seedsPath      = flag.String("seeds", cfg.SeedsDir, "Path to SQL seeds")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or ONEAUTH_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|reset|seed|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath)

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "reset":
		if os.Getenv("ONEAUTH_ALLOW_RESET") != "1" {
			log.Fatal("reset is destructive: set ONEAUTH_ALLOW_RESET=1 to confirm")
		}
		err = mgr.Reset(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var applied, pending []string
		applied, pending, err = mgr.Status(ctx)
		if err == nil {
			for _, name := range applied {
				fmt.Println("applied", name)
			}
			for _, name := range pending {
				fmt.Println("pending", name)
			}
		}
	default:
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
