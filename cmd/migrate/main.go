// Command migrate applies or inspects the embedded schema migrations.
//
//	migrate [up|down|status|version]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/repository/migrations"
	"github.com/5w1tchy/library-api/internal/repository/sqlconnect"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sqlconnect.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect db")
	}
	defer db.Close()

	switch cmd {
	case "up":
		err = migrations.Up(ctx, db)
	case "down":
		err = migrations.Down(ctx, db)
	case "status":
		err = migrations.Status(ctx, db)
	case "version":
		var v int64
		if v, err = migrations.Version(ctx, db); err == nil {
			fmt.Println(v)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: migrate [up|down|status|version]\n")
		os.Exit(2)
	}
	if err != nil {
		logging.Error().Err(err).Str("cmd", cmd).Msg("migrate failed")
		os.Exit(1)
	}
	logging.Info().Str("cmd", cmd).Msg("done")
}
