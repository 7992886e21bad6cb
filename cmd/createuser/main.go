// Command createuser adds an API account able to obtain tokens.
//
//	createuser -username alice            # password read from CREATEUSER_PASSWORD or stdin
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/auth"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/library-api/internal/security/password"
)

func main() {
	username := flag.String("username", "", "account name (required)")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	name := strings.TrimSpace(*username)
	if name == "" || len(name) > 150 {
		fmt.Fprintln(os.Stderr, "createuser: -username is required (max 150 chars)")
		os.Exit(2)
	}

	pwd := os.Getenv("CREATEUSER_PASSWORD")
	if pwd == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logging.Fatal().Err(err).Msg("read password")
		}
		pwd = line
	}
	pwd, strength, err := password.Check(pwd, name)
	if err != nil {
		logging.Fatal().Err(err).Msg("password rejected")
	}
	if strength.Hint != "" {
		logging.Warn().Int("score", strength.Score).Msg(strength.Hint)
	}

	hasher := password.NewHasher(password.Params{
		Memory:      cfg.Argon2Memory,
		Iterations:  cfg.Argon2Iter,
		Parallelism: cfg.Argon2Par,
	})
	hash, err := hasher.Hash(pwd)
	if err != nil {
		logging.Fatal().Err(err).Msg("hash password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := sqlconnect.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect db")
	}
	defer db.Close()

	u, err := auth.NewSQLStore(db).Create(ctx, name, hash)
	if errors.Is(err, auth.ErrUsernameTaken) {
		fmt.Fprintf(os.Stderr, "createuser: username %q already exists\n", name)
		os.Exit(1)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("create user")
	}
	logging.Info().Int64("id", u.ID).Str("username", u.Username).Msg("user created")
}
