// Command loaddata fills the catalog with a generated or imported dataset
// and can export the current catalog to a file or S3.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/5w1tchy/library-api/internal/cache"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/repository/redisconnect"
	"github.com/5w1tchy/library-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/library-api/internal/seed"
	s3store "github.com/5w1tchy/library-api/internal/storage/s3"
	"github.com/5w1tchy/library-api/internal/store/authors"
	"github.com/5w1tchy/library-api/internal/store/books"
)

const presignTTL = 15 * time.Minute

func main() {
	var (
		nAuthors = flag.Int("authors", seed.DefaultAuthors, "number of random authors")
		nBooks   = flag.Int("books", seed.DefaultBooks, "number of random books")
		seedVal  = flag.Uint64("seed", seed.DefaultSeed, "random seed")
		file     = flag.String("file", "", "load this dataset instead of generating one (path or s3://bucket/key)")
		export   = flag.String("export", "", "write the catalog to this path or s3://bucket/key and skip loading")
	)
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *nAuthors, *nBooks, *seedVal, *file, *export); err != nil {
		logging.Error().Err(err).Msg("loaddata failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, nAuthors, nBooks int, seedVal uint64, file, export string) error {
	db, err := sqlconnect.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()

	if export != "" {
		ds, err := seed.Export(ctx, db)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := seed.Encode(&buf, ds); err != nil {
			return err
		}
		if err := write(ctx, cfg, export, buf.Bytes()); err != nil {
			return err
		}
		logging.Info().Int("authors", len(ds.Authors)).Int("books", len(ds.Books)).Str("to", export).Msg("catalog exported")
		return nil
	}

	var ds seed.Dataset
	if file != "" {
		raw, err := read(ctx, cfg, file)
		if err != nil {
			return err
		}
		if ds, err = seed.Decode(bytes.NewReader(raw)); err != nil {
			return err
		}
	} else {
		logging.Info().Int("authors", nAuthors).Int("books", nBooks).Uint64("seed", seedVal).Msg("generating dataset")
		ds = seed.Random(seedVal, nAuthors, nBooks, time.Now())
	}

	loader := &seed.Loader{
		Authors: authors.New(db),
		Books:   books.New(db),
		Counts:  seed.SQLCounter{DB: db},
	}
	sum, err := loader.Load(ctx, ds)
	if err != nil {
		return err
	}

	// cached statistics predate the load
	if rdb, err := redisconnect.Connect(ctx, cfg.RedisURL); err != nil {
		logging.Warn().Err(err).Msg("redis unavailable; statistics cache not invalidated")
	} else if rdb != nil {
		defer rdb.Close()
		if err := cache.NewStats(rdb, cfg.StatsCacheTTL).Bump(ctx); err != nil {
			logging.Warn().Err(err).Msg("statistics cache bump failed")
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Summary:")
	fmt.Printf("  Authors created: %d (total %d)\n", sum.AuthorsCreated, sum.TotalAuthors)
	fmt.Printf("  Books created:   %d (total %d)\n", sum.BooksCreated, sum.TotalBooks)
	fmt.Printf("  Books without authors: %d\n", sum.BooksWithoutAuthors)
	fmt.Println(strings.Repeat("=", 50))
	return nil
}

func read(ctx context.Context, cfg config.Config, target string) ([]byte, error) {
	if !strings.HasPrefix(target, "s3://") {
		return os.ReadFile(target)
	}
	client, bucket, key, err := s3For(ctx, cfg, target)
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, bucket, key)
}

func write(ctx context.Context, cfg config.Config, target string, body []byte) error {
	if !strings.HasPrefix(target, "s3://") {
		return os.WriteFile(target, body, 0o644)
	}
	client, bucket, key, err := s3For(ctx, cfg, target)
	if err != nil {
		return err
	}
	if err := client.Put(ctx, bucket, key, "application/json", body); err != nil {
		return err
	}
	url, err := client.PresignGet(ctx, bucket, key, presignTTL)
	if err != nil {
		return err
	}
	fmt.Println("Download (valid 15m):", url)
	return nil
}

func s3For(ctx context.Context, cfg config.Config, target string) (*s3store.S3Client, string, string, error) {
	bucket, key, err := s3store.ParseURL(target)
	if err != nil {
		return nil, "", "", err
	}
	client, err := s3store.NewClient(ctx, cfg.S3)
	if err != nil {
		return nil, "", "", err
	}
	return client, bucket, key, nil
}
