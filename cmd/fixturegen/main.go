package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/forgo/entityfactory/internal/config"
	"github.com/forgo/entityfactory/internal/database"
	"github.com/forgo/entityfactory/internal/export"
	"github.com/forgo/entityfactory/internal/metrics"
	"github.com/forgo/entityfactory/internal/repository"
	"github.com/forgo/entityfactory/internal/testing/fixtures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	entity  string
	count   int
	persist bool
	format  string
	out     string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var opts options
	flagSet := pflag.NewFlagSet("fixturegen", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.entity, "entity", "e", "basic", "entity kind to generate")
	flagSet.IntVarP(&opts.count, "count", "n", 1, "number of entities")
	flagSet.BoolVar(&opts.persist, "persist", false, "save entities through the configured store")
	flagSet.StringVarP(&opts.format, "format", "f", cfg.Export.Format, "output format: json or yaml")
	flagSet.StringVarP(&opts.out, "out", "o", "-", "output: - for stdout, a file path, or s3://bucket/key")
	flagSet.StringVar(&cfg.Store.Driver, "driver", cfg.Store.Driver, "store driver: memory, sqlite, postgres or surreal")
	flagSet.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "fake data seed, 0 for random")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg.Export.Format = strings.ToLower(opts.format)
	if cfg.Export.Format == "yml" {
		cfg.Export.Format = string(export.FormatYAML)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return err
	}

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	factories, err := fixtures.New(stores,
		fixtures.WithSeed(cfg.Seed),
		fixtures.WithLogger(logger),
		fixtures.WithObserver(collector),
	)
	if err != nil {
		return err
	}

	kind, ok := factories.Kind(opts.entity)
	if !ok {
		return fmt.Errorf("unknown entity %q, expected one of: %s", opts.entity, strings.Join(factories.Kinds(), ", "))
	}

	start := time.Now()
	var items []any
	if opts.persist {
		items, err = kind.PersistN(ctx, opts.count)
	} else {
		items, err = kind.BuildN(ctx, opts.count)
	}
	if err != nil {
		return err
	}

	doc := export.NewDocument(strings.ToLower(opts.entity), items, opts.persist)
	doc.Seed = cfg.Seed

	var w export.Writer
	if opts.out == "-" || opts.out == "" {
		w = &export.StreamWriter{W: stdout}
	} else {
		w, err = export.Open(ctx, opts.out, export.S3Options{
			Region:          cfg.Export.S3.Region,
			Endpoint:        cfg.Export.S3.Endpoint,
			PathStyle:       cfg.Export.S3.PathStyle,
			AccessKeyID:     cfg.Export.S3.AccessKeyID,
			SecretAccessKey: cfg.Export.S3.SecretAccessKey,
		})
		if err != nil {
			return err
		}
	}
	if err := export.Write(ctx, w, format, doc); err != nil {
		return err
	}

	logger.Info("fixtures generated",
		slog.String("entity", kind.EntityName()),
		slog.Int("count", len(items)),
		slog.Bool("persisted", opts.persist),
		slog.String("driver", cfg.Store.Driver),
		slog.Uint64("seed", cfg.Seed),
		slog.Duration("took", time.Since(start)),
	)

	if cfg.Metrics.PushgatewayURL != "" {
		grouping := map[string]string{"kind": doc.Entity}
		if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, registry, grouping); err != nil {
			logger.Warn("failed to push metrics", slog.String("error", err.Error()))
		}
	}
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
}

// openStores connects the configured driver. The returned func releases
// the connection.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (fixtures.Stores, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		return fixtures.MemoryStores(), noop, nil

	case config.DriverSQLite, config.DriverPostgres:
		driver, dsn := database.DriverSQLite, cfg.Store.SQLitePath+"?_pragma=foreign_keys(1)"
		if cfg.Store.Driver == config.DriverPostgres {
			driver, dsn = database.DriverPostgres, cfg.Store.PostgresDSN
		}
		db, err := database.OpenSQL(ctx, driver, dsn)
		if err != nil {
			return fixtures.Stores{}, noop, err
		}
		if err := db.Migrate(ctx, repository.Schema...); err != nil {
			_ = db.Close()
			return fixtures.Stores{}, noop, err
		}
		logger.Debug("connected to database", slog.String("driver", driver))
		return fixtures.SQLStores(db), func() { _ = db.Close() }, nil

	case config.DriverSurreal:
		db := database.NewSurrealDB(database.Config{
			Host:      cfg.Store.Surreal.Host,
			Port:      cfg.Store.Surreal.Port,
			User:      cfg.Store.Surreal.User,
			Password:  cfg.Store.Surreal.Password,
			Namespace: cfg.Store.Surreal.Namespace,
			Database:  cfg.Store.Surreal.Database,
		})
		if err := db.Connect(ctx); err != nil {
			return fixtures.Stores{}, noop, err
		}
		logger.Debug("connected to database",
			slog.String("host", cfg.Store.Surreal.Host),
			slog.String("namespace", cfg.Store.Surreal.Namespace),
		)
		return fixtures.SurrealStores(db), func() { _ = db.Close() }, nil
	}
	return fixtures.Stores{}, noop, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `fixturegen builds example entities with their factories and exports them.

Usage:
  fixturegen [flags]

Examples:
  # Three users as YAML on stdout
  fixturegen --entity user --count 3 --format yaml

  # Persist ten children (and their parents) to sqlite
  FACTORY_STORE_DRIVER=sqlite fixturegen -e child -n 10 --persist

  # Upload to S3
  fixturegen -e unique -n 100 -o s3://fixtures/unique.json

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
