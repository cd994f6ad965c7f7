package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"ipcatalog/internal/app/version"
	"ipcatalog/internal/catalog"
	"ipcatalog/internal/cli"
	"ipcatalog/internal/config"
	"ipcatalog/internal/database"
	"ipcatalog/internal/enrichment"
	"ipcatalog/internal/rdns"
	"ipcatalog/internal/support"
)

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found. Falling back to system environment variables.")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cfg, openCatalog)
	root.Version = version.Get().String()

	return root.ExecuteContext(ctx)
}

// closers releases in reverse order of acquisition.
type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openCatalog(ctx context.Context, cfg config.Config) (cli.Service, io.Closer, error) {
	dialector, err := database.DialectorFor(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	store, err := database.Open(database.WithDialector(dialector))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	resources := closers{store}

	opts := []catalog.Option{
		catalog.WithEnrichment(cfg.Enrichment.Enabled),
		catalog.WithReverseDNS(cfg.ReverseDNS.Enabled),
	}

	if cfg.Enrichment.Enabled {
		clientOpts := []enrichment.Option{
			enrichment.WithAddress(cfg.Enrichment.Address),
			enrichment.WithTimeout(cfg.Enrichment.Timeout),
		}

		if cfg.Enrichment.RedisURL != "" {
			redisClient, err := support.NewRedisClient(ctx, cfg.Enrichment.RedisURL)
			if err != nil {
				log.Warn("Enrichment cache unavailable, continuing without it", "error", err)
			} else {
				resources = append(resources, redisClient)
				clientOpts = append(clientOpts, enrichment.WithCache(enrichment.NewRedisCache(redisClient, cfg.Enrichment.CacheTTL)))
			}
		}

		opts = append(opts, catalog.WithEnricher(enrichment.NewClient(clientOpts...)))
	}

	switch {
	case !cfg.ReverseDNS.Enabled:
		opts = append(opts, catalog.WithResolver(rdns.Disabled{}))
	case cfg.ReverseDNS.Server != "":
		opts = append(opts, catalog.WithResolver(rdns.NewServerResolver(cfg.ReverseDNS.Server)))
	}

	return catalog.New(store, opts...), resources, nil
}
