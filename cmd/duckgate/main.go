// Command duckgate serves the SQL gateway over HTTP.
//
//	duckgate -config duckgate.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/duckgate/internal/config"
	"github.com/koustreak/duckgate/internal/filestore/minio"
	"github.com/koustreak/duckgate/internal/gateway"
	"github.com/koustreak/duckgate/internal/logger"
	"github.com/koustreak/duckgate/internal/server"
	"github.com/koustreak/duckgate/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults apply when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "duckgate:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logger())
	log.Infof("starting duckgate: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := session.NewRegistry(cfg.Database(), session.WithLogger(log))
	defer registry.CloseAll()

	opts := []gateway.Option{gateway.WithLogger(log)}
	if fc := cfg.FileStore(); fc != nil {
		store, err := minio.New(ctx, fc)
		if err != nil {
			return fmt.Errorf("export store: %w", err)
		}
		defer store.Close()
		opts = append(opts, gateway.WithExportStore(store, fc.Bucket))
		log.InfoWith("table export enabled", map[string]any{"endpoint": fc.Endpoint, "bucket": fc.Bucket})
	}

	srv := server.New(gateway.New(registry, opts...), registry, log, cfg.Server)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}
