// Command whatismyip runs the dynamic-DNS update service: an HTTP endpoint
// that echoes the caller's IP address and keeps the matching Cloudflare
// A/AAAA records in sync with it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/think0rcode/whatismyip/internal/config"
	"github.com/think0rcode/whatismyip/internal/dns/services"
	"github.com/think0rcode/whatismyip/internal/server"
	"github.com/think0rcode/whatismyip/internal/store"
)

const shutdownTimeout = 10 * time.Second

var version = "dev"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whatismyip",
		Short:   "Dynamic-DNS update service backed by Cloudflare",
		Version: version,
		Long: `whatismyip serves GET /?homename=<name>: it reads the client's IP address,
ensures the Cloudflare zone contains matching A/AAAA records for
<name>.<domain>, and echoes the observed address back as text, JSON, or XML
depending on the Accept header.

Configuration comes from the environment:
  API_TOKEN      bearer token clients must present (requests are denied without it)
  CF_ZONE_ID     Cloudflare zone id (required)
  CF_API_TOKEN   Cloudflare API token with DNS:Edit (required)
  CF_DOMAIN      domain appended to homenames (required)
  LISTEN_ADDR    HTTP listen address (default :8080)
  CACHE_PATH     SQLite record cache path (default under the user config dir)`,
	}

	cmd.AddCommand(serveCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var devLog bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP update endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(devLog)
			if err != nil {
				return err
			}
			return run(cmd.Context(), log)
		},
	}

	cmd.Flags().BoolVar(&devLog, "dev-log", false, "human-readable log output")
	return cmd
}

// newLogger builds the zap-backed logger the rest of the service sees
// through logr.
func newLogger(dev bool) (logr.Logger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	if dev {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

func run(ctx context.Context, log logr.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.APIToken == "" {
		log.Info("API_TOKEN is not set, all requests will be denied")
	}

	kv, err := store.Open(cfg.CachePath)
	if err != nil {
		return err
	}
	defer kv.Close()
	log.Info("opened record cache", "path", cfg.CachePath)

	svc := services.New(cfg, kv, log)
	handler := server.New(cfg.APIToken, svc, log.WithName("http"))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.ListenAddr, "domain", cfg.CFDomain, "version", version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
