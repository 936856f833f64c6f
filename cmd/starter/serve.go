package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/starter/internal/app"
	"github.com/vango-dev/starter/internal/config"
	"github.com/vango-dev/starter/internal/i18n"
	"github.com/vango-dev/starter/internal/metrics"
)

type serveFlags struct {
	port         int
	host         string
	shell        string
	catalogs     string
	catalogDelay time.Duration
	devtools     bool
}

func serveCmd() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Configuration is read from starter.json, then STARTER_* environment
variables, then flags.

Examples:
  starter serve
  starter serve --port=8080
  starter serve --catalogs=./locales --catalog-delay=1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, f.catalogDelay, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "Port to listen on (default from starter.json)")
	cmd.Flags().StringVarP(&f.host, "host", "H", "", "Host to bind to (default from starter.json)")
	cmd.Flags().StringVar(&f.shell, "shell", "", "HTML shell replacing the embedded index.html")
	cmd.Flags().StringVar(&f.catalogs, "catalogs", "", "Read catalogs from this directory instead of the configured source")
	cmd.Flags().DurationVar(&f.catalogDelay, "catalog-delay", 0, "Delay the catalog load, to see the loading state")
	cmd.Flags().BoolVar(&f.devtools, "devtools", false, "Serve store events on /__devtools/events")

	return cmd
}

// apply overrides cfg with flags the user set.
func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = f.port
	}
	if flags.Changed("host") {
		cfg.Server.Host = f.host
	}
	if flags.Changed("shell") {
		cfg.Server.Shell = f.shell
	}
	if flags.Changed("catalogs") {
		cfg.I18n.Source = config.SourceDir
		cfg.I18n.Dir = f.catalogs
	}
	if flags.Changed("devtools") {
		cfg.Devtools.Enabled = f.devtools
	}
}

func runServe(ctx context.Context, cfg *config.Config, catalogDelay time.Duration, logOut io.Writer) error {
	logger := newLogger(cfg.Log, logOut)
	slog.SetDefault(logger)

	// The shell is checked before anything starts: a missing mount point
	// is fatal.
	shell, err := app.LoadShell(cfg.Server.Shell, cfg.Server.MountID)
	if err != nil {
		return err
	}

	src, err := catalogSource(ctx, cfg.I18n)
	if err != nil {
		return err
	}
	resources := i18n.Load(ctx, src, i18n.LoadOptions{
		BaseLocale: i18n.BaseLocale,
		Logger:     logger,
		Delay:      catalogDelay,
	})

	srv, err := app.New(cfg, app.Deps{
		Shell:     shell,
		Resources: resources,
		Metrics:   metrics.New(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	success("Listening on %s", cfg.URL())
	info("catalogs: %s", src.Name())
	if cfg.Devtools.Enabled {
		info("devtools: %s/__devtools/events", cfg.URL())
	}

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Address(), err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("close sessions", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger builds the process logger from the log config.
func newLogger(c config.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// catalogSource selects where translation catalogs are read from.
func catalogSource(ctx context.Context, c config.I18nConfig) (i18n.Source, error) {
	switch c.Source {
	case config.SourceDir:
		return i18n.Dir(c.Dir), nil
	case config.SourceS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.S3.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if c.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.S3.Endpoint)
			}
			o.UsePathStyle = c.S3.UsePathStyle
		})
		return i18n.NewS3Source(client, c.S3.Bucket, c.S3.Prefix), nil
	default:
		return i18n.Embedded(), nil
	}
}
