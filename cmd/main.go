package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/gvera/internal/app"
	"github.com/okian/gvera/internal/config"
	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

// Set at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "gvera",
		Short: "HTTP request façade demo server",
		Long: `gvera serves a small JSON API on top of a verb-aware request façade:
parameter lookup, uploads, basic and bearer credentials, and rule-based
validation. Configuration comes from defaults, the YAML file named by
GVERA_CONFIG, and GVERA_* environment variables.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(out)

	root.AddCommand(newServeCommand(out), newVersionCommand(out))
	return root
}

func newVersionCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(out, "gvera %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func newServeCommand(out io.Writer) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, out, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides configuration")
	return cmd
}

// serve loads configuration, runs the service and blocks until ctx ends.
func serve(ctx context.Context, out io.Writer, addr string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}

	if err := logger.Init(logger.WithWriter(out), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg.Metrics)...)

	svc, err := service.New(cfg, service.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return svc.Stop(shutdownCtx)
}

func metricsOptions(c config.Metrics) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.Enabled),
		metrics.WithNamespace(c.Namespace),
		metrics.WithSubsystem(c.Subsystem),
		metrics.WithMetricPrefix(c.Prefix),
		metrics.WithRefreshInterval(c.RefreshInterval),
		metrics.WithHistogramBuckets(c.Buckets),
		metrics.WithCustomLabels(c.Labels),
	}
}
