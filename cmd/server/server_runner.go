// Package server wires configuration, the Clever Cloud service and the MCP
// dispatcher together and runs them on the selected transport.
// file: cmd/server/server_runner.go
package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/clever"
	"github.com/dkoosis/clevermcp/internal/config"
	"github.com/dkoosis/clevermcp/internal/fetch"
	"github.com/dkoosis/clevermcp/internal/jsonrpc"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/mcp"
	"github.com/dkoosis/clevermcp/internal/metrics"
	"github.com/dkoosis/clevermcp/internal/registry"
)

// Options are the command-line settings of the serve command.
type Options struct {
	ConfigPath string
	// Transport overrides server.transport from the configuration when not empty.
	Transport string
	Debug     bool
	// Version is the build version. It replaces the default server.version
	// but not one set by the configuration file or the environment.
	Version string
}

// Components holds everything built from one configuration.
type Components struct {
	Config  *config.Config
	Service *clever.Service
	Server  *mcp.Server
	Metrics *metrics.Metrics // Nil when metrics are disabled.
}

// LoadConfig loads .env, then the configuration file, and applies opts.
func LoadConfig(opts Options) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if opts.Transport != "" {
		cfg.Server.Transport = opts.Transport
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}
	if opts.Version != "" && cfg.Server.Version == config.DefaultServerVersion {
		cfg.Server.Version = opts.Version
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build creates the fetch client, the Clever Cloud service, the capability
// registry and the MCP server for cfg.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Components, error) {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.Remote.Timeout),
		fetch.WithUserAgent(cfg.Remote.UserAgent),
		fetch.WithMetrics(m),
		fetch.WithLogger(logger),
	)
	svc := clever.NewService(clever.NewClient(cfg.Remote, fetcher), logger)
	if err := svc.Initialize(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to initialize service %q", svc.GetName())
	}

	reg, err := registry.New(logger, svc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build capability registry")
	}
	srv, err := mcp.NewServer(cfg, reg, nil, m, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MCP server")
	}
	return &Components{Config: cfg, Service: svc, Server: srv, Metrics: m}, nil
}

// RunServer serves until stdin ends (stdio), a signal arrives, or the
// listener fails. It returns nil on a clean stop.
func RunServer(opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	logging.SetupDefaultLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.GetLogger("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting Clever Cloud MCP server.",
		"name", cfg.Server.Name, "version", cfg.Server.Version, "transport", cfg.Server.Transport)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Server setup failed.", "error", err)
		return err
	}
	defer func() {
		if err := c.Service.Shutdown(); err != nil {
			logger.Warn("Service shutdown reported an error.", "error", err)
		}
	}()

	return Serve(ctx, c, os.Stdin, os.Stdout, logger)
}

// Serve runs c on its configured transport. in and out are used by stdio only.
func Serve(ctx context.Context, c *Components, in io.Reader, out io.Writer, logger logging.Logger) error {
	switch c.Config.Server.Transport {
	case config.TransportStdio:
		return jsonrpc.ServeStdio(ctx, c.Server, in, out, logger)
	case config.TransportHTTP:
		return ServeHTTP(ctx, c, logger)
	default:
		return errors.Newf("unsupported transport %q", c.Config.Server.Transport)
	}
}

// RunCheck probes the remote endpoints and writes one line per endpoint to out.
// It fails when any endpoint could not be reached.
func RunCheck(ctx context.Context, opts Options, out io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	logging.SetupDefaultLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.GetLogger("check")

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return Check(ctx, c.Service, out)
}

// Check runs the connectivity check of svc and prints the results.
func Check(ctx context.Context, svc *clever.Service, out io.Writer) error {
	results, checkErr := svc.PerformConnectivityCheck(ctx)
	for _, r := range results {
		if _, err := io.WriteString(out, clever.FormatDiagnosticResult(r)+"\n"); err != nil {
			return errors.Wrap(err, "failed to write check output")
		}
	}
	if checkErr != nil {
		return errors.Wrap(checkErr, "connectivity check failed")
	}
	return nil
}
