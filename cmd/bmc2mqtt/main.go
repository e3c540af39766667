// Bmc2mqtt republishes IPMI sensor readings to an MQTT broker using
// Home Assistant MQTT discovery, so a hub auto-creates one entity per
// sensor without manual configuration.
//
// It periodically runs a sensor utility (`ipmitool sensor` by
// default), parses the tabular output into typed readings, and
// publishes a retained discovery config once per sensor plus a state
// update every cycle. Configuration is loaded from a single YAML file
// discovered automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	bmc2mqtt serve           Start the poll/publish loop
//	bmc2mqtt init [dir]      Initialize a working directory with an example config
//	bmc2mqtt version         Print version and build information
//	bmc2mqtt -o json version Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nugget/bmc2mqtt/internal/bridge"
	"github.com/nugget/bmc2mqtt/internal/buildinfo"
	"github.com/nugget/bmc2mqtt/internal/config"
	"github.com/nugget/bmc2mqtt/internal/ipmi"
	"github.com/nugget/bmc2mqtt/internal/mqtt"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdout, and os.Args out of the application logic so that
// the full startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// cliOptions holds the parsed command line.
type cliOptions struct {
	configPath string
	outputFmt  string // "text" (default) or "json"
	command    string
	cmdArgs    []string
}

// parseArgs parses the argument list by hand. The flag package relies
// on package-level globals (flag.CommandLine), which makes it
// impossible to call run() concurrently from tests. Our argument
// surface is small enough that manual parsing is clearer than bringing
// in a CLI framework.
func parseArgs(args []string) (cliOptions, error) {
	var opts cliOptions

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			opts.configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			opts.configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			opts.outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			opts.outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			opts.outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			opts.command = "help"
		case !strings.HasPrefix(args[i], "-") && opts.command == "":
			opts.command = args[i]
		case !strings.HasPrefix(args[i], "-"):
			opts.cmdArgs = append(opts.cmdArgs, args[i])
		default:
			return opts, fmt.Errorf("unknown argument %q (try -help)", args[i])
		}
	}

	if opts.command == "" {
		opts.command = "serve"
	}
	return opts, nil
}

// run is the real entry point for the bmc2mqtt command. All OS-level
// dependencies are injected as parameters: ctx controls the process
// lifetime, stdout and stderr receive all output, and args is
// os.Args[1:]. run returns nil on clean shutdown and a non-nil error
// for any failure; the caller prints the error and exits.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	switch opts.command {
	case "help":
		return printUsage(stdout)
	case "version":
		return printVersion(stdout, opts.outputFmt)
	case "init":
		dir := "."
		if len(opts.cmdArgs) > 0 {
			dir = opts.cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "serve":
		return serve(ctx, stdout, opts.configPath)
	default:
		return fmt.Errorf("unknown command %q (try -help)", opts.command)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, `Usage: bmc2mqtt [flags] <command>

Commands:
  serve       Start the poll/publish loop (default)
  init [dir]  Initialize a working directory with an example config
  version     Print version and build information

Flags:
  -config <path>   Config file path (default: search standard locations)
  -o <format>      Output format for version: text or json`)
	return nil
}

func printVersion(w io.Writer, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(buildinfo.Info())
	}
	fmt.Fprintln(w, buildinfo.String())
	return nil
}

// serve loads configuration, connects to the broker, and runs the
// poll loop until an interrupt or termination signal arrives.
func serve(ctx context.Context, stdout io.Writer, configPath string) error {
	cfgPath, err := config.FindConfig(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", cfgPath, err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := newLogger(stdout, level, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting", "version", buildinfo.Version, "config", cfgPath,
		"node_id", cfg.NodeID, "interval_sec", cfg.IPMI.PollIntervalSec)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	instanceID, err := mqtt.LoadOrCreateInstanceID(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load mqtt instance id: %w", err)
	}

	runner, err := ipmi.NewCLIRunner(cfg.IPMI.Command,
		time.Duration(cfg.IPMI.TimeoutSec)*time.Second, logger)
	if err != nil {
		return fmt.Errorf("sensor command: %w", err)
	}

	pub := mqtt.New(cfg.MQTT, cfg.NodeID, instanceID, logger)
	if err := pub.Start(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	var metrics *bridge.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics = bridge.NewMetrics(reg)
		go serveMetrics(ctx, cfg.Metrics.Address, reg, logger)
	}

	br := bridge.New(bridge.Config{
		Runner:            runner,
		Publisher:         pub,
		NodeID:            cfg.NodeID,
		DiscoveryPrefix:   cfg.MQTT.DiscoveryPrefix,
		AvailabilityTopic: pub.AvailabilityTopic(),
		PollInterval:      time.Duration(cfg.IPMI.PollIntervalSec) * time.Second,
		Metrics:           metrics,
		Logger:            logger,
	})

	// Blocks until the signal context is cancelled.
	br.Start(ctx)

	// Publish "offline" with a fresh context; ctx is already done.
	offlineCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.Stop(offlineCtx); err != nil {
		logger.Error("mqtt shutdown failed", "error", err)
	}

	logger.Info("bmc2mqtt stopped")
	return nil
}

// serveMetrics exposes the Prometheus registry over HTTP until ctx is
// cancelled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics endpoint failed", "error", err)
	}
}

// newLogger creates a structured logger that writes to w at the given
// level and format. Format must be "text" or "json"; any other value
// defaults to text. All log output goes through slog; this helper
// standardizes the handler configuration.
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
