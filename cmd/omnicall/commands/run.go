package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omnicall/omnicall"
	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/internal/telemetry"
	"github.com/omnicall/omnicall/pkg/config"
	"github.com/omnicall/omnicall/pkg/metrics"
	prommetrics "github.com/omnicall/omnicall/pkg/metrics/prometheus"
)

var (
	runTag      string
	runManifest string
	runWatch    bool
)

var runCmd = &cobra.Command{
	Use:   "run [script...]",
	Short: "Load scripts and keep the host running",
	Long: `Load the given scripts (or a manifest) and keep the host alive until a
signal arrives. Useful when loaded code registers callbacks or serves
asynchronous work.

Examples:
  # Load a Go script with the goscript adapter
  omnicall run --tag goscript handlers.go

  # Load a whole manifest, children first
  omnicall run --manifest project.json

  # Reload scripts automatically when they change on disk
  omnicall run --tag wasm --watch module.wasm`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runTag, "tag", "", "adapter tag for the scripts (goscript, wasm, mock, ...)")
	runCmd.Flags().StringVar(&runManifest, "manifest", "", "load manifest instead of script arguments")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "hot-reload scripts on change")
}

// bootHost initializes logging, telemetry, metrics and the host itself,
// returning a teardown function.
func bootHost(ctx context.Context, cfg *config.Config) (func(), error) {
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "omnicall",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "omnicall",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		if err := prommetrics.Serve(ctx, cfg.Metrics.BindAddress, cfg.Metrics.Port); err != nil {
			return nil, err
		}
	}

	if err := omnicall.Initialize(
		omnicall.WithSerial(cfg.Serial),
		omnicall.WithLibraryPath(cfg.LibraryPath),
	); err != nil {
		return nil, err
	}

	return func() {
		omnicall.Destroy()
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err.Error())
		}
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err.Error())
		}
	}, nil
}

// loadTargets loads the manifest or the script arguments into the host.
func loadTargets(args []string) error {
	if runManifest != "" {
		_, err := omnicall.LoadFromConfiguration(runManifest)
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("nothing to load: pass script paths or --manifest")
	}
	if runTag == "" {
		return fmt.Errorf("--tag is required when loading script paths")
	}
	_, err := omnicall.LoadFromFile(runTag, args...)
	return err
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	teardown, err := bootHost(ctx, cfg)
	if err != nil {
		return err
	}
	defer teardown()

	if runWatch {
		if err := omnicall.Default().EnableWatch(); err != nil {
			return err
		}
	}

	if err := loadTargets(args); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("host is running, press Ctrl+C to stop")
	<-sigChan
	logger.Info("shutdown signal received")
	return nil
}
