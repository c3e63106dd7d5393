// Command robodash browses and charts robotics datasets on the hub.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/config"
	"github.com/jdziat/robodash/internal/telemetry"
)

const version = "0.1.0"

// app holds the global flags and what PersistentPreRunE builds from them.
type app struct {
	verbose    bool
	configPath string
	namespace  string
	hubURL     string
	rowsURL    string
	timeout    time.Duration

	logger    *zap.Logger
	cfg       *config.Config
	collector *telemetry.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "robodash",
		Short: "Dashboards for robotics datasets on the hub",
		Long: `robodash lists the datasets of a hub namespace and charts their episodes:
lengths, rewards, action magnitudes, tasks, timing and joint positions.

Run "robodash serve" for the web dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if a.verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger

			if a.configPath != "" {
				a.cfg, err = config.LoadFile(a.configPath)
			} else {
				a.cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			if a.cfg.Path != "" {
				a.logger.Debug("loaded config", zap.String("path", a.cfg.Path))
			}
			a.collector = telemetry.NewCollector()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default: nearest .robodash.yaml)")
	flags.StringVarP(&a.namespace, "namespace", "n", "", "Dataset namespace (default: from config)")
	flags.StringVar(&a.hubURL, "hub-url", "", "Hub base URL override")
	flags.StringVar(&a.rowsURL, "rows-url", "", "Rows endpoint base URL override")
	flags.DurationVar(&a.timeout, "timeout", 5*time.Minute, "Operation timeout")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newVizCmd(a),
		newMetaCmd(a),
		newVideosCmd(a),
		newExportCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "robodash version %s\n", version)
			},
		},
	)
	return root
}

// client builds the hub client from the config and flag overrides. Its logs
// go through zap and its metrics to the shared collector.
func (a *app) client() (*robodash.Client, error) {
	opts := a.cfg.ClientOptions()
	if a.namespace != "" {
		opts = append(opts, robodash.WithNamespace(a.namespace))
	}
	if a.hubURL != "" {
		opts = append(opts, robodash.WithHubURL(a.hubURL))
	}
	if a.rowsURL != "" {
		opts = append(opts, robodash.WithRowsURL(a.rowsURL))
	}
	opts = append(opts,
		robodash.WithStructuredLogger(robodash.NewZapAdapter(a.logger)),
		robodash.WithMetrics(a.collector),
		robodash.WithUserAgent("robodash/"+version),
	)
	return robodash.New(opts...)
}

// opContext returns the operation context for a command.
func (a *app) opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
