package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	afterdo "github.com/glimte/afterdo-go"
	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/monitor"
	"github.com/glimte/afterdo-go/transports/rabbitmq"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	verbose bool
	json    bool
	amqpURL string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "afterdo-samples",
		Short: "Run the afterdo sample programs",
		Long: `afterdo-samples runs small programs showing how callbacks are attached to
methods: a barking dog, callback arguments, modules and alternative naming.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log wrapping and every callback run")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Print registered callbacks and metrics as JSON")
	rootCmd.PersistentFlags().StringVar(&flags.amqpURL, "amqp-url", "", "Publish an event per callback run to this RabbitMQ broker")

	for _, s := range samples {
		s := s
		rootCmd.AddCommand(&cobra.Command{
			Use:   s.name,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSamples(cmd, flags, s)
			},
		})
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run every sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSamples(cmd, flags, samples...)
		},
	})

	return rootCmd
}

func runSamples(cmd *cobra.Command, flags *globalFlags, list ...sample) error {
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	out := cmd.OutOrStdout()
	if flags.json {
		out = cmd.ErrOrStderr()
	}

	env := &sampleEnv{
		out:      out,
		logger:   logger,
		metrics:  monitor.NewSimpleMetricsCollector(),
		attached: make(map[string]*afterdo.Capability),
	}

	if flags.amqpURL != "" {
		publisher, err := rabbitmq.Dial(flags.amqpURL,
			rabbitmq.WithPublisherLogger(logger),
			rabbitmq.WithPublishRetries(3),
		)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		defer publisher.Close()
		env.publisher = publisher
	}

	for _, s := range list {
		if err := s.run(env); err != nil {
			return fmt.Errorf("sample %s failed: %w", s.name, err)
		}
	}

	if flags.json {
		return writeReport(cmd.OutOrStdout(), env)
	}
	return nil
}

type report struct {
	Callbacks map[string]callbacks.Snapshot `json:"callbacks"`
	Metrics   monitor.MetricsSummary        `json:"metrics"`
}

func writeReport(w io.Writer, env *sampleEnv) error {
	r := report{
		Callbacks: make(map[string]callbacks.Snapshot, len(env.attached)),
		Metrics:   env.metrics.GetMetricsSummary(),
	}
	for name, capability := range env.attached {
		r.Callbacks[name] = capability.Callbacks()
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
