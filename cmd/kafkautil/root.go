package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/loipv/kafkautil/kafka"
)

var (
	bootstrapServers string
	verbose          bool
	enableTracing    bool
)

var rootCmd = &cobra.Command{
	Use:   "kafkautil",
	Short: "Kafka utility for local topic, produce and consume workflows",
	Long: `kafkautil is a small utility for manual testing against a locally
run Kafka cluster: create topics, produce test messages, and consume
messages.

Examples:
  kafkautil create-topic --topic test-topic
  kafkautil produce --topic test-topic --message "hello" --key k1
  kafkautil consume --topic test-topic --group-id demo --from-beginning`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bootstrapServers, "bootstrap-servers", "127.0.0.1:9092",
		"Kafka bootstrap servers (comma separated host:port)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&enableTracing, "trace", false,
		"Emit OpenTelemetry spans via the global tracer provider")
}

// tracingConfig maps the --trace flag to the library tracing configuration;
// nil when disabled
func tracingConfig() *kafka.TracingConfig {
	if !enableTracing {
		return nil
	}
	return &kafka.TracingConfig{Enabled: true}
}

// brokerList splits the bootstrap-servers flag into broker addresses
func brokerList() []string {
	var brokers []string
	for _, b := range strings.Split(bootstrapServers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
