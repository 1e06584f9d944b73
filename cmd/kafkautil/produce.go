package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loipv/kafkautil/kafka"
)

var produceFlags struct {
	topic          string
	message        string
	count          int
	key            string
	partitioner    string
	stickyLingerMs int
}

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Produce one or more messages",
	RunE:  runProduce,
}

func init() {
	f := produceCmd.Flags()
	f.StringVar(&produceFlags.topic, "topic", "test-topic", "Topic name")
	f.StringVar(&produceFlags.message, "message", "", "Single message to send (generated if omitted)")
	f.IntVar(&produceFlags.count, "count", 1, "Number of generated messages")
	f.StringVar(&produceFlags.key, "key", "", "Optional message key")
	f.StringVar(&produceFlags.partitioner, "partitioner", string(kafka.StrategyConsistent),
		"Partitioner strategy ("+strings.Join(kafka.Strategies(), ", ")+")")
	f.IntVar(&produceFlags.stickyLingerMs, "sticky-linger-ms", 10,
		"Sticky partitioner linger for keyless messages, in ms")
	rootCmd.AddCommand(produceCmd)
}

func runProduce(cmd *cobra.Command, args []string) error {
	strategy, err := kafka.ParseStrategy(produceFlags.partitioner)
	if err != nil {
		return err
	}

	client, err := kafka.NewClient(
		kafka.WithBrokers(brokerList()...),
		kafka.WithPartitioner(strategy),
		kafka.WithStickyLinger(time.Duration(produceFlags.stickyLingerMs)*time.Millisecond),
		kafka.WithTracing(tracingConfig()),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	var key []byte
	if produceFlags.key != "" {
		key = []byte(produceFlags.key)
	}

	payloads := kafka.GeneratePayloads(produceFlags.message, produceFlags.count)
	msgs := make([]*kafka.Message, 0, len(payloads))
	for _, payload := range payloads {
		msgs = append(msgs, &kafka.Message{Key: key, Value: []byte(payload)})
	}

	reports, err := client.ProduceBatch(cmd.Context(), produceFlags.topic, msgs)
	if err != nil {
		return err
	}

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "delivery failed: %v\n", report.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "delivered topic=%s partition=%d offset=%d\n",
			report.Topic, report.Partition, report.Offset)
	}

	if failed > 0 {
		return &kafka.ProduceError{Failed: failed, Total: len(reports)}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "delivered %d message(s)\n", len(reports))
	return nil
}
