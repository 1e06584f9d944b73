package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loipv/kafkautil/kafka"
)

var consumeFlags struct {
	topic         string
	groupID       string
	timeout       float64
	maxMessages   int
	fromBeginning bool
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume messages",
	RunE:  runConsume,
}

func init() {
	f := consumeCmd.Flags()
	f.StringVar(&consumeFlags.topic, "topic", "test-topic", "Topic name")
	f.StringVar(&consumeFlags.groupID, "group-id", "demo-group", "Consumer group id")
	f.Float64Var(&consumeFlags.timeout, "timeout", 30.0,
		"Seconds to wait since the last received message (-1 = no timeout)")
	f.IntVar(&consumeFlags.maxMessages, "max-messages", 0, "Stop after N messages (0 = unlimited)")
	f.BoolVar(&consumeFlags.fromBeginning, "from-beginning", false,
		"Read from earliest offset (default reads latest; new groups only)")
	rootCmd.AddCommand(consumeCmd)
}

func runConsume(cmd *cobra.Command, args []string) error {
	reader, err := kafka.NewReader(
		kafka.ReaderWithBrokers(brokerList()...),
		kafka.WithGroupID(consumeFlags.groupID),
		kafka.WithTopics(consumeFlags.topic),
		kafka.WithFromBeginning(consumeFlags.fromBeginning),
		kafka.WithTimeout(timeoutFromSeconds(consumeFlags.timeout)),
		kafka.WithMaxMessages(consumeFlags.maxMessages),
		kafka.ReaderWithTracing(tracingConfig()),
	)
	if err != nil {
		return err
	}
	defer reader.Close()

	out := cmd.OutOrStdout()
	result, err := reader.Run(cmd.Context(), func(ctx context.Context, msg *kafka.Message) error {
		fmt.Fprintf(out, "topic=%s partition=%d offset=%d key=%s value=%s\n",
			msg.Topic, msg.Partition, msg.Offset, msg.Key, msg.Value)
		return nil
	})
	if err != nil {
		return err
	}

	if result.Received == 0 && result.Reason == kafka.StopTimeout {
		fmt.Fprintln(cmd.ErrOrStderr(), "no messages consumed before timeout")
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "consumed %d message(s) (%s)\n", result.Received, result.Reason)
	return nil
}

// timeoutFromSeconds maps the --timeout flag to a duration; negative values
// mean "block indefinitely"
func timeoutFromSeconds(secs float64) time.Duration {
	if secs < 0 {
		return kafka.NoTimeout
	}
	return time.Duration(secs * float64(time.Second))
}
