package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loipv/kafkautil/kafka"
)

var describeTopicFlags struct {
	topic string
}

var describeTopicCmd = &cobra.Command{
	Use:   "describe-topic",
	Short: "Show a topic's partition layout",
	RunE:  runDescribeTopic,
}

func init() {
	describeTopicCmd.Flags().StringVar(&describeTopicFlags.topic, "topic", "test-topic", "Topic name")
	rootCmd.AddCommand(describeTopicCmd)
}

func runDescribeTopic(cmd *cobra.Command, args []string) error {
	admin, err := kafka.NewAdmin(kafka.WithBrokers(brokerList()...))
	if err != nil {
		return err
	}
	defer admin.Close()

	info, err := admin.TopicMetadata(cmd.Context(), describeTopicFlags.topic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "topic %q: %d partition(s)\n", info.Name, len(info.Partitions))
	for _, p := range info.Partitions {
		fmt.Fprintf(out, "  partition=%d leader=%d replicas=%d isrs=%d\n",
			p.ID, p.Leader, p.Replicas, p.ISRs)
	}
	return nil
}
