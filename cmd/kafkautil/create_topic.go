package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loipv/kafkautil/kafka"
)

var createTopicFlags struct {
	topic             string
	partitions        int
	replicationFactor int
}

var createTopicCmd = &cobra.Command{
	Use:   "create-topic",
	Short: "Create a topic",
	RunE:  runCreateTopic,
}

func init() {
	f := createTopicCmd.Flags()
	f.StringVar(&createTopicFlags.topic, "topic", "test-topic", "Topic name")
	f.IntVar(&createTopicFlags.partitions, "partitions", 1, "Partition count")
	f.IntVar(&createTopicFlags.replicationFactor, "replication-factor", 1, "Replication factor")
	rootCmd.AddCommand(createTopicCmd)
}

func runCreateTopic(cmd *cobra.Command, args []string) error {
	admin, err := kafka.NewAdmin(kafka.WithBrokers(brokerList()...))
	if err != nil {
		return err
	}
	defer admin.Close()

	spec := kafka.TopicSpec{
		Name:              createTopicFlags.topic,
		Partitions:        createTopicFlags.partitions,
		ReplicationFactor: createTopicFlags.replicationFactor,
	}

	err = admin.CreateTopic(cmd.Context(), spec)
	var adminErr *kafka.AdminError
	if errors.As(err, &adminErr) && adminErr.AlreadyExists() {
		fmt.Fprintf(cmd.OutOrStdout(), "Topic %q already exists\n", spec.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create topic %q: %w", spec.Name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created topic %q\n", spec.Name)
	return nil
}
