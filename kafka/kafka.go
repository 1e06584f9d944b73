// Package kafka wraps confluent-kafka-go for local topic, produce and
// consume workflows.
//
// Features:
//   - Admin client for topic creation and metadata queries
//   - Producer with explicit, pluggable partition selection (consistent,
//     murmur2, fnv1a, random) and sticky keyless routing
//   - Blocking delivery contract: ProduceBatch returns only after every
//     in-flight send has a delivery report
//   - Bounded reader: poll loop that terminates on a timeout since the last
//     message, a maximum message count, or interruption
//   - OpenTelemetry producer/consumer spans with header propagation
//
// Quick Start:
//
//	// Create a topic
//	admin, err := kafka.NewAdmin(kafka.WithBrokers("localhost:9092"))
//	err = admin.CreateTopic(ctx, kafka.TopicSpec{Name: "test-topic", Partitions: 1, ReplicationFactor: 1})
//
//	// Produce
//	client, err := kafka.NewClient(
//	    kafka.WithBrokers("localhost:9092"),
//	    kafka.WithPartitioner(kafka.StrategyConsistent),
//	)
//	reports, err := client.ProduceBatch(ctx, "test-topic", []*kafka.Message{
//	    {Key: []byte("key"), Value: []byte("value")},
//	})
//
//	// Consume
//	reader, err := kafka.NewReader(
//	    kafka.ReaderWithBrokers("localhost:9092"),
//	    kafka.WithGroupID("demo-group"),
//	    kafka.WithTopics("test-topic"),
//	    kafka.WithTimeout(30*time.Second),
//	)
//	result, err := reader.Run(ctx, func(ctx context.Context, msg *kafka.Message) error {
//	    fmt.Println(string(msg.Value))
//	    return nil
//	})
package kafka

// Version of the library
const Version = "1.0.0"
