package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// producerClient is the subset of *kafka.Producer the client uses
type producerClient interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	Flush(timeoutMs int) int
	Close()
}

// Client is a producer with explicit partition selection and a blocking
// delivery contract: produce calls return only after every in-flight send
// has been acknowledged or failed.
type Client struct {
	producer    producerClient
	config      *ClientConfig
	partitioner *Partitioner
	tracer      *TracingService
	logger      Logger
	closed      int32 // atomic: 0=open, 1=closed
	done        chan struct{}

	// Cached partition counts per topic
	partsMu sync.Mutex
	parts   map[string]int32
}

// NewClient creates a new Kafka producer client
func NewClient(opts ...ClientOption) (*Client, error) {
	config := newDefaultClientConfig()
	for _, opt := range opts {
		opt(config)
	}

	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	partitioner, err := NewPartitioner(config.Partitioner, config.StickyLinger)
	if err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(producerConfigMap(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	// Initialize logger
	logger := config.Logger
	if logger == nil {
		logger = NewDefaultLogger(config.LogLevel)
	}

	client := &Client{
		producer:    producer,
		config:      config,
		partitioner: partitioner,
		logger:      logger,
		done:        make(chan struct{}),
		parts:       make(map[string]int32),
	}

	// Initialize tracing if enabled
	if config.Tracing != nil && config.Tracing.Enabled {
		client.tracer = NewTracingService(config.Tracing)
	}

	// Drain client-level events in the background
	go client.drainEvents()

	return client, nil
}

// producerConfigMap translates the client configuration into librdkafka keys
func producerConfigMap(config *ClientConfig) *kafka.ConfigMap {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(config.Brokers, ","),
		"acks":              int(config.Acks),
	}

	if config.ClientID != "" {
		configMap.SetKey("client.id", config.ClientID)
	}

	if config.ConnectionTimeout > 0 {
		configMap.SetKey("socket.connection.setup.timeout.ms", int(config.ConnectionTimeout.Milliseconds()))
	}

	if config.RequestTimeout > 0 {
		configMap.SetKey("request.timeout.ms", int(config.RequestTimeout.Milliseconds()))
	}

	if config.Compression != CompressionNone {
		configMap.SetKey("compression.type", getCompressionName(config.Compression))
	}

	if config.Idempotent {
		configMap.SetKey("enable.idempotence", true)
	}

	setSecurity(configMap, config.SSL, config.SASL)
	configMap.SetKey("log_level", int(config.LogLevel))

	return configMap
}

// Send sends a single message to a topic and blocks until the broker
// acknowledges it or the context is cancelled
func (c *Client) Send(ctx context.Context, topic string, msg *Message) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return fmt.Errorf("client is closed")
	}

	partition, err := c.partitionFor(topic, msg)
	if err != nil {
		return err
	}
	kafkaMsg := c.buildKafkaMessage(topic, partition, msg)

	// Add tracing
	var endSpan func(error)
	if c.tracer != nil {
		ctx, endSpan = c.tracer.StartProducerSpan(ctx, topic, msg)
		c.tracer.InjectTraceContext(ctx, kafkaMsg)
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := c.producer.Produce(kafkaMsg, deliveryChan); err != nil {
		if endSpan != nil {
			endSpan(err)
		}
		return fmt.Errorf("failed to produce message: %w", err)
	}

	// Wait for delivery report
	select {
	case e := <-deliveryChan:
		m := e.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			if endSpan != nil {
				endSpan(m.TopicPartition.Error)
			}
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		if endSpan != nil {
			endSpan(nil)
		}
		return nil
	case <-ctx.Done():
		if endSpan != nil {
			endSpan(ctx.Err())
		}
		return ctx.Err()
	}
}

// ProduceBatch sends messages to a topic and blocks until every in-flight
// send has a delivery report. Per-message failures are reported in the
// returned slice and do not abort remaining sends; the returned error is
// non-nil only for fatal conditions (closed client, unreachable cluster,
// cancelled context).
func (c *Client) ProduceBatch(ctx context.Context, topic string, msgs []*Message) ([]DeliveryReport, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, fmt.Errorf("client is closed")
	}

	if len(msgs) == 0 {
		return nil, nil
	}

	reports := make([]DeliveryReport, 0, len(msgs))
	deliveryChan := make(chan kafka.Event, len(msgs))
	outstanding := 0

	for _, msg := range msgs {
		partition, err := c.partitionFor(topic, msg)
		if err != nil {
			var connErr *ConnectionError
			if errors.As(err, &connErr) {
				return reports, err
			}
			reports = append(reports, DeliveryReport{Topic: topic, Partition: PartitionAny, Err: err})
			continue
		}

		kafkaMsg := c.buildKafkaMessage(topic, partition, msg)

		if c.tracer != nil {
			msgCtx, endSpan := c.tracer.StartProducerSpan(ctx, topic, msg)
			c.tracer.InjectTraceContext(msgCtx, kafkaMsg)
			// The span is ended when the delivery report arrives.
			kafkaMsg.Opaque = endSpan
		}

		if err := c.producer.Produce(kafkaMsg, deliveryChan); err != nil {
			endOpaqueSpan(kafkaMsg, err)
			reports = append(reports, DeliveryReport{Topic: topic, Partition: partition, Err: err})
			continue
		}
		outstanding++
	}

	// Delivery gate: collect exactly one report per in-flight send.
	for ; outstanding > 0; outstanding-- {
		select {
		case e := <-deliveryChan:
			m := e.(*kafka.Message)
			endOpaqueSpan(m, m.TopicPartition.Error)
			reports = append(reports, DeliveryReport{
				Topic:     *m.TopicPartition.Topic,
				Partition: m.TopicPartition.Partition,
				Offset:    int64(m.TopicPartition.Offset),
				Err:       m.TopicPartition.Error,
			})
		case <-ctx.Done():
			return reports, ctx.Err()
		}
	}

	return reports, nil
}

// Flush waits for all buffered messages to be sent
func (c *Client) Flush(timeout time.Duration) error {
	remaining := c.producer.Flush(int(timeout.Milliseconds()))
	if remaining > 0 {
		return fmt.Errorf("%d messages still in queue after flush", remaining)
	}
	return nil
}

// Close closes the client
func (c *Client) Close() error {
	// Use atomic CAS to ensure only one Close can succeed
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	close(c.done)

	// Flush remaining messages
	c.producer.Flush(10000)
	c.producer.Close()
	return nil
}

// partitionFor resolves the partition for a message via the configured
// partitioner and the topic's partition count
func (c *Client) partitionFor(topic string, msg *Message) (int32, error) {
	n, err := c.partitionCount(topic)
	if err != nil {
		return PartitionAny, err
	}
	return c.partitioner.Partition(msg.Key, n), nil
}

// partitionCount returns the topic's partition count, cached per topic for
// the lifetime of the client
func (c *Client) partitionCount(topic string) (int32, error) {
	c.partsMu.Lock()
	n, ok := c.parts[topic]
	c.partsMu.Unlock()
	if ok {
		return n, nil
	}

	metadata, err := c.producer.GetMetadata(&topic, false, int(c.config.RequestTimeout.Milliseconds()))
	if err != nil {
		return 0, &ConnectionError{Brokers: c.config.Brokers, Err: err}
	}

	meta, ok := metadata.Topics[topic]
	if !ok || len(meta.Partitions) == 0 {
		return 0, fmt.Errorf("no partitions known for topic %q", topic)
	}

	n = int32(len(meta.Partitions))
	c.partsMu.Lock()
	c.parts[topic] = n
	c.partsMu.Unlock()
	return n, nil
}

// buildKafkaMessage builds a kafka.Message from Message with an explicit partition
func (c *Client) buildKafkaMessage(topic string, partition int32, msg *Message) *kafka.Message {
	kafkaMsg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: partition,
		},
		Value: msg.Value,
	}

	if msg.Key != nil {
		kafkaMsg.Key = msg.Key
	}

	if !msg.Timestamp.IsZero() {
		kafkaMsg.Timestamp = msg.Timestamp
	}

	if msg.Headers != nil {
		for k, v := range msg.Headers {
			kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{
				Key:   k,
				Value: v,
			})
		}
	}

	return kafkaMsg
}

// drainEvents logs client-level events from the producer
func (c *Client) drainEvents() {
	for {
		select {
		case <-c.done:
			return
		case e, ok := <-c.producer.Events():
			if !ok {
				return
			}
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					c.logger.Error("delivery failed: %v", ev.TopicPartition.Error)
				}
			case kafka.Error:
				c.logger.Error("kafka error: %v", ev)
			}
		}
	}
}

// GeneratePayloads returns the payloads for a produce request. A non-empty
// message is replicated count times (at least once); otherwise count
// sequential placeholders are generated so the command is usable without
// manual input.
func GeneratePayloads(message string, count int) []string {
	if message != "" {
		if count < 1 {
			count = 1
		}
		payloads := make([]string, count)
		for i := range payloads {
			payloads[i] = message
		}
		return payloads
	}

	if count < 0 {
		count = 0
	}
	ts := time.Now().Unix()
	payloads := make([]string, count)
	for i := range payloads {
		payloads[i] = fmt.Sprintf("message-%d-ts-%d", i, ts)
	}
	return payloads
}

// Helper functions

func endOpaqueSpan(msg *kafka.Message, err error) {
	if endSpan, ok := msg.Opaque.(func(error)); ok {
		endSpan(err)
		msg.Opaque = nil
	}
}

func setSecurity(configMap *kafka.ConfigMap, ssl bool, sasl *SASLConfig) {
	if ssl {
		configMap.SetKey("security.protocol", "ssl")
	}
	if sasl != nil {
		if ssl {
			configMap.SetKey("security.protocol", "sasl_ssl")
		} else {
			configMap.SetKey("security.protocol", "sasl_plaintext")
		}
		configMap.SetKey("sasl.mechanism", sasl.Mechanism)
		configMap.SetKey("sasl.username", sasl.Username)
		configMap.SetKey("sasl.password", sasl.Password)
	}
}

func getCompressionName(compression Compression) string {
	switch compression {
	case CompressionGZIP:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}
