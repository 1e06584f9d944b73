package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// pollClient is the subset of *kafka.Consumer the reader uses
type pollClient interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	Close() error
}

// Reader consumes messages from a topic under a consumer group, bounded by a
// timeout since the last received message and an optional maximum count.
type Reader struct {
	consumer pollClient
	config   *ReaderConfig
	tracer   *TracingService
	logger   Logger
	closed   int32 // atomic: 0=open, 1=closed
}

// NewReader creates a new Kafka reader
func NewReader(opts ...ReaderOption) (*Reader, error) {
	config := newDefaultReaderConfig()
	for _, opt := range opts {
		opt(config)
	}

	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	if config.GroupID == "" {
		return nil, fmt.Errorf("group ID is required")
	}

	if len(config.Topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}

	// Build kafka config map
	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(config.Brokers, ","),
		"group.id":           config.GroupID,
		"auto.offset.reset":  offsetReset(config.FromBeginning),
		"enable.auto.commit": config.AutoCommit,
	}

	if config.SessionTimeout > 0 {
		configMap.SetKey("session.timeout.ms", int(config.SessionTimeout.Milliseconds()))
	}

	if config.HeartbeatInterval > 0 {
		configMap.SetKey("heartbeat.interval.ms", int(config.HeartbeatInterval.Milliseconds()))
	}

	if config.AutoCommitInterval > 0 {
		configMap.SetKey("auto.commit.interval.ms", int(config.AutoCommitInterval.Milliseconds()))
	}

	if config.PartitionAssignor != "" {
		configMap.SetKey("partition.assignment.strategy", string(config.PartitionAssignor))
	}

	setSecurity(configMap, config.SSL, config.SASL)

	// Set log level
	configMap.SetKey("log_level", int(config.LogLevel))

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	// Initialize logger
	logger := config.Logger
	if logger == nil {
		logger = NewDefaultLogger(config.LogLevel)
	}

	r := &Reader{
		consumer: consumer,
		config:   config,
		logger:   logger,
	}

	// Initialize tracing if enabled
	if config.Tracing != nil && config.Tracing.Enabled {
		r.tracer = NewTracingService(config.Tracing)
	}

	return r, nil
}

// Run subscribes to the configured topics and polls until a terminal
// condition is reached: the timeout elapses since the last received message,
// the maximum message count is reached, or the context is cancelled.
// Transient poll errors are logged and retried within the remaining timeout
// budget; the run fails only if the cluster stays unreachable for the whole
// window with nothing received.
func (r *Reader) Run(ctx context.Context, handler MessageHandler) (RunResult, error) {
	var result RunResult

	if err := r.consumer.SubscribeTopics(r.config.Topics, r.rebalanceLogger); err != nil {
		result.Reason = StopError
		return result, fmt.Errorf("failed to subscribe to topics: %w", err)
	}

	infinite := r.config.Timeout < 0
	var deadline time.Time
	if !infinite {
		deadline = time.Now().Add(r.config.Timeout)
	}

	// healthy flips once a poll proves the cluster answered: a message or a
	// non-transport error. Empty-poll timeouts prove nothing either way.
	healthy := false
	var lastTransportErr error

	for {
		if ctx.Err() != nil {
			result.Reason = StopInterrupted
			return result, nil
		}

		if !infinite && !time.Now().Before(deadline) {
			if !healthy && result.Received == 0 && lastTransportErr != nil {
				result.Reason = StopError
				return result, &ConnectionError{Brokers: r.config.Brokers, Err: lastTransportErr}
			}
			result.Reason = StopTimeout
			return result, nil
		}

		wait := r.config.PollInterval
		if !infinite {
			wait = pollWait(wait, time.Until(deadline))
		}

		msg, err := r.consumer.ReadMessage(wait)
		if err != nil {
			if isTimedOut(err) {
				continue
			}
			if isTransportErr(err) {
				lastTransportErr = err
				r.logger.Warn("%v (retrying)", &PollError{Err: err})
				continue
			}
			healthy = true
			r.logger.Warn("%v (retrying)", &PollError{Err: err})
			continue
		}

		healthy = true
		message := convertMessage(msg)

		var endSpan func(error)
		handlerCtx := ctx
		if r.tracer != nil {
			handlerCtx, endSpan = r.tracer.StartConsumerSpan(ctx, r.config.GroupID, message)
		}

		var handlerErr error
		if handler != nil {
			handlerErr = handler(handlerCtx, message)
			if handlerErr != nil {
				r.logger.Error("handler error: %v", handlerErr)
			}
		}
		if endSpan != nil {
			endSpan(handlerErr)
		}

		result.Received++
		if !infinite {
			// The timeout is measured since the last received message.
			deadline = time.Now().Add(r.config.Timeout)
		}
		if r.config.MaxMessages > 0 && result.Received >= r.config.MaxMessages {
			result.Reason = StopMaxReached
			return result, nil
		}
	}
}

// Close closes the reader
func (r *Reader) Close() error {
	// Use atomic CAS to ensure only one Close can succeed
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return nil
	}
	return r.consumer.Close()
}

// rebalanceLogger logs partition assignment changes and applies the default
// assignment behavior
func (r *Reader) rebalanceLogger(consumer *kafka.Consumer, event kafka.Event) error {
	switch e := event.(type) {
	case kafka.AssignedPartitions:
		r.logger.Info("partitions assigned: %v", e.Partitions)
		return consumer.Assign(e.Partitions)
	case kafka.RevokedPartitions:
		r.logger.Info("partitions revoked: %v", e.Partitions)
		return consumer.Unassign()
	}
	return nil
}

// convertMessage converts kafka.Message to Message
func convertMessage(msg *kafka.Message) *Message {
	var headers Headers
	if len(msg.Headers) > 0 {
		headers = make(Headers, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = h.Value
		}
	}

	return &Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Partition: msg.TopicPartition.Partition,
		Offset:    int64(msg.TopicPartition.Offset),
		Timestamp: msg.Timestamp,
		Topic:     *msg.TopicPartition.Topic,
	}
}

// pollWait bounds a single poll by the remaining timeout budget. The wait
// must never go negative: librdkafka treats a negative poll timeout as
// "block forever".
func pollWait(interval, remaining time.Duration) time.Duration {
	if remaining <= 0 {
		return 0
	}
	if remaining < interval {
		return remaining
	}
	return interval
}

func offsetReset(fromBeginning bool) string {
	if fromBeginning {
		return "earliest"
	}
	return "latest"
}
