package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Admin wraps the cluster admin API for topic management and metadata queries
type Admin struct {
	admin  *kafka.AdminClient
	config *ClientConfig
	logger Logger
}

// NewAdmin creates a new admin client
func NewAdmin(opts ...ClientOption) (*Admin, error) {
	config := newDefaultClientConfig()
	for _, opt := range opts {
		opt(config)
	}

	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(config.Brokers, ","),
	}
	setSecurity(configMap, config.SSL, config.SASL)

	admin, err := kafka.NewAdminClient(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin client: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = NewDefaultLogger(config.LogLevel)
	}

	return &Admin{
		admin:  admin,
		config: config,
		logger: logger,
	}, nil
}

// CreateTopic requests creation of a topic on the cluster. It fails with an
// AdminError when the broker rejects the request (topic exists, replication
// factor exceeds available nodes) and with a ConnectionError when no broker
// answers within the admin timeout.
func (a *Admin) CreateTopic(ctx context.Context, spec TopicSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.AdminTimeout)
	defer cancel()

	results, err := a.admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             spec.Name,
		NumPartitions:     spec.Partitions,
		ReplicationFactor: spec.ReplicationFactor,
	}})
	if err != nil {
		return a.wrapAdminErr(spec.Name, err)
	}

	for _, res := range results {
		if res.Error.Code() != kafka.ErrNoError {
			return &AdminError{Topic: res.Topic, Code: res.Error.Code(), Err: res.Error}
		}
	}

	a.logger.Info("created topic %q (partitions=%d, replication=%d)",
		spec.Name, spec.Partitions, spec.ReplicationFactor)
	return nil
}

// TopicMetadata queries the cluster for a topic's partition layout
func (a *Admin) TopicMetadata(ctx context.Context, topic string) (*TopicInfo, error) {
	metadata, err := a.admin.GetMetadata(&topic, false, int(a.metadataTimeout(ctx).Milliseconds()))
	if err != nil {
		return nil, a.wrapAdminErr(topic, err)
	}

	meta, ok := metadata.Topics[topic]
	if !ok {
		return nil, &AdminError{Topic: topic, Code: kafka.ErrUnknownTopic, Err: fmt.Errorf("topic not found")}
	}
	if meta.Error.Code() != kafka.ErrNoError {
		return nil, &AdminError{Topic: topic, Code: meta.Error.Code(), Err: meta.Error}
	}

	info := &TopicInfo{Name: topic, Partitions: make([]PartitionInfo, 0, len(meta.Partitions))}
	for _, p := range meta.Partitions {
		info.Partitions = append(info.Partitions, PartitionInfo{
			ID:       p.ID,
			Leader:   p.Leader,
			Replicas: len(p.Replicas),
			ISRs:     len(p.Isrs),
		})
	}
	return info, nil
}

// Check probes cluster reachability
func (a *Admin) Check(ctx context.Context) (*HealthResult, error) {
	metadata, err := a.admin.GetMetadata(nil, true, int(a.metadataTimeout(ctx).Milliseconds()))
	if err != nil {
		return &HealthResult{Status: HealthStatusDown}, &ConnectionError{Brokers: a.config.Brokers, Err: err}
	}

	if len(metadata.Brokers) == 0 {
		return &HealthResult{Status: HealthStatusDown}, &ConnectionError{
			Brokers: a.config.Brokers,
			Err:     fmt.Errorf("no brokers available"),
		}
	}

	return &HealthResult{
		Status:  HealthStatusUp,
		Brokers: len(metadata.Brokers),
		Topics:  len(metadata.Topics),
	}, nil
}

// Close closes the admin client
func (a *Admin) Close() {
	a.admin.Close()
}

// metadataTimeout bounds a metadata call by the admin timeout and any
// context deadline
func (a *Admin) metadataTimeout(ctx context.Context) time.Duration {
	timeout := a.config.AdminTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// wrapAdminErr maps a raw client error into the package error types
func (a *Admin) wrapAdminErr(topic string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTransportErr(err) || isTimedOut(err) {
		return &ConnectionError{Brokers: a.config.Brokers, Err: err}
	}
	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return &AdminError{Topic: topic, Code: kerr.Code(), Err: err}
	}
	return &AdminError{Topic: topic, Err: err}
}
