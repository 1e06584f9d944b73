package kafka

import (
	"context"
	"fmt"
	"time"
)

// Headers is a map of header key-value pairs
type Headers map[string][]byte

// Message represents a Kafka message
type Message struct {
	Key       []byte
	Value     []byte
	Headers   Headers
	Partition int32
	Offset    int64
	Timestamp time.Time
	Topic     string
}

// PartitionAny represents any partition
const PartitionAny int32 = -1

// TopicSpec describes a topic to create
type TopicSpec struct {
	Name              string
	Partitions        int
	ReplicationFactor int
}

func (s TopicSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("topic name is required")
	}
	if s.Partitions < 1 {
		return fmt.Errorf("partition count must be positive, got %d", s.Partitions)
	}
	if s.ReplicationFactor < 1 {
		return fmt.Errorf("replication factor must be positive, got %d", s.ReplicationFactor)
	}
	return nil
}

// TopicInfo is the result of a topic metadata query
type TopicInfo struct {
	Name       string
	Partitions []PartitionInfo
}

// PartitionInfo describes one partition of a topic
type PartitionInfo struct {
	ID       int32
	Leader   int32
	Replicas int
	ISRs     int
}

// DeliveryReport is the outcome of a single produced message.
// Err is nil when the broker acknowledged the message.
type DeliveryReport struct {
	Topic     string
	Partition int32
	Offset    int64
	Err       error
}

// StopReason reports why a reader run terminated
type StopReason int

const (
	// StopTimeout - the configured timeout elapsed since the last received message
	StopTimeout StopReason = iota
	// StopMaxReached - the configured maximum message count was received
	StopMaxReached
	// StopInterrupted - the context was cancelled
	StopInterrupted
	// StopError - an unrecoverable error terminated the run
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopTimeout:
		return "timeout"
	case StopMaxReached:
		return "max-reached"
	case StopInterrupted:
		return "interrupted"
	case StopError:
		return "error"
	default:
		return "unknown"
	}
}

// RunResult summarizes a terminated reader run
type RunResult struct {
	Received int
	Reason   StopReason
}

// MessageHandler handles a single message
type MessageHandler func(ctx context.Context, msg *Message) error

// Acks configuration for producer acknowledgment
type Acks int

const (
	// AcksNone - No acknowledgment
	AcksNone Acks = 0
	// AcksLeader - Leader acknowledgment only
	AcksLeader Acks = 1
	// AcksAll - All replicas acknowledgment
	AcksAll Acks = -1
)

// Compression types for message compression
type Compression int

const (
	// CompressionNone - No compression
	CompressionNone Compression = 0
	// CompressionGZIP - GZIP compression
	CompressionGZIP Compression = 1
	// CompressionSnappy - Snappy compression
	CompressionSnappy Compression = 2
	// CompressionLZ4 - LZ4 compression
	CompressionLZ4 Compression = 3
	// CompressionZSTD - ZSTD compression
	CompressionZSTD Compression = 4
)

// PartitionAssignor represents partition assignment strategy
type PartitionAssignor string

const (
	// AssignorRange assigns partitions based on ranges
	AssignorRange PartitionAssignor = "range"
	// AssignorRoundRobin assigns partitions in round-robin fashion
	AssignorRoundRobin PartitionAssignor = "roundrobin"
	// AssignorCooperativeSticky uses cooperative rebalancing with sticky assignment
	AssignorCooperativeSticky PartitionAssignor = "cooperative-sticky"
)

// HealthStatus represents health check status
type HealthStatus string

const (
	// HealthStatusUp indicates the cluster is reachable
	HealthStatusUp HealthStatus = "UP"
	// HealthStatusDown indicates the cluster is unreachable
	HealthStatusDown HealthStatus = "DOWN"
)

// HealthResult represents a cluster reachability probe result
type HealthResult struct {
	Status  HealthStatus
	Brokers int
	Topics  int
}

// LogLevel represents logging level
type LogLevel int

const (
	// LogLevelNone - No logging
	LogLevelNone LogLevel = 0
	// LogLevelError - Error level
	LogLevelError LogLevel = 1
	// LogLevelWarn - Warning level
	LogLevelWarn LogLevel = 2
	// LogLevelInfo - Info level
	LogLevelInfo LogLevel = 3
	// LogLevelDebug - Debug level
	LogLevelDebug LogLevel = 4
)
