package kafka

import (
	"time"
)

// ReaderConfig holds all reader configuration
type ReaderConfig struct {
	// Connection
	Brokers []string
	GroupID string
	Topics  []string

	// SSL/SASL authentication
	SSL  bool
	SASL *SASLConfig

	// Termination bounds. Timeout is measured since the last received
	// message (or since start, if none); NoTimeout blocks indefinitely.
	// MaxMessages of 0 means unlimited.
	Timeout     time.Duration
	MaxMessages int

	// Polling
	PollInterval time.Duration

	// Session
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration

	// Commit settings
	AutoCommit         bool
	AutoCommitInterval time.Duration
	FromBeginning      bool

	// Partition assignment
	PartitionAssignor PartitionAssignor

	// Tracing
	Tracing *TracingConfig

	// Logging
	LogLevel LogLevel
	Logger   Logger
}

// ReaderOption is a function that configures the reader
type ReaderOption func(*ReaderConfig)

// ==================== Reader Options ====================

// ReaderWithBrokers sets the Kafka broker addresses for the reader
func ReaderWithBrokers(brokers ...string) ReaderOption {
	return func(c *ReaderConfig) {
		c.Brokers = brokers
	}
}

// ReaderWithSSL enables SSL for the reader
func ReaderWithSSL(enabled bool) ReaderOption {
	return func(c *ReaderConfig) {
		c.SSL = enabled
	}
}

// ReaderWithSASL sets SASL authentication for the reader
func ReaderWithSASL(sasl *SASLConfig) ReaderOption {
	return func(c *ReaderConfig) {
		c.SASL = sasl
	}
}

// WithGroupID sets the consumer group ID
func WithGroupID(groupID string) ReaderOption {
	return func(c *ReaderConfig) {
		c.GroupID = groupID
	}
}

// WithTopics sets the topics to consume
func WithTopics(topics ...string) ReaderOption {
	return func(c *ReaderConfig) {
		c.Topics = topics
	}
}

// WithTimeout bounds how long the reader waits for the next message before
// terminating. Pass NoTimeout to block until interrupted.
func WithTimeout(timeout time.Duration) ReaderOption {
	return func(c *ReaderConfig) {
		c.Timeout = timeout
	}
}

// WithMaxMessages stops the reader after n messages; 0 means unlimited
func WithMaxMessages(n int) ReaderOption {
	return func(c *ReaderConfig) {
		c.MaxMessages = n
	}
}

// WithPollInterval sets the per-poll wait inside the consume loop
func WithPollInterval(interval time.Duration) ReaderOption {
	return func(c *ReaderConfig) {
		c.PollInterval = interval
	}
}

// WithSessionTimeout sets the session timeout
func WithSessionTimeout(timeout time.Duration) ReaderOption {
	return func(c *ReaderConfig) {
		c.SessionTimeout = timeout
	}
}

// WithHeartbeatInterval sets the heartbeat interval
func WithHeartbeatInterval(interval time.Duration) ReaderOption {
	return func(c *ReaderConfig) {
		c.HeartbeatInterval = interval
	}
}

// WithAutoCommit sets auto commit
func WithAutoCommit(enabled bool) ReaderOption {
	return func(c *ReaderConfig) {
		c.AutoCommit = enabled
	}
}

// WithAutoCommitInterval sets auto commit interval
func WithAutoCommitInterval(interval time.Duration) ReaderOption {
	return func(c *ReaderConfig) {
		c.AutoCommitInterval = interval
	}
}

// WithFromBeginning sets the initial offset-reset policy to earliest. This
// only affects consumer groups without previously committed offsets.
func WithFromBeginning(enabled bool) ReaderOption {
	return func(c *ReaderConfig) {
		c.FromBeginning = enabled
	}
}

// WithPartitionAssignor sets the partition assignment strategy
func WithPartitionAssignor(assignor PartitionAssignor) ReaderOption {
	return func(c *ReaderConfig) {
		c.PartitionAssignor = assignor
	}
}

// ReaderWithTracing sets tracing configuration for the reader
func ReaderWithTracing(tracing *TracingConfig) ReaderOption {
	return func(c *ReaderConfig) {
		c.Tracing = tracing
	}
}

// ReaderWithLogLevel sets the log level for the reader
func ReaderWithLogLevel(level LogLevel) ReaderOption {
	return func(c *ReaderConfig) {
		c.LogLevel = level
	}
}

// ReaderWithLogger sets a custom logger for the reader
func ReaderWithLogger(logger Logger) ReaderOption {
	return func(c *ReaderConfig) {
		c.Logger = logger
	}
}

// newDefaultReaderConfig creates a new reader config with default values
func newDefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		Timeout:            DefaultReadTimeout,
		PollInterval:       DefaultPollInterval,
		SessionTimeout:     DefaultSessionTimeout,
		HeartbeatInterval:  DefaultHeartbeatInterval,
		AutoCommit:         true,
		AutoCommitInterval: DefaultAutoCommitInterval,
		PartitionAssignor:  AssignorRange,
		LogLevel:           LogLevelInfo,
	}
}
