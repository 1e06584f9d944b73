package kafka

import (
	"time"
)

// ClientConfig holds producer and admin client configuration
type ClientConfig struct {
	// Connection
	Brokers           []string
	ClientID          string
	ConnectionTimeout time.Duration
	RequestTimeout    time.Duration
	AdminTimeout      time.Duration

	// SSL/SASL
	SSL  bool
	SASL *SASLConfig

	// Producer settings
	Acks        Acks
	Compression Compression
	Idempotent  bool

	// Partition selection
	Partitioner  Strategy
	StickyLinger time.Duration

	// Logging
	LogLevel LogLevel
	Logger   Logger

	// Tracing
	Tracing *TracingConfig
}

// SASLConfig holds SASL authentication configuration
type SASLConfig struct {
	Mechanism string
	Username  string
	Password  string
}

// TracingConfig holds OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled       bool
	TracerName    string
	TracerVersion string
}

// ClientOption is a function that configures the client
type ClientOption func(*ClientConfig)

// Default values
var (
	DefaultConnectionTimeout  = 10 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
	DefaultAdminTimeout       = 15 * time.Second
	DefaultStickyLinger       = 10 * time.Millisecond
	DefaultSessionTimeout     = 30 * time.Second
	DefaultHeartbeatInterval  = 3 * time.Second
	DefaultPollInterval       = 100 * time.Millisecond
	DefaultReadTimeout        = 30 * time.Second
	DefaultAutoCommitInterval = 5 * time.Second
)

// NoTimeout is the sentinel for "block indefinitely"
const NoTimeout time.Duration = -1

// ==================== Client Options ====================

// WithBrokers sets the Kafka broker addresses
func WithBrokers(brokers ...string) ClientOption {
	return func(c *ClientConfig) {
		c.Brokers = brokers
	}
}

// WithClientID sets the client ID
func WithClientID(clientID string) ClientOption {
	return func(c *ClientConfig) {
		c.ClientID = clientID
	}
}

// WithConnectionTimeout sets the connection timeout
func WithConnectionTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.ConnectionTimeout = timeout
	}
}

// WithRequestTimeout sets the request timeout
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RequestTimeout = timeout
	}
}

// WithAdminTimeout sets the timeout for admin operations
func WithAdminTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.AdminTimeout = timeout
	}
}

// WithSSL enables SSL
func WithSSL(enabled bool) ClientOption {
	return func(c *ClientConfig) {
		c.SSL = enabled
	}
}

// WithSASL sets SASL authentication
func WithSASL(sasl *SASLConfig) ClientOption {
	return func(c *ClientConfig) {
		c.SASL = sasl
	}
}

// WithAcks sets the acknowledgment level
func WithAcks(acks Acks) ClientOption {
	return func(c *ClientConfig) {
		c.Acks = acks
	}
}

// WithCompression sets the compression type
func WithCompression(compression Compression) ClientOption {
	return func(c *ClientConfig) {
		c.Compression = compression
	}
}

// WithIdempotent enables idempotent producer
func WithIdempotent(enabled bool) ClientOption {
	return func(c *ClientConfig) {
		c.Idempotent = enabled
	}
}

// WithPartitioner sets the partition selection strategy
func WithPartitioner(strategy Strategy) ClientOption {
	return func(c *ClientConfig) {
		c.Partitioner = strategy
	}
}

// WithStickyLinger sets the sticky partitioner linger window for keyless messages
func WithStickyLinger(linger time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.StickyLinger = linger
	}
}

// WithLogLevel sets the log level
func WithLogLevel(level LogLevel) ClientOption {
	return func(c *ClientConfig) {
		c.LogLevel = level
	}
}

// WithLogger sets a custom logger
func WithLogger(logger Logger) ClientOption {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithTracing sets tracing configuration
func WithTracing(tracing *TracingConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Tracing = tracing
	}
}

// ==================== Default Configs ====================

// newDefaultClientConfig creates a new client config with default values
func newDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ConnectionTimeout: DefaultConnectionTimeout,
		RequestTimeout:    DefaultRequestTimeout,
		AdminTimeout:      DefaultAdminTimeout,
		Acks:              AcksAll,
		Compression:       CompressionNone,
		Partitioner:       StrategyConsistent,
		StickyLinger:      DefaultStickyLinger,
		LogLevel:          LogLevelInfo,
	}
}
