package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loipv/kafkautil/kafka"
)

func TestBrokerList(t *testing.T) {
	orig := bootstrapServers
	defer func() { bootstrapServers = orig }()

	bootstrapServers = "127.0.0.1:9092"
	require.Equal(t, []string{"127.0.0.1:9092"}, brokerList())

	bootstrapServers = "a:9092, b:9093 ,,c:9094"
	require.Equal(t, []string{"a:9092", "b:9093", "c:9094"}, brokerList())
}

func TestTimeoutFromSeconds(t *testing.T) {
	require.Equal(t, kafka.NoTimeout, timeoutFromSeconds(-1))
	require.Equal(t, time.Duration(0), timeoutFromSeconds(0))
	require.Equal(t, 1500*time.Millisecond, timeoutFromSeconds(1.5))
	require.Equal(t, 30*time.Second, timeoutFromSeconds(30))
}

func TestTracingConfigFollowsFlag(t *testing.T) {
	orig := enableTracing
	defer func() { enableTracing = orig }()

	enableTracing = false
	require.Nil(t, tracingConfig())

	enableTracing = true
	cfg := tracingConfig()
	require.NotNil(t, cfg)
	require.True(t, cfg.Enabled)
}

func TestFlagDefaults(t *testing.T) {
	requireDefault := func(cmd string, flag string, want string) {
		t.Helper()
		c, _, err := rootCmd.Find([]string{cmd})
		require.NoError(t, err)
		f := c.Flags().Lookup(flag)
		require.NotNil(t, f, "flag --%s on %s", flag, cmd)
		require.Equal(t, want, f.DefValue, "flag --%s on %s", flag, cmd)
	}

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("bootstrap-servers"))
	require.Equal(t, "127.0.0.1:9092", rootCmd.PersistentFlags().Lookup("bootstrap-servers").DefValue)
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("trace"))
	require.Equal(t, "false", rootCmd.PersistentFlags().Lookup("trace").DefValue)

	requireDefault("create-topic", "topic", "test-topic")
	requireDefault("create-topic", "partitions", "1")
	requireDefault("create-topic", "replication-factor", "1")

	requireDefault("produce", "topic", "test-topic")
	requireDefault("produce", "count", "1")
	requireDefault("produce", "key", "")
	requireDefault("produce", "partitioner", "consistent")
	requireDefault("produce", "sticky-linger-ms", "10")

	requireDefault("consume", "topic", "test-topic")
	requireDefault("consume", "group-id", "demo-group")
	requireDefault("consume", "timeout", "30")
	requireDefault("consume", "max-messages", "0")
	requireDefault("consume", "from-beginning", "false")
}
