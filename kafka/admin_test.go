package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/require"
)

func TestTopicSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TopicSpec
		wantErr bool
	}{
		{"valid", TopicSpec{Name: "test-topic", Partitions: 1, ReplicationFactor: 1}, false},
		{"many partitions", TopicSpec{Name: "t", Partitions: 12, ReplicationFactor: 3}, false},
		{"missing name", TopicSpec{Partitions: 1, ReplicationFactor: 1}, true},
		{"zero partitions", TopicSpec{Name: "t", Partitions: 0, ReplicationFactor: 1}, true},
		{"negative partitions", TopicSpec{Name: "t", Partitions: -1, ReplicationFactor: 1}, true},
		{"zero replication", TopicSpec{Name: "t", Partitions: 1, ReplicationFactor: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateTopicRejectsInvalidSpec(t *testing.T) {
	// Validation runs before any broker call, so no admin client is needed.
	a := &Admin{config: newDefaultClientConfig(), logger: NewNoopLogger()}

	err := a.CreateTopic(context.Background(), TopicSpec{Name: "", Partitions: 1, ReplicationFactor: 1})
	require.Error(t, err)

	err = a.CreateTopic(context.Background(), TopicSpec{Name: "t", Partitions: 0, ReplicationFactor: 1})
	require.Error(t, err)
}

func TestWrapAdminErrTaxonomy(t *testing.T) {
	a := &Admin{
		config: &ClientConfig{Brokers: []string{"127.0.0.1:9092"}},
		logger: NewNoopLogger(),
	}

	t.Run("already exists", func(t *testing.T) {
		err := a.wrapAdminErr("t", ckafka.NewError(ckafka.ErrTopicAlreadyExists, "Topic already exists", false))
		var adminErr *AdminError
		require.ErrorAs(t, err, &adminErr)
		require.True(t, adminErr.AlreadyExists())
		require.Equal(t, "t", adminErr.Topic)
	})

	t.Run("invalid replication factor", func(t *testing.T) {
		err := a.wrapAdminErr("t", ckafka.NewError(ckafka.ErrInvalidReplicationFactor, "Replication factor larger than available brokers", false))
		var adminErr *AdminError
		require.ErrorAs(t, err, &adminErr)
		require.False(t, adminErr.AlreadyExists())
		require.Equal(t, ckafka.ErrInvalidReplicationFactor, adminErr.Code)
	})

	t.Run("transport failure", func(t *testing.T) {
		err := a.wrapAdminErr("t", ckafka.NewError(ckafka.ErrTransport, "Local: Broker transport failure", false))
		var connErr *ConnectionError
		require.ErrorAs(t, err, &connErr)
		require.Equal(t, []string{"127.0.0.1:9092"}, connErr.Brokers)
	})

	t.Run("request timed out", func(t *testing.T) {
		err := a.wrapAdminErr("t", ckafka.NewError(ckafka.ErrTimedOut, "Local: Timed out", false))
		var connErr *ConnectionError
		require.ErrorAs(t, err, &connErr)
	})

	t.Run("context deadline", func(t *testing.T) {
		err := a.wrapAdminErr("t", fmt.Errorf("create topics: %w", context.DeadlineExceeded))
		var connErr *ConnectionError
		require.ErrorAs(t, err, &connErr)
	})

	t.Run("plain error", func(t *testing.T) {
		err := a.wrapAdminErr("t", errors.New("boom"))
		var adminErr *AdminError
		require.ErrorAs(t, err, &adminErr)
		require.False(t, adminErr.AlreadyExists())
	})
}

func TestErrorMessages(t *testing.T) {
	connErr := &ConnectionError{Brokers: []string{"a:9092", "b:9092"}, Err: errors.New("down")}
	require.Contains(t, connErr.Error(), "a:9092")
	require.ErrorIs(t, connErr, connErr.Err)

	prodErr := &ProduceError{Failed: 2, Total: 5}
	require.Contains(t, prodErr.Error(), "2/5")
}

func TestNewAdminRequiresBrokers(t *testing.T) {
	_, err := NewAdmin()
	require.Error(t, err)
	require.Contains(t, err.Error(), "brokers")
}
