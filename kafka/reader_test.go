package kafka

import (
	"context"
	"testing"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/require"
)

// fakePoller implements pollClient. It replays steps in order, then keeps
// returning empty-poll timeouts (or errAlways, if set).
type fakePoller struct {
	steps      []pollStep
	i          int
	errAlways  error
	subErr     error
	subscribed []string
	closed     bool
	negWaits   int // polls that arrived with a negative timeout
}

type pollStep struct {
	msg *ckafka.Message
	err error
}

func (f *fakePoller) SubscribeTopics(topics []string, rebalanceCb ckafka.RebalanceCb) error {
	f.subscribed = topics
	return f.subErr
}

func (f *fakePoller) ReadMessage(timeout time.Duration) (*ckafka.Message, error) {
	if timeout < 0 {
		f.negWaits++
	}
	if f.errAlways != nil {
		time.Sleep(time.Millisecond)
		return nil, f.errAlways
	}
	if f.i < len(f.steps) {
		step := f.steps[f.i]
		f.i++
		return step.msg, step.err
	}
	if timeout > 0 {
		time.Sleep(timeout)
	}
	return nil, ckafka.NewError(ckafka.ErrTimedOut, "Local: Timed out", false)
}

func (f *fakePoller) Close() error {
	f.closed = true
	return nil
}

func consumedMsg(topic string, partition int32, offset int64, key, value string) *ckafka.Message {
	return &ckafka.Message{
		TopicPartition: ckafka.TopicPartition{
			Topic:     &topic,
			Partition: partition,
			Offset:    ckafka.Offset(offset),
		},
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func newTestReader(poller pollClient, opts ...ReaderOption) *Reader {
	config := newDefaultReaderConfig()
	config.Brokers = []string{"127.0.0.1:9092"}
	config.GroupID = "demo-group"
	config.Topics = []string{"t1"}
	config.PollInterval = 5 * time.Millisecond
	for _, opt := range opts {
		opt(config)
	}
	return &Reader{
		consumer: poller,
		config:   config,
		logger:   NewNoopLogger(),
	}
}

func TestRunStopsAtMaxMessages(t *testing.T) {
	fake := &fakePoller{}
	for i := 0; i < 10; i++ {
		fake.steps = append(fake.steps, pollStep{msg: consumedMsg("t1", 0, int64(i), "k1", "hello")})
	}
	reader := newTestReader(fake, WithMaxMessages(5), WithTimeout(30*time.Second))

	var got []*Message
	result, err := reader.Run(context.Background(), func(ctx context.Context, msg *Message) error {
		got = append(got, msg)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, StopMaxReached, result.Reason)
	require.Equal(t, 5, result.Received)
	require.Len(t, got, 5)
	require.Equal(t, []string{"t1"}, fake.subscribed)
	require.Equal(t, int64(4), got[4].Offset)
}

func TestRunTimesOutWithoutMessages(t *testing.T) {
	fake := &fakePoller{}
	reader := newTestReader(fake, WithTimeout(50*time.Millisecond))

	start := time.Now()
	result, err := reader.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, StopTimeout, result.Reason)
	require.Zero(t, result.Received)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Zero(t, fake.negWaits)
}

func TestRunTimeoutMeasuredFromLastMessage(t *testing.T) {
	fake := &fakePoller{steps: []pollStep{
		{msg: consumedMsg("t1", 0, 0, "k1", "hello")},
	}}
	reader := newTestReader(fake, WithTimeout(60*time.Millisecond))

	result, err := reader.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, StopTimeout, result.Reason)
	require.Equal(t, 1, result.Received)
}

func TestRunInterrupted(t *testing.T) {
	fake := &fakePoller{}
	for i := 0; i < 100; i++ {
		fake.steps = append(fake.steps, pollStep{msg: consumedMsg("t1", 0, int64(i), "", "x")})
	}
	reader := newTestReader(fake, WithTimeout(NoTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	result, err := reader.Run(ctx, func(ctx context.Context, msg *Message) error {
		cancel()
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, StopInterrupted, result.Reason)
	require.Equal(t, 1, result.Received)
}

func TestRunInfiniteTimeoutStopsAtMax(t *testing.T) {
	fake := &fakePoller{}
	for i := 0; i < 10; i++ {
		fake.steps = append(fake.steps, pollStep{msg: consumedMsg("t1", 0, int64(i), "", "x")})
	}
	reader := newTestReader(fake, WithTimeout(NoTimeout), WithMaxMessages(3))

	result, err := reader.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, StopMaxReached, result.Reason)
	require.Equal(t, 3, result.Received)
}

func TestRunUnreachableCluster(t *testing.T) {
	fake := &fakePoller{
		errAlways: ckafka.NewError(ckafka.ErrAllBrokersDown, "Local: All broker connections are down", false),
	}
	reader := newTestReader(fake, WithTimeout(50*time.Millisecond))

	result, err := reader.Run(context.Background(), nil)
	require.Equal(t, StopError, result.Reason)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestRunTransientErrorsAreRetried(t *testing.T) {
	fake := &fakePoller{steps: []pollStep{
		{err: ckafka.NewError(ckafka.ErrTransport, "Local: Broker transport failure", false)},
		{err: ckafka.NewError(ckafka.ErrUnknownTopicOrPart, "Unknown topic or partition", false)},
		{msg: consumedMsg("t1", 1, 7, "k1", "hello")},
	}}
	reader := newTestReader(fake, WithTimeout(60*time.Millisecond))

	var got []*Message
	result, err := reader.Run(context.Background(), func(ctx context.Context, msg *Message) error {
		got = append(got, msg)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, StopTimeout, result.Reason)
	require.Equal(t, 1, result.Received)
	require.Len(t, got, 1)
	require.Equal(t, int32(1), got[0].Partition)
	require.Equal(t, int64(7), got[0].Offset)
	require.Equal(t, "hello", string(got[0].Value))
}

func TestRunSubscribeError(t *testing.T) {
	fake := &fakePoller{subErr: ckafka.NewError(ckafka.ErrInvalidArg, "invalid topic", false)}
	reader := newTestReader(fake)

	result, err := reader.Run(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, StopError, result.Reason)
}

func TestNewReaderValidation(t *testing.T) {
	_, err := NewReader()
	require.Error(t, err)
	require.Contains(t, err.Error(), "brokers")

	_, err = NewReader(ReaderWithBrokers("127.0.0.1:9092"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "group ID")

	_, err = NewReader(ReaderWithBrokers("127.0.0.1:9092"), WithGroupID("g"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "topic")
}

func TestReaderCloseIsIdempotent(t *testing.T) {
	fake := &fakePoller{}
	reader := newTestReader(fake)

	require.NoError(t, reader.Close())
	require.True(t, fake.closed)
	require.NoError(t, reader.Close())
}

func TestPollWaitBounds(t *testing.T) {
	interval := 100 * time.Millisecond
	// An expired deadline clamps to a non-blocking poll.
	require.Equal(t, time.Duration(0), pollWait(interval, -5*time.Millisecond))
	require.Equal(t, time.Duration(0), pollWait(interval, 0))
	require.Equal(t, 30*time.Millisecond, pollWait(interval, 30*time.Millisecond))
	require.Equal(t, interval, pollWait(interval, 200*time.Millisecond))
}

func TestOffsetReset(t *testing.T) {
	require.Equal(t, "earliest", offsetReset(true))
	require.Equal(t, "latest", offsetReset(false))
}

func TestConvertMessage(t *testing.T) {
	raw := consumedMsg("t1", 2, 42, "k1", "payload")
	raw.Headers = []ckafka.Header{{Key: "h1", Value: []byte("v1")}}
	raw.Timestamp = time.Unix(1700000000, 0)

	msg := convertMessage(raw)
	require.Equal(t, "t1", msg.Topic)
	require.Equal(t, int32(2), msg.Partition)
	require.Equal(t, int64(42), msg.Offset)
	require.Equal(t, "k1", string(msg.Key))
	require.Equal(t, "payload", string(msg.Value))
	require.Equal(t, []byte("v1"), msg.Headers["h1"])
	require.Equal(t, raw.Timestamp, msg.Timestamp)
}
