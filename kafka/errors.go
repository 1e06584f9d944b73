package kafka

import (
	"errors"
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// ConnectionError indicates that no broker was reachable within the
// configured timeout. It is fatal for the current invocation.
type ConnectionError struct {
	Brokers []string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("no broker reachable at %s: %v", strings.Join(e.Brokers, ","), e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AdminError indicates a failed admin operation. It carries the
// broker-provided error code and reason.
type AdminError struct {
	Topic string
	Code  kafka.ErrorCode
	Err   error
}

func (e *AdminError) Error() string {
	return fmt.Sprintf("admin operation on topic %q failed: %v", e.Topic, e.Err)
}

func (e *AdminError) Unwrap() error { return e.Err }

// AlreadyExists reports whether the error is a topic-already-exists rejection
func (e *AdminError) AlreadyExists() bool {
	return e.Code == kafka.ErrTopicAlreadyExists
}

// ProduceError aggregates per-message delivery failures. Individual failures
// do not abort remaining sends; they are collected and summarized at exit.
type ProduceError struct {
	Failed int
	Total  int
}

func (e *ProduceError) Error() string {
	return fmt.Sprintf("%d/%d messages failed to deliver", e.Failed, e.Total)
}

// PollError wraps a transient consumer poll failure. Poll errors are logged
// and retried within the remaining timeout budget.
type PollError struct {
	Err error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll failed: %v", e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// isTransportErr reports whether err indicates the cluster is unreachable
func isTransportErr(err error) bool {
	var kerr kafka.Error
	if !errors.As(err, &kerr) {
		return false
	}
	switch kerr.Code() {
	case kafka.ErrTransport, kafka.ErrAllBrokersDown:
		return true
	}
	return kerr.IsFatal()
}

// isTimedOut reports whether err is the client's local timeout: a normal
// empty poll on the consumer, an unanswered request on the admin client
func isTimedOut(err error) bool {
	var kerr kafka.Error
	return errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut
}
