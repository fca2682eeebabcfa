package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/ports"
)

// Config describes how to connect to a Kafka cluster for consuming scripts.
//
// Messages are JSON objects {"id", "name", "source", "limits"}; a message of
// type "done" ends the stream.
type Config struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

var _ ports.ScriptProducer = (*Consumer)(nil)

// Consumer wraps a kafka-go reader to implement ports.ScriptProducer.
// After a "done" message it stops reading and keeps returning io.EOF.
type Consumer struct {
	reader messageReader

	mu   sync.Mutex
	done bool
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// NewConsumer builds a new Consumer from the provided configuration.
func NewConsumer(cfg Config) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker must be provided")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic must be provided")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "pyconsole-runner"
	}

	readerConfig := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  cfg.MaxWait,
	}

	if readerConfig.MinBytes == 0 {
		readerConfig.MinBytes = 1
	}
	if readerConfig.MaxBytes == 0 {
		readerConfig.MaxBytes = 10 * 1024 * 1024
	}
	if readerConfig.MaxWait == 0 {
		readerConfig.MaxWait = time.Second
	}

	return newConsumer(kafkago.NewReader(readerConfig)), nil
}

func newConsumer(reader messageReader) *Consumer {
	return &Consumer{reader: reader}
}

// NextScript blocks until the next script message is available in Kafka or the context is cancelled.
// It returns io.EOF once a "done" message is read. Malformed messages are
// reported with their topic, partition and offset.
func (c *Consumer) NextScript(ctx context.Context) (execution.Script, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return execution.Script{}, io.EOF
	}

	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return execution.Script{}, err
	}

	script, err := decodeScriptMessage(msg)
	switch {
	case errors.Is(err, io.EOF):
		c.done = true
		return execution.Script{}, io.EOF
	case err != nil:
		return execution.Script{}, fmt.Errorf("message %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	return script, nil
}

// Close releases the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
