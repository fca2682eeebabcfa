package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/ports"
)

var _ ports.ReportPublisher = (*Publisher)(nil)

// PublisherConfig configures the Kafka-based report publisher.
type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// Publisher publishes console, script and installation reports to a single
// Kafka topic. Every envelope carries a "kind" field naming its report type.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewPublisher constructs a Publisher using the supplied configuration.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker must be provided")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic must be provided")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
	}

	return newPublisher(writer), nil
}

func newPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

// PublishRunReport serializes and writes a headless script report, keyed by script ID.
func (p *Publisher) PublishRunReport(ctx context.Context, report execution.RunReport) error {
	return p.write(ctx, report.Script.ID, makeRunEnvelope(report, p.timestamp()))
}

// PublishConsoleReport writes an interactive run report, keyed by session ID.
func (p *Publisher) PublishConsoleReport(ctx context.Context, report execution.ConsoleReport) error {
	return p.write(ctx, report.SessionID, makeConsoleEnvelope(report, p.timestamp()))
}

// PublishInstallReport writes a package installation report, keyed by session ID.
func (p *Publisher) PublishInstallReport(ctx context.Context, report execution.InstallReport) error {
	return p.write(ctx, report.SessionID, makeInstallEnvelope(report, p.timestamp()))
}

func (p *Publisher) write(ctx context.Context, key string, envelope any) error {
	if p.writer == nil {
		return fmt.Errorf("publisher is not initialized")
	}

	payload, err := encode(envelope)
	if err != nil {
		return err
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  p.timestamp(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	return nil
}

func (p *Publisher) timestamp() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

// Close releases the underlying Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
