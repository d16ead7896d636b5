package dispatch

import (
	"context"
	"fmt"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/skillsenselab/transcriptflow/logger"
)

// Publisher delivers one serialized chunk message to the queue and
// returns only after the queue has confirmed it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
	Close() error
}

// KafkaPublisher publishes chunk messages through a kafka-go Writer.
type KafkaPublisher struct {
	writer *kafkago.Writer
	cfg    Config
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher for the configured topic.
func NewKafkaPublisher(cfg Config, log *logger.Logger) (*KafkaPublisher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch publisher config: %w", err)
	}

	p := &KafkaPublisher{cfg: cfg, log: log.WithComponent("dispatch.kafka")}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Transport:    &kafkago.Transport{DialTimeout: ParseDuration(cfg.DialTimeout)},
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: ParseDuration(cfg.BatchTimeout),
		WriteTimeout: ParseDuration(cfg.WriteTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  resolveCompression(cfg.Compression),
		ErrorLogger:  kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: "+msg, map[string]interface{}{
				"args": fmt.Sprintf("%v", args),
			})
		}),
	}

	p.log.Info("Dispatch publisher initialized", map[string]interface{}{
		"brokers":          cfg.Brokers,
		logger.FieldTopic:  cfg.Topic,
	})
	return p, nil
}

// Publish sends one message keyed by chunk id. Hash balancing keeps
// retried chunks on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte("transcript.chunk")},
		},
	})
}

// Close shuts down the underlying writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func resolveCompression(name string) kafkago.Compression {
	switch name {
	case "gzip":
		return kafkago.Gzip
	case "snappy":
		return kafkago.Snappy
	case "lz4":
		return kafkago.Lz4
	case "zstd":
		return kafkago.Zstd
	default:
		return 0
	}
}
