// Package kafka implements the Kafka publication sink.
// Sends status reports to Kafka with compression and retry support.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"groundlink.io/rlmon/internal/radio"
	"groundlink.io/rlmon/internal/sink"
)

const (
	defaultBatchTimeout = 100 * time.Millisecond
	defaultCompression  = "snappy"
	defaultMaxAttempts  = 3
)

func init() {
	sink.Register("kafka", func(options map[string]any) (sink.Sink, error) {
		return New(options)
	})
}

// Sink sends status reports to Kafka.
type Sink struct {
	name   string
	writer *kafka.Writer
	config Config

	// Statistics
	reportedCount atomic.Uint64
	errorCount    atomic.Uint64
}

// Config represents Kafka sink configuration.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`       // required
	Topic        string        `mapstructure:"topic"`         // required
	Key          string        `mapstructure:"key"`           // optional message key, default "radio_status"
	BatchTimeout time.Duration `mapstructure:"batch_timeout"` // optional, default 100ms
	Compression  string        `mapstructure:"compression"`   // optional: none|gzip|snappy|lz4, default snappy
	MaxAttempts  int           `mapstructure:"max_attempts"`  // optional, default 3
}

// New creates a Kafka sink from its option map.
func New(options map[string]any) (*Sink, error) {
	if options == nil {
		return nil, fmt.Errorf("kafka sink requires configuration")
	}

	cfg := Config{
		Key:          "radio_status",
		BatchTimeout: defaultBatchTimeout,
		Compression:  defaultCompression,
		MaxAttempts:  defaultMaxAttempts,
	}
	if err := sink.DecodeOptions(options, &cfg); err != nil {
		return nil, err
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	writerConfig := kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    1, // one report per accepted message, never batched
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		Async:        false, // synchronous for error handling
	}

	switch cfg.Compression {
	case "none", "":
		writerConfig.CompressionCodec = nil
	case "gzip":
		writerConfig.CompressionCodec = compress.Gzip.Codec()
	case "snappy":
		writerConfig.CompressionCodec = compress.Snappy.Codec()
	case "lz4":
		writerConfig.CompressionCodec = compress.Lz4.Codec()
	default:
		return nil, fmt.Errorf("invalid compression type: %s", cfg.Compression)
	}

	return &Sink{
		name:   "kafka",
		config: cfg,
		writer: kafka.NewWriter(writerConfig),
	}, nil
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return s.name
}

// Start starts the sink.
func (s *Sink) Start(ctx context.Context) error {
	slog.Info("kafka sink started",
		"brokers", s.config.Brokers,
		"topic", s.config.Topic,
		"compression", s.config.Compression,
	)
	return nil
}

// Stop flushes pending messages and closes the writer.
func (s *Sink) Stop(ctx context.Context) error {
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			slog.Error("error closing kafka writer", "error", err)
			return err
		}
	}

	slog.Info("kafka sink stopped",
		"total_reported", s.reportedCount.Load(),
		"total_errors", s.errorCount.Load(),
	)
	return nil
}

// Publish sends one status report to Kafka.
func (s *Sink) Publish(ctx context.Context, report *radio.StatusReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}

	value, err := json.Marshal(report)
	if err != nil {
		s.errorCount.Add(1)
		return fmt.Errorf("serialize report failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(s.config.Key),
		Value: value,
		Time:  report.Timestamp,
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.errorCount.Add(1)
		return fmt.Errorf("kafka write failed: %w", err)
	}

	s.reportedCount.Add(1)
	return nil
}
