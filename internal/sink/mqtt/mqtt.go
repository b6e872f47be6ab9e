// Package mqtt implements the MQTT publication sink.
package mqtt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"groundlink.io/rlmon/internal/radio"
	"groundlink.io/rlmon/internal/sink"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

func init() {
	sink.Register("mqtt", func(options map[string]any) (sink.Sink, error) {
		return New(options)
	})
}

// Sink publishes status reports to an MQTT broker.
type Sink struct {
	name   string
	config Config
	client paho.Client

	reportedCount atomic.Uint64
	errorCount    atomic.Uint64
}

// Config represents MQTT sink configuration.
type Config struct {
	Broker   string `mapstructure:"broker"`    // required, e.g. tcp://localhost:1883
	Topic    string `mapstructure:"topic"`     // required
	ClientID string `mapstructure:"client_id"` // empty = random
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	QoS      byte   `mapstructure:"qos"`
	Retain   bool   `mapstructure:"retain"`
}

// New creates an MQTT sink from its option map. The broker connection is
// established in Start.
func New(options map[string]any) (*Sink, error) {
	if options == nil {
		return nil, fmt.Errorf("mqtt sink requires configuration")
	}

	var cfg Config
	if err := sink.DecodeOptions(options, &cfg); err != nil {
		return nil, err
	}

	if cfg.Broker == "" {
		return nil, fmt.Errorf("broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("qos must be 0, 1 or 2")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = generateClientID()
	}

	return &Sink{
		name:   "mqtt",
		config: cfg,
	}, nil
}

// generateClientID creates a random client ID for the MQTT connection.
func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "rlmon_" + hex.EncodeToString(bytes)
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return s.name
}

// Start connects to the broker.
func (s *Sink) Start(ctx context.Context) error {
	opts := paho.NewClientOptions()
	opts.AddBroker(s.config.Broker)
	opts.SetClientID(s.config.ClientID)

	if s.config.Username != "" {
		opts.SetUsername(s.config.Username)
	}
	if s.config.Password != "" {
		opts.SetPassword(s.config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(client paho.Client) {
		slog.Info("mqtt sink connected", "broker", s.config.Broker)
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		slog.Warn("mqtt sink connection lost", "error", err)
	})

	s.client = paho.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout connecting to mqtt broker %s", s.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	slog.Info("mqtt sink started", "broker", s.config.Broker, "topic", s.config.Topic)
	return nil
}

// Publish sends one status report to the configured topic.
func (s *Sink) Publish(ctx context.Context, report *radio.StatusReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		s.errorCount.Add(1)
		return fmt.Errorf("serialize report failed: %w", err)
	}

	token := s.client.Publish(s.config.Topic, s.config.QoS, s.config.Retain, payload)

	// A wedged broker must not stall the delivery goroutine: wait for the
	// token, the caller's context, or the hard timeout, whichever is first.
	select {
	case <-token.Done():
	case <-ctx.Done():
		s.errorCount.Add(1)
		return fmt.Errorf("mqtt publish canceled: %w", ctx.Err())
	case <-time.After(publishTimeout):
		s.errorCount.Add(1)
		return fmt.Errorf("mqtt publish timed out after %s", publishTimeout)
	}
	if err := token.Error(); err != nil {
		s.errorCount.Add(1)
		return fmt.Errorf("mqtt publish failed: %w", err)
	}

	s.reportedCount.Add(1)
	return nil
}

// Stop disconnects from the broker.
func (s *Sink) Stop(ctx context.Context) error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250) // ms to wait for in-flight work
	}

	slog.Info("mqtt sink stopped",
		"total_reported", s.reportedCount.Load(),
		"total_errors", s.errorCount.Load(),
	)
	return nil
}
