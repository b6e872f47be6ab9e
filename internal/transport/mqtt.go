package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"groundlink.io/rlmon/internal/config"
	"groundlink.io/rlmon/internal/radio"
)

const connectTimeout = 10 * time.Second

// Handler receives each decoded message delivered by the transport.
type Handler interface {
	OnDecodedMessage(ctx context.Context, msg radio.DecodedMessage)
}

// MQTTConsumer subscribes to the decoded-status topic and dispatches each
// message to the handler on paho's delivery goroutine.
type MQTTConsumer struct {
	cfg     config.MQTTTransportConfig
	handler Handler
	client  paho.Client

	ctx    context.Context
	cancel context.CancelFunc

	// Statistics
	deliveredCount atomic.Uint64
	malformedCount atomic.Uint64
}

// NewMQTTConsumer creates a consumer dispatching to the given handler.
func NewMQTTConsumer(cfg config.MQTTTransportConfig, handler Handler) *MQTTConsumer {
	return &MQTTConsumer{
		cfg:     cfg,
		handler: handler,
	}
}

// Start connects to the broker and subscribes.
func (c *MQTTConsumer) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	clientID := c.cfg.ClientID
	if clientID == "" {
		bytes := make([]byte, 8)
		rand.Read(bytes)
		clientID = "rlmon_sub_" + hex.EncodeToString(bytes)
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.cfg.Broker)
	opts.SetClientID(clientID)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
	}
	if c.cfg.Password != "" {
		opts.SetPassword(c.cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	// Re-subscribe on every (re)connect so a broker restart does not leave
	// the consumer silent.
	opts.SetOnConnectHandler(func(client paho.Client) {
		slog.Info("transport connected, subscribing", "broker", c.cfg.Broker, "topic", c.cfg.Topic)
		token := client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			slog.Error("transport subscribe failed", "topic", c.cfg.Topic, "error", err)
		}
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		slog.Warn("transport connection lost", "error", err)
	})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout connecting to mqtt broker %s", c.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	return nil
}

// onMessage runs on paho's delivery goroutine for every received payload.
func (c *MQTTConsumer) onMessage(client paho.Client, m paho.Message) {
	msg, err := ParseMessage(m.Payload())
	if err != nil {
		// Well-formedness is the upstream decoder's contract; anything
		// unparseable here is foreign traffic on the topic.
		c.malformedCount.Add(1)
		slog.Warn("dropping malformed status message", "topic", m.Topic(), "error", err)
		return
	}

	c.deliveredCount.Add(1)
	c.handler.OnDecodedMessage(c.ctx, msg)
}

// Stop unsubscribes and disconnects.
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.client != nil && c.client.IsConnected() {
		token := c.client.Unsubscribe(c.cfg.Topic)
		token.WaitTimeout(time.Second)
		c.client.Disconnect(250)
	}

	slog.Info("transport stopped",
		"total_delivered", c.deliveredCount.Load(),
		"total_malformed", c.malformedCount.Load(),
	)
	return nil
}
