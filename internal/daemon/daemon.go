// Package daemon implements the daemon lifecycle manager.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"groundlink.io/rlmon/internal/config"
	"groundlink.io/rlmon/internal/diag"
	logpkg "groundlink.io/rlmon/internal/log"
	"groundlink.io/rlmon/internal/metrics"
	"groundlink.io/rlmon/internal/radio"
	"groundlink.io/rlmon/internal/sink"
	"groundlink.io/rlmon/internal/transport"

	// Register sink types with the factory.
	_ "groundlink.io/rlmon/internal/sink/console"
	_ "groundlink.io/rlmon/internal/sink/kafka"
	_ "groundlink.io/rlmon/internal/sink/mqtt"
)

// Daemon manages the rlmon daemon process lifecycle.
type Daemon struct {
	config     *config.GlobalConfig
	configPath string

	// Core components
	adapter       *radio.Adapter
	fanout        *sink.Fanout
	consumer      *transport.MQTTConsumer // nil if transport disabled
	updater       *diag.Updater           // nil if diagnostics disabled
	metricsServer *metrics.Server         // nil if metrics disabled

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Daemon instance.
func New(configPath string) (*Daemon, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	d := &Daemon{
		config:     cfg,
		configPath: configPath,
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())

	return d, nil
}

// Run starts all components and blocks until a termination signal arrives.
func (d *Daemon) Run() error {
	if err := d.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("received signal, shutting down", "signal", sig.String())

	return d.Stop()
}

// Start initializes and starts all daemon components.
func (d *Daemon) Start() error {
	// 1. Initialize logging system
	if err := logpkg.Init(d.config.Log); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	slog.Info("starting rlmon daemon",
		"version", "0.1.0",
		"config", d.configPath,
	)

	// 2. Write PID file
	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	// 3. Start metrics server
	if d.config.Metrics.Enabled {
		d.metricsServer = metrics.NewServer(d.config.Metrics.Listen, d.config.Metrics.Path)
		if err := d.metricsServer.Start(d.ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// 4. Build publication sinks
	sinks, err := sink.Build(d.config.Sinks)
	if err != nil {
		return fmt.Errorf("failed to build sinks: %w", err)
	}
	d.fanout = sink.NewFanout(sinks...)
	if err := d.fanout.Start(d.ctx); err != nil {
		return fmt.Errorf("failed to start sinks: %w", err)
	}

	// 5. Create the radio link adapter
	d.adapter = radio.NewAdapter(radio.AdapterConfig{
		LowRSSI:          &d.config.Radio.LowRSSI,
		ExpectedSysID:    d.config.Radio.ExpectedSysID,
		ExpectedCompID:   d.config.Radio.ExpectedCompID,
		AdvisoryInterval: d.config.Radio.AdvisoryInterval,
	}, d.fanout)

	// 6. Start the diagnostics updater
	if d.config.Diagnostics.Enabled {
		d.updater = diag.NewUpdater(d.config.Diagnostics.Interval)
		d.updater.Add(d.adapter)
		d.updater.Start(d.ctx)
	}

	// 7. Start the inbound transport
	if d.config.Transport.Type == "mqtt" {
		d.consumer = transport.NewMQTTConsumer(d.config.Transport.MQTT, d.adapter)
		if err := d.consumer.Start(d.ctx); err != nil {
			return fmt.Errorf("failed to start transport: %w", err)
		}
	}

	slog.Info("rlmon daemon started")
	return nil
}

// Stop shuts down all components in reverse start order.
func (d *Daemon) Stop() error {
	slog.Info("stopping rlmon daemon")

	// Stop inbound traffic first so sinks can drain.
	if d.consumer != nil {
		if err := d.consumer.Stop(d.ctx); err != nil {
			slog.Error("error stopping transport", "error", err)
		}
	}

	if d.updater != nil {
		d.updater.Stop()
	}

	if d.fanout != nil {
		if err := d.fanout.Stop(d.ctx); err != nil {
			slog.Error("error stopping sinks", "error", err)
		}
	}

	if d.metricsServer != nil {
		if err := d.metricsServer.Stop(d.ctx); err != nil {
			slog.Error("error stopping metrics server", "error", err)
		}
	}

	d.cancel()
	d.removePIDFile()

	if d.adapter != nil {
		stats := d.adapter.GetStats()
		slog.Info("rlmon daemon stopped",
			"accepted", stats.Accepted,
			"discarded", stats.Discarded,
			"advisories", stats.Advisories,
		)
	}
	return nil
}

// writePIDFile writes the current process ID to the configured PID file.
func (d *Daemon) writePIDFile() error {
	if d.config.PIDFile == "" {
		return nil
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(d.config.PIDFile, []byte(pid), 0644); err != nil {
		return fmt.Errorf("write %s: %w", d.config.PIDFile, err)
	}
	return nil
}

// removePIDFile removes the PID file if it was written.
func (d *Daemon) removePIDFile() {
	if d.config.PIDFile == "" {
		return
	}
	if err := os.Remove(d.config.PIDFile); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove PID file", "path", d.config.PIDFile, "error", err)
	}
}
