// Package console implements the console debug sink.
// Outputs status reports to stdout for debugging and local operation.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"groundlink.io/rlmon/internal/radio"
	"groundlink.io/rlmon/internal/sink"
)

func init() {
	sink.Register("console", func(options map[string]any) (sink.Sink, error) {
		return New(options)
	})
}

// Sink outputs status reports to the console.
type Sink struct {
	name   string
	format string // "json" or "text"
	out    io.Writer

	reportedCount atomic.Uint64
}

// Config represents console sink configuration.
type Config struct {
	Format string `mapstructure:"format"` // "json" or "text", default "text"
}

// New creates a console sink from its option map.
func New(options map[string]any) (*Sink, error) {
	cfg := Config{Format: "text"}
	if err := sink.DecodeOptions(options, &cfg); err != nil {
		return nil, err
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		return nil, fmt.Errorf("invalid format %q, must be json or text", cfg.Format)
	}
	return &Sink{
		name:   "console",
		format: cfg.Format,
		out:    os.Stdout,
	}, nil
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return s.name
}

// Start starts the sink.
func (s *Sink) Start(ctx context.Context) error {
	slog.Info("console sink started", "format", s.format)
	return nil
}

// Publish writes one report to the console.
func (s *Sink) Publish(ctx context.Context, report *radio.StatusReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}

	var err error
	switch s.format {
	case "json":
		var data []byte
		data, err = json.Marshal(report)
		if err == nil {
			_, err = fmt.Fprintln(s.out, string(data))
		}
	default:
		_, err = fmt.Fprintf(s.out,
			"[%s] rssi=%d remrssi=%d txbuf=%d%% noise=%d remnoise=%d rxerrors=%d fixed=%d\n",
			report.Timestamp.Format("15:04:05.000"),
			report.RSSI, report.RemRSSI, report.TxBuf,
			report.Noise, report.RemNoise, report.RxErrors, report.Fixed,
		)
	}
	if err != nil {
		return err
	}

	s.reportedCount.Add(1)
	return nil
}

// Stop stops the sink.
func (s *Sink) Stop(ctx context.Context) error {
	slog.Info("console sink stopped", "total_reported", s.reportedCount.Load())
	return nil
}
