// Package sink defines the publication sink interface and the fan-out
// composite that delivers each status report to every configured sink.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"groundlink.io/rlmon/internal/metrics"
	"groundlink.io/rlmon/internal/radio"
)

// Sink delivers status reports to an external system.
type Sink interface {
	// Name returns the sink name used in logs and metric labels.
	Name() string
	// Start establishes connections. Must be called before Publish.
	Start(ctx context.Context) error
	// Publish delivers one report. Reports are never batched; at most one
	// Publish per accepted inbound message.
	Publish(ctx context.Context, report *radio.StatusReport) error
	// Stop flushes and releases resources.
	Stop(ctx context.Context) error
}

// DecodeOptions decodes a sink's option map into its typed config.
// Duration fields accept Go duration strings ("200ms").
func DecodeOptions(options map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("create options decoder: %w", err)
	}
	if err := dec.Decode(options); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}

// Fanout publishes every report to all member sinks. It satisfies the
// adapter's Publisher interface.
type Fanout struct {
	sinks []Sink
}

// NewFanout creates a fan-out over the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Start starts all member sinks. Fails on the first error; already started
// sinks are stopped again.
func (f *Fanout) Start(ctx context.Context) error {
	for i, s := range f.sinks {
		if err := s.Start(ctx); err != nil {
			for _, started := range f.sinks[:i] {
				if stopErr := started.Stop(ctx); stopErr != nil {
					slog.Error("error stopping sink during startup rollback",
						"sink", started.Name(), "error", stopErr)
				}
			}
			return fmt.Errorf("start sink %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Publish delivers the report to every sink. A failing sink does not stop
// delivery to the others; all failures are joined into the returned error.
func (f *Fanout) Publish(ctx context.Context, report *radio.StatusReport) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, report); err != nil {
			metrics.ReportErrorsTotal.WithLabelValues(s.Name()).Inc()
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
			continue
		}
		metrics.ReportsPublishedTotal.WithLabelValues(s.Name()).Inc()
	}
	return errors.Join(errs...)
}

// Stop stops all member sinks, returning the joined errors.
func (f *Fanout) Stop(ctx context.Context) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
