package radio

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"groundlink.io/rlmon/internal/metrics"
)

// Default construction values matching SiK/3DR modem firmware: status frames
// are stamped with the ASCII identity pair '3'/'D'.
const (
	DefaultLowRSSI          = 40
	DefaultExpectedSysID    = '3'
	DefaultExpectedCompID   = 'D'
	DefaultAdvisoryInterval = 30 * time.Second
)

// Publisher is the publication sink the adapter hands accepted status
// reports to.
type Publisher interface {
	Publish(ctx context.Context, report *StatusReport) error
}

// StatusReport is the outbound record published once per accepted message.
type StatusReport struct {
	RSSI      uint8     `json:"rssi"`
	RemRSSI   uint8     `json:"remrssi"`
	TxBuf     uint8     `json:"txbuf"`
	Noise     uint8     `json:"noise"`
	RemNoise  uint8     `json:"remnoise"`
	RxErrors  uint16    `json:"rxerrors"`
	Fixed     uint16    `json:"fixed"`
	Timestamp time.Time `json:"timestamp"`
}

// AdapterConfig contains construction-time settings for the adapter.
type AdapterConfig struct {
	// LowRSSI is the warning threshold on the raw 0-255 unit. Nil = use
	// DefaultLowRSSI; an explicit zero means signal levels never warn.
	LowRSSI *uint8
	// ExpectedSysID/ExpectedCompID identify the modem the telemetry should
	// originate from. Both zero = use the SiK/3DR defaults.
	ExpectedSysID  uint8
	ExpectedCompID uint8
	// AdvisoryInterval caps identity-mismatch warnings to one per window.
	// Zero or negative = DefaultAdvisoryInterval.
	AdvisoryInterval time.Duration
}

// Adapter receives decoded radio status messages, maintains the latest
// link-quality sample and publishes each accepted sample. Its methods are
// safe for concurrent use: OnDecodedMessage may run on the transport
// goroutine while ProduceHealthReport runs on the diagnostics goroutine.
type Adapter struct {
	sample    *Sample
	publisher Publisher

	lowRSSI        uint8
	expectedSysID  uint8
	expectedCompID uint8

	// hasRadioStatus latches once a primary-kind message has been seen.
	// One-way false→true; a concurrent double-set is idempotent.
	hasRadioStatus atomic.Bool

	advisory *Throttle

	// Statistics
	acceptedCount  atomic.Uint64
	discardedCount atomic.Uint64
	advisoryCount  atomic.Uint64
}

// NewAdapter creates an adapter publishing accepted samples to pub.
// A nil pub disables publication; health reporting still works.
func NewAdapter(cfg AdapterConfig, pub Publisher) *Adapter {
	lowRSSI := uint8(DefaultLowRSSI)
	if cfg.LowRSSI != nil {
		lowRSSI = *cfg.LowRSSI
	}
	if cfg.ExpectedSysID == 0 && cfg.ExpectedCompID == 0 {
		cfg.ExpectedSysID = DefaultExpectedSysID
		cfg.ExpectedCompID = DefaultExpectedCompID
	}
	if cfg.AdvisoryInterval <= 0 {
		cfg.AdvisoryInterval = DefaultAdvisoryInterval
	}

	return &Adapter{
		sample:         NewSample(),
		publisher:      pub,
		lowRSSI:        lowRSSI,
		expectedSysID:  cfg.ExpectedSysID,
		expectedCompID: cfg.ExpectedCompID,
		advisory:       NewThrottle(cfg.AdvisoryInterval),
	}
}

// Name identifies the adapter's health task in diagnostics output.
func (a *Adapter) Name() string {
	return "radio_link"
}

// OnDecodedMessage is the single entry point for decoded wire data.
//
// A primary-kind message always processes and permanently locks out the
// legacy kind; a legacy message arriving after the lock is a silent no-op.
// This keeps a stale legacy-format frame from overwriting data already
// supplied by the richer message kind.
func (a *Adapter) OnDecodedMessage(ctx context.Context, msg DecodedMessage) {
	metrics.StatusMessagesTotal.WithLabelValues(msg.Kind.String()).Inc()

	switch msg.Kind {
	case KindRadioStatus:
		a.hasRadioStatus.Store(true)
	case KindRadio:
		if a.hasRadioStatus.Load() {
			a.discardedCount.Add(1)
			metrics.StatusMessagesDiscardedTotal.Inc()
			return
		}
	default:
		slog.Debug("ignoring status message of unknown kind", "kind", uint8(msg.Kind))
		return
	}

	// Diagnostic hint only; a mismatch never blocks the update.
	if msg.SysID != a.expectedSysID || msg.CompID != a.expectedCompID {
		if a.advisory.Allow(time.Now()) {
			a.advisoryCount.Add(1)
			metrics.IdentityAdvisoriesTotal.Inc()
			slog.Warn("radio status not from expected modem",
				"sysid", msg.SysID,
				"compid", msg.CompID,
				"expected_sysid", a.expectedSysID,
				"expected_compid", a.expectedCompID,
			)
		}
	}

	a.sample.ApplyUpdate(msg.Fields)
	a.acceptedCount.Add(1)

	if a.publisher == nil {
		return
	}

	report := &StatusReport{
		RSSI:      msg.Fields.RSSI,
		RemRSSI:   msg.Fields.RemRSSI,
		TxBuf:     msg.Fields.TxBuf,
		Noise:     msg.Fields.Noise,
		RemNoise:  msg.Fields.RemNoise,
		RxErrors:  msg.Fields.RxErrors,
		Fixed:     msg.Fields.Fixed,
		Timestamp: time.Now(),
	}
	if err := a.publisher.Publish(ctx, report); err != nil {
		slog.Error("failed to publish radio status report", "error", err)
	}
}

// ProduceHealthReport classifies the latest sample. Read-only; callable
// arbitrarily often and concurrently with OnDecodedMessage.
func (a *Adapter) ProduceHealthReport() HealthReport {
	fields, hasData := a.sample.Snapshot()
	status, message := classify(fields, hasData, a.lowRSSI)
	return HealthReport{
		Status:  status,
		Message: message,
		Values:  diagnosticValues(fields),
	}
}

// Stats reports adapter counters.
type Stats struct {
	Accepted   uint64
	Discarded  uint64
	Advisories uint64
}

// GetStats returns a snapshot of the adapter counters.
func (a *Adapter) GetStats() Stats {
	return Stats{
		Accepted:   a.acceptedCount.Load(),
		Discarded:  a.discardedCount.Load(),
		Advisories: a.advisoryCount.Load(),
	}
}
