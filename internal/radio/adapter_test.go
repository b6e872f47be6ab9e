package radio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capturePublisher records every published report.
type capturePublisher struct {
	mu      sync.Mutex
	reports []*StatusReport
	err     error // returned from Publish when set
}

func (p *capturePublisher) Publish(ctx context.Context, report *StatusReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, report)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reports)
}

func (p *capturePublisher) last() *StatusReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.reports) == 0 {
		return nil
	}
	return p.reports[len(p.reports)-1]
}

func statusMessage(kind MessageKind, rssi uint8) DecodedMessage {
	return DecodedMessage{
		Kind:   kind,
		Fields: StatusFields{RSSI: rssi, RemRSSI: 200},
		SysID:  '3',
		CompID: 'D',
	}
}

func TestAdapter_NoDataBeforeFirstMessage(t *testing.T) {
	a := NewAdapter(AdapterConfig{}, nil)

	// Stable under repeated calls.
	for i := 0; i < 3; i++ {
		report := a.ProduceHealthReport()
		assert.Equal(t, StatusCritical, report.Status)
		assert.Equal(t, "No data", report.Message)
	}
}

func TestAdapter_AcceptedMessagePublishesExactFields(t *testing.T) {
	pub := &capturePublisher{}
	a := NewAdapter(AdapterConfig{}, pub)

	a.OnDecodedMessage(context.Background(), DecodedMessage{
		Kind: KindRadioStatus,
		Fields: StatusFields{
			RSSI:     50,
			RemRSSI:  60,
			TxBuf:    90,
			Noise:    10,
			RemNoise: 12,
			RxErrors: 0,
			Fixed:    0,
		},
		SysID:  '3',
		CompID: 'D',
	})

	assert.Equal(t, 1, pub.count())
	report := pub.last()
	assert.Equal(t, uint8(50), report.RSSI)
	assert.Equal(t, uint8(60), report.RemRSSI)
	assert.Equal(t, uint8(90), report.TxBuf)
	assert.Equal(t, uint8(10), report.Noise)
	assert.Equal(t, uint8(12), report.RemNoise)
	assert.Equal(t, uint16(0), report.RxErrors)
	assert.Equal(t, uint16(0), report.Fixed)
	assert.False(t, report.Timestamp.IsZero())

	health := a.ProduceHealthReport()
	assert.Equal(t, StatusOK, health.Status)
	assert.Equal(t, "Normal", health.Message)
}

func TestAdapter_LegacyLockout(t *testing.T) {
	pub := &capturePublisher{}
	a := NewAdapter(AdapterConfig{}, pub)
	ctx := context.Background()

	// Legacy first: processed normally.
	a.OnDecodedMessage(ctx, statusMessage(KindRadio, 20))
	assert.Equal(t, 1, pub.count())

	// Primary locks the kind selection.
	a.OnDecodedMessage(ctx, statusMessage(KindRadioStatus, 50))
	assert.Equal(t, 2, pub.count())

	// Later legacy message: silent no-op, neither sample nor publication move.
	a.OnDecodedMessage(ctx, statusMessage(KindRadio, 5))
	assert.Equal(t, 2, pub.count())

	fields, hasData := a.sample.Snapshot()
	assert.True(t, hasData)
	assert.Equal(t, uint8(50), fields.RSSI)

	stats := a.GetStats()
	assert.Equal(t, uint64(2), stats.Accepted)
	assert.Equal(t, uint64(1), stats.Discarded)
}

func TestAdapter_PrimaryIdempotentAfterLock(t *testing.T) {
	pub := &capturePublisher{}
	a := NewAdapter(AdapterConfig{}, pub)
	ctx := context.Background()

	a.OnDecodedMessage(ctx, statusMessage(KindRadioStatus, 50))
	a.OnDecodedMessage(ctx, statusMessage(KindRadioStatus, 60))

	assert.Equal(t, 2, pub.count())
	fields, _ := a.sample.Snapshot()
	assert.Equal(t, uint8(60), fields.RSSI, "last primary message wins")
}

func TestAdapter_IdentityAdvisoryThrottled(t *testing.T) {
	a := NewAdapter(AdapterConfig{}, nil)
	ctx := context.Background()

	msg := statusMessage(KindRadioStatus, 50)
	msg.SysID = 1
	msg.CompID = 1

	for i := 0; i < 100; i++ {
		a.OnDecodedMessage(ctx, msg)
	}

	stats := a.GetStats()
	assert.Equal(t, uint64(1), stats.Advisories, "advisory must fire once per window")
	// The mismatch never blocks processing.
	assert.Equal(t, uint64(100), stats.Accepted)
}

func TestAdapter_CustomIdentityAccepted(t *testing.T) {
	a := NewAdapter(AdapterConfig{ExpectedSysID: 7, ExpectedCompID: 9}, nil)

	msg := statusMessage(KindRadioStatus, 50)
	msg.SysID = 7
	msg.CompID = 9
	a.OnDecodedMessage(context.Background(), msg)

	assert.Equal(t, uint64(0), a.GetStats().Advisories)
}

func TestAdapter_PublishErrorDoesNotPropagate(t *testing.T) {
	pub := &capturePublisher{err: errors.New("sink down")}
	a := NewAdapter(AdapterConfig{}, pub)

	// Must not panic and must still apply the update.
	a.OnDecodedMessage(context.Background(), statusMessage(KindRadioStatus, 50))

	_, hasData := a.sample.Snapshot()
	assert.True(t, hasData)
}

func TestAdapter_UnknownKindIgnored(t *testing.T) {
	pub := &capturePublisher{}
	a := NewAdapter(AdapterConfig{}, pub)

	a.OnDecodedMessage(context.Background(), DecodedMessage{Kind: MessageKind(99)})

	assert.Equal(t, 0, pub.count())
	_, hasData := a.sample.Snapshot()
	assert.False(t, hasData)
}

func threshold(v uint8) *uint8 { return &v }

func TestAdapter_HealthReportThreshold(t *testing.T) {
	a := NewAdapter(AdapterConfig{LowRSSI: threshold(40)}, nil)
	ctx := context.Background()

	msg := statusMessage(KindRadioStatus, 39)
	a.OnDecodedMessage(ctx, msg)

	report := a.ProduceHealthReport()
	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, "Low RSSI", report.Message)

	// Recovery back above the threshold.
	a.OnDecodedMessage(ctx, statusMessage(KindRadioStatus, 40))
	report = a.ProduceHealthReport()
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, "Normal", report.Message)
}

func TestAdapter_UnsetThresholdUsesDefault(t *testing.T) {
	a := NewAdapter(AdapterConfig{}, nil)

	a.OnDecodedMessage(context.Background(), statusMessage(KindRadioStatus, DefaultLowRSSI-1))

	report := a.ProduceHealthReport()
	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, "Low RSSI", report.Message)
}

func TestAdapter_ZeroThresholdNeverWarns(t *testing.T) {
	a := NewAdapter(AdapterConfig{LowRSSI: threshold(0)}, nil)
	ctx := context.Background()

	// With an explicit zero threshold even a dead link classifies Normal.
	msg := statusMessage(KindRadioStatus, 0)
	msg.Fields.RemRSSI = 0
	a.OnDecodedMessage(ctx, msg)

	report := a.ProduceHealthReport()
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, "Normal", report.Message)
}

func TestAdapter_ConcurrentMessagesAndReports(t *testing.T) {
	a := NewAdapter(AdapterConfig{}, &capturePublisher{})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			kind := KindRadioStatus
			if i%2 == 0 {
				kind = KindRadio
			}
			a.OnDecodedMessage(ctx, statusMessage(kind, uint8(i%256)))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			report := a.ProduceHealthReport()
			assert.NotEmpty(t, report.Message)
		}
	}()

	wg.Wait()
}
