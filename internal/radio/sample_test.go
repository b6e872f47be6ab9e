package radio

import (
	"sync"
	"testing"
)

func TestSample_ZeroValue(t *testing.T) {
	s := NewSample()

	fields, hasData := s.Snapshot()
	if hasData {
		t.Fatal("fresh sample reports hasData=true")
	}
	if fields != (StatusFields{}) {
		t.Errorf("fresh sample fields: got %+v, want zero", fields)
	}
}

func TestSample_ApplyUpdateRoundTrip(t *testing.T) {
	s := NewSample()
	in := StatusFields{
		RSSI:     50,
		RemRSSI:  60,
		TxBuf:    90,
		Noise:    10,
		RemNoise: 12,
		RxErrors: 3,
		Fixed:    7,
	}

	s.ApplyUpdate(in)

	got, hasData := s.Snapshot()
	if !hasData {
		t.Fatal("hasData=false after ApplyUpdate")
	}
	if got != in {
		t.Errorf("round trip: got %+v, want %+v", got, in)
	}
}

func TestSample_LastWriteWins(t *testing.T) {
	s := NewSample()

	s.ApplyUpdate(StatusFields{RSSI: 20, RxErrors: 100})
	s.ApplyUpdate(StatusFields{RSSI: 50})

	got, _ := s.Snapshot()
	if got.RSSI != 50 {
		t.Errorf("RSSI: got %d, want 50", got.RSSI)
	}
	// Full overwrite, no merging of the earlier error count.
	if got.RxErrors != 0 {
		t.Errorf("RxErrors: got %d, want 0", got.RxErrors)
	}
}

// TestSample_ConcurrentAccess hammers the sample from writer and reader
// goroutines. Run with -race; a torn read would also show up as a snapshot
// mixing values from different updates.
func TestSample_ConcurrentAccess(t *testing.T) {
	s := NewSample()

	const iterations = 1000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			v := uint8(i % 256)
			s.ApplyUpdate(StatusFields{
				RSSI:     v,
				RemRSSI:  v,
				Noise:    v,
				RemNoise: v,
			})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			fields, hasData := s.Snapshot()
			if !hasData {
				continue
			}
			if fields.RemRSSI != fields.RSSI || fields.Noise != fields.RSSI {
				t.Errorf("torn snapshot: %+v", fields)
				return
			}
		}
	}()

	wg.Wait()
}
