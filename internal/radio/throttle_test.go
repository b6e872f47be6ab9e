package radio

import (
	"testing"
	"time"
)

func TestThrottle_FirstEventPasses(t *testing.T) {
	th := NewThrottle(30 * time.Second)
	if !th.Allow(time.Now()) {
		t.Fatal("first event was throttled")
	}
}

func TestThrottle_OnePerWindow(t *testing.T) {
	th := NewThrottle(30 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// 100 events within one second: exactly one passes.
	allowed := 0
	for i := 0; i < 100; i++ {
		if th.Allow(base.Add(time.Duration(i) * 10 * time.Millisecond)) {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("allowed %d events in one window, want 1", allowed)
	}
}

func TestThrottle_WindowElapses(t *testing.T) {
	th := NewThrottle(30 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if !th.Allow(base) {
		t.Fatal("first event throttled")
	}
	if th.Allow(base.Add(29 * time.Second)) {
		t.Error("event inside window passed")
	}
	if !th.Allow(base.Add(30 * time.Second)) {
		t.Error("event at window boundary throttled")
	}
	// Window restarts from the last allowed event, not the first.
	if th.Allow(base.Add(31 * time.Second)) {
		t.Error("event inside restarted window passed")
	}
}
