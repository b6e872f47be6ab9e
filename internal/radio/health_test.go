package radio

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		fields      StatusFields
		hasData     bool
		lowRSSI     uint8
		wantStatus  Status
		wantMessage string
	}{
		{
			name:        "no data",
			hasData:     false,
			lowRSSI:     40,
			wantStatus:  StatusCritical,
			wantMessage: "No data",
		},
		{
			name:        "low local rssi",
			fields:      StatusFields{RSSI: 39, RemRSSI: 200},
			hasData:     true,
			lowRSSI:     40,
			wantStatus:  StatusWarning,
			wantMessage: "Low RSSI",
		},
		{
			name:        "low remote rssi",
			fields:      StatusFields{RSSI: 200, RemRSSI: 39},
			hasData:     true,
			lowRSSI:     40,
			wantStatus:  StatusWarning,
			wantMessage: "Low remote RSSI",
		},
		{
			name:        "boundary equal to threshold is not low",
			fields:      StatusFields{RSSI: 40, RemRSSI: 40},
			hasData:     true,
			lowRSSI:     40,
			wantStatus:  StatusOK,
			wantMessage: "Normal",
		},
		{
			name:        "normal",
			fields:      StatusFields{RSSI: 200, RemRSSI: 180},
			hasData:     true,
			lowRSSI:     40,
			wantStatus:  StatusOK,
			wantMessage: "Normal",
		},
		{
			name: "local checked before remote",
			// Both below threshold: the local warning wins.
			fields:      StatusFields{RSSI: 10, RemRSSI: 10},
			hasData:     true,
			lowRSSI:     40,
			wantStatus:  StatusWarning,
			wantMessage: "Low RSSI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := classify(tt.fields, tt.hasData, tt.lowRSSI)
			if status != tt.wantStatus {
				t.Errorf("status: got %v, want %v", status, tt.wantStatus)
			}
			if message != tt.wantMessage {
				t.Errorf("message: got %q, want %q", message, tt.wantMessage)
			}
		})
	}
}

func TestRSSIToDBm(t *testing.T) {
	tests := []struct {
		raw  uint8
		want float64
	}{
		{0, -127.0},
		{255, 255/1.9 - 127}, // ≈ 7.2
		{95, 95/1.9 - 127},   // ≈ -77.0
	}

	for _, tt := range tests {
		got := RSSIToDBm(tt.raw)
		if math.Abs(got-tt.want) > 0.05 {
			t.Errorf("RSSIToDBm(%d): got %f, want %f", tt.raw, got, tt.want)
		}
	}
}

func TestDiagnosticValues_Formatting(t *testing.T) {
	values := diagnosticValues(StatusFields{
		RSSI:     0,
		RemRSSI:  95,
		TxBuf:    90,
		Noise:    10,
		RemNoise: 12,
		RxErrors: 3,
		Fixed:    7,
	})

	want := []KeyValue{
		{"RSSI", "0"},
		{"RSSI (dBm)", "-127.0"},
		{"Remote RSSI", "95"},
		{"Remote RSSI (dBm)", "-77.0"},
		{"Tx buffer (%)", "90"},
		{"Noise level", "10"},
		{"Remote noise level", "12"},
		{"Rx errors", "3"},
		{"Fixed", "7"},
	}

	if len(values) != len(want) {
		t.Fatalf("got %d values, want %d", len(values), len(want))
	}
	for i, kv := range values {
		if kv != want[i] {
			t.Errorf("values[%d]: got %v, want %v", i, kv, want[i])
		}
	}
}

func TestStatus_String(t *testing.T) {
	if StatusOK.String() != "ok" || StatusWarning.String() != "warning" || StatusCritical.String() != "critical" {
		t.Errorf("unexpected status names: %s/%s/%s", StatusOK, StatusWarning, StatusCritical)
	}
	if Status(42).String() != "unknown" {
		t.Errorf("Status(42): got %s, want unknown", Status(42))
	}
}
