package radio

import "fmt"

// Status is the health classification of the radio link.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
)

// String returns the status name used in logs and metric labels.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// KeyValue is one formatted diagnostic field of a health report.
type KeyValue struct {
	Key   string
	Value string
}

// HealthReport is the operator-facing classification of the link plus its
// formatted diagnostic fields.
type HealthReport struct {
	Status  Status
	Message string
	Values  []KeyValue
}

// SiK/3DR modems report RSSI on a raw 0-255 scale; the conversion to dBm is
// the affine mapping documented for the hardware and must not be changed.
const (
	dbmDivisor = 1.9
	dbmOffset  = -127
)

// RSSIToDBm converts a raw 0-255 receiver signal value to dBm.
func RSSIToDBm(raw uint8) float64 {
	return float64(raw)/dbmDivisor + dbmOffset
}

// classify derives the health status from a snapshot. The threshold is
// compared on the raw unit; a value equal to the threshold is not low.
func classify(f StatusFields, hasData bool, lowRSSI uint8) (Status, string) {
	switch {
	case !hasData:
		return StatusCritical, "No data"
	case f.RSSI < lowRSSI:
		return StatusWarning, "Low RSSI"
	case f.RemRSSI < lowRSSI:
		return StatusWarning, "Low remote RSSI"
	default:
		return StatusOK, "Normal"
	}
}

// diagnosticValues formats the snapshot fields for operator display. Raw
// values are unsigned integers; the two derived dBm values get one decimal.
func diagnosticValues(f StatusFields) []KeyValue {
	return []KeyValue{
		{"RSSI", fmt.Sprintf("%d", f.RSSI)},
		{"RSSI (dBm)", fmt.Sprintf("%.1f", RSSIToDBm(f.RSSI))},
		{"Remote RSSI", fmt.Sprintf("%d", f.RemRSSI)},
		{"Remote RSSI (dBm)", fmt.Sprintf("%.1f", RSSIToDBm(f.RemRSSI))},
		{"Tx buffer (%)", fmt.Sprintf("%d", f.TxBuf)},
		{"Noise level", fmt.Sprintf("%d", f.Noise)},
		{"Remote noise level", fmt.Sprintf("%d", f.RemNoise)},
		{"Rx errors", fmt.Sprintf("%d", f.RxErrors)},
		{"Fixed", fmt.Sprintf("%d", f.Fixed)},
	}
}
