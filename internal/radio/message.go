// Package radio implements the radio link telemetry adapter: it consumes
// decoded modem status messages, keeps the latest link-quality sample and
// classifies link health.
package radio

// MessageKind identifies which wire format a decoded status message came from.
// Both kinds carry the same link-quality fields; KindRadio is emitted by
// earlier modem firmware only.
type MessageKind uint8

const (
	// KindRadioStatus is the current RADIO_STATUS frame.
	KindRadioStatus MessageKind = iota
	// KindRadio is the legacy RADIO frame from earlier modems.
	KindRadio
)

// String returns the kind name used in logs and metric labels.
func (k MessageKind) String() string {
	switch k {
	case KindRadioStatus:
		return "radio_status"
	case KindRadio:
		return "radio"
	default:
		return "unknown"
	}
}

// StatusFields carries the link-quality fields reported by both message kinds.
// RSSI and noise values are in the modem's raw 0-255 receiver unit.
type StatusFields struct {
	RSSI     uint8  // local receive signal strength
	RemRSSI  uint8  // signal strength measured by the remote modem
	TxBuf    uint8  // transmit buffer occupancy, percent
	Noise    uint8  // local background noise floor
	RemNoise uint8  // remote background noise floor
	RxErrors uint16 // receive errors since link start
	Fixed    uint16 // errors corrected by FEC
}

// DecodedMessage is one decoded status frame plus its envelope identity.
// Field validation is the decoder's responsibility; the adapter only checks
// the sender identity, and only as an advisory.
type DecodedMessage struct {
	Kind   MessageKind
	Fields StatusFields
	SysID  uint8
	CompID uint8
}
