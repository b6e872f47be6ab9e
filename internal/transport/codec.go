// Package transport implements the inbound channel that delivers decoded
// radio status messages to the adapter. The heavy lifting — turning raw
// radio bytes into typed fields — happens upstream; this package only
// unwraps the JSON envelope the decoder publishes.
package transport

import (
	"encoding/json"
	"fmt"

	"groundlink.io/rlmon/internal/radio"
)

// wireMessage is the JSON envelope produced by the upstream decoder.
type wireMessage struct {
	Kind     string `json:"kind"` // "radio_status" | "radio"
	RSSI     uint8  `json:"rssi"`
	RemRSSI  uint8  `json:"remrssi"`
	TxBuf    uint8  `json:"txbuf"`
	Noise    uint8  `json:"noise"`
	RemNoise uint8  `json:"remnoise"`
	RxErrors uint16 `json:"rxerrors"`
	Fixed    uint16 `json:"fixed"`
	SysID    uint8  `json:"sysid"`
	CompID   uint8  `json:"compid"`
}

// ParseMessage decodes one JSON envelope into a DecodedMessage.
func ParseMessage(data []byte) (radio.DecodedMessage, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return radio.DecodedMessage{}, fmt.Errorf("unmarshal status message: %w", err)
	}

	var kind radio.MessageKind
	switch w.Kind {
	case "radio_status":
		kind = radio.KindRadioStatus
	case "radio":
		kind = radio.KindRadio
	default:
		return radio.DecodedMessage{}, fmt.Errorf("unknown message kind %q", w.Kind)
	}

	return radio.DecodedMessage{
		Kind: kind,
		Fields: radio.StatusFields{
			RSSI:     w.RSSI,
			RemRSSI:  w.RemRSSI,
			TxBuf:    w.TxBuf,
			Noise:    w.Noise,
			RemNoise: w.RemNoise,
			RxErrors: w.RxErrors,
			Fixed:    w.Fixed,
		},
		SysID:  w.SysID,
		CompID: w.CompID,
	}, nil
}
