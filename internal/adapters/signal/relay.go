package signal

import (
	"encoding/json"

	"github.com/dkeye/meshcall/internal/adapters/rtc"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

type signalPayload struct {
	RoomID string          `json:"roomId"`
	Signal json.RawMessage `json:"signal" validate:"required"`
	To     string          `json:"to" validate:"required"`
}

type keyExchangePayload struct {
	RoomID    string          `json:"roomId"`
	PublicKey json.RawMessage `json:"publicKey" validate:"required"`
	To        string          `json:"to" validate:"required"`
}

func (ctl *SignalWSController) handleRelay(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p signalPayload
	if !ctl.decode(id, "signal", raw, &p) {
		return
	}

	info := rtc.ClassifySignal(p.Signal)
	log.Debug().
		Str("module", "signal").
		Str("conn", string(id)).
		Str("to", p.To).
		Str("kind", string(info.Kind)).
		Int("m_sections", info.MediaSections).
		Msg("signal relayed")

	ctl.Orch.RelaySignal(id, domain.ConnID(p.To), p.Signal)
}

func (ctl *SignalWSController) handleKeyExchange(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p keyExchangePayload
	if !ctl.decode(id, "key-exchange", raw, &p) {
		return
	}
	log.Debug().Str("module", "signal").Str("conn", string(id)).Str("to", p.To).Msg("key exchanged")
	ctl.Orch.RelayKeyExchange(id, domain.ConnID(p.To), p.PublicKey)
}
