package signal

import (
	"bytes"
	"encoding/json"

	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	UserName string `json:"userName"`
}

// handleJoin accepts either {roomId, userName?} or a bare room id string.
func (ctl *SignalWSController) handleJoin(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p joinPayload
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &p.RoomID); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad join payload")
			return
		}
		if err := ctl.validate.Struct(&p); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("invalid join payload")
			return
		}
	} else if !ctl.decode(id, "join-room", raw, &p) {
		return
	}

	ctl.Orch.Join(domain.RoomID(p.RoomID), id, p.UserName)
}

type kickPayload struct {
	RoomID       string `json:"roomId"`
	UserIDToKick string `json:"userIdToKick" validate:"required"`
}

func (ctl *SignalWSController) handleKick(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p kickPayload
	if !ctl.decode(id, "kick-user", raw, &p) {
		return
	}
	ctl.Orch.RequestKick(domain.RoomID(p.RoomID), id, domain.ConnID(p.UserIDToKick))
}
