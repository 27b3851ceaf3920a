package signal

import (
	"encoding/json"

	"github.com/dkeye/meshcall/internal/app/orch"
	"github.com/dkeye/meshcall/internal/domain"
)

type mutePayload struct {
	RoomID  string `json:"roomId"`
	IsMuted *bool  `json:"isMuted" validate:"required"`
}

type screenSharePayload struct {
	RoomID    string `json:"roomId"`
	IsSharing *bool  `json:"isSharing" validate:"required"`
}

type peerStatePayload struct {
	PeerID string `json:"peerId" validate:"required"`
}

func (ctl *SignalWSController) handleMuteStatus(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p mutePayload
	if !ctl.decode(id, "mute-status", raw, &p) {
		return
	}
	ctl.Orch.BroadcastStatus(domain.RoomID(p.RoomID), id, orch.StatusMuted, *p.IsMuted)
}

func (ctl *SignalWSController) handleScreenShareStatus(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p screenSharePayload
	if !ctl.decode(id, "screen-share-status", raw, &p) {
		return
	}
	ctl.Orch.BroadcastStatus(domain.RoomID(p.RoomID), id, orch.StatusScreenSharing, *p.IsSharing)
}

func (ctl *SignalWSController) handlePeerState(
	id domain.ConnID,
	raw json.RawMessage,
) {
	var p peerStatePayload
	if !ctl.decode(id, "request-peer-state", raw, &p) {
		return
	}
	ctl.Orch.RequestPeerState(id, domain.ConnID(p.PeerID))
}
