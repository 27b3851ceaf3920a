package orch

import (
	"encoding/json"

	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/core"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

type StatusKind int

const (
	StatusMuted StatusKind = iota
	StatusScreenSharing
)

func (k StatusKind) String() string {
	if k == StatusScreenSharing {
		return "screen_sharing"
	}
	return "muted"
}

// RelaySignal forwards a session description or ICE candidate to one peer.
// The recipient is trusted as given; no membership check is made.
func (o *Orchestrator) RelaySignal(from, to domain.ConnID, signal json.RawMessage) {
	o.Transport.Emit(to, core.EvSignal, core.SignalOut{Signal: signal, From: from})
}

// RelayKeyExchange forwards end-to-end key material to one peer, with the
// same trust model as RelaySignal.
func (o *Orchestrator) RelayKeyExchange(from, to domain.ConnID, publicKey json.RawMessage) {
	o.Transport.Emit(to, core.EvKeyExchange, core.KeyExchangeOut{PublicKey: publicKey, From: from})
}

// BroadcastStatus records a mute or screen-share change and echoes it to
// the whole room, sender included. It reports whether conn was found.
func (o *Orchestrator) BroadcastStatus(roomID domain.RoomID, conn domain.ConnID, kind StatusKind, value bool) bool {
	found := false
	o.Registry.Txn(func(tx *app.Tx) {
		room, p, ok := resolve(tx, roomID, conn)
		if !ok {
			return
		}
		found = true

		switch kind {
		case StatusMuted:
			p.IsMuted = value
			o.Transport.EmitRoom(room.ID, "", core.EvPeerMuteStatus, core.PeerMuteStatus{
				UserID:   conn,
				UserName: p.DisplayName,
				IsMuted:  value,
			})
		case StatusScreenSharing:
			p.IsScreenSharing = value
			o.Transport.EmitRoom(room.ID, "", core.EvPeerScreenShareStatus, core.PeerScreenShareStatus{
				UserID:    conn,
				UserName:  p.DisplayName,
				IsSharing: value,
			})
			o.Transport.EmitRoom(room.ID, "", core.EvPeerStreamRefresh, core.PeerStreamRefresh{UserID: conn})
		}
	})

	if !found {
		log.Debug().Str("module", "app.orch").Str("conn", string(conn)).Str("kind", kind.String()).Msg("status for unknown participant")
	}
	return found
}

// resolve finds conn in roomID when given, falling back to the first room
// the connection joined.
func resolve(tx *app.Tx, roomID domain.RoomID, conn domain.ConnID) (*core.Room, *domain.Participant, bool) {
	if roomID != "" {
		if room, p, ok := tx.LocateIn(roomID, conn); ok {
			return room, p, true
		}
	}
	return tx.Locate(conn)
}
