package orch

import (
	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/core"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// RequestKick asks target to leave. Only the host may do so and the notice
// is advisory: target stays a member until its own connection goes away.
func (o *Orchestrator) RequestKick(roomID domain.RoomID, requester, target domain.ConnID) bool {
	allowed := false
	o.Registry.Txn(func(tx *app.Tx) {
		_, p, ok := resolve(tx, roomID, requester)
		allowed = ok && p.IsHost
		if allowed {
			o.Transport.Emit(target, core.EvKickedFromRoom, core.Reason{Reason: kickReason})
			return
		}
		o.Transport.Emit(requester, core.EvKickDenied, core.Reason{Reason: kickDeniedReason})
	})

	log.Info().
		Str("module", "app.orch").
		Str("conn", string(requester)).
		Str("target", string(target)).
		Bool("allowed", allowed).
		Msg("kick requested")
	return allowed
}

// RequestPeerState sends requester the current status of target, if target
// is in any room.
func (o *Orchestrator) RequestPeerState(requester, target domain.ConnID) bool {
	found := false
	o.Registry.Txn(func(tx *app.Tx) {
		_, p, ok := tx.Locate(target)
		if !ok {
			return
		}
		found = true
		o.Transport.Emit(requester, core.EvPeerStateResponse, core.NewMemberDTO(*p))
	})
	return found
}
