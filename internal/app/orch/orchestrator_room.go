package orch

import (
	"time"

	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/core"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

type JoinOutcome struct {
	Room        domain.RoomID
	Participant domain.Participant
	IsHost      bool
	Mode        domain.Mode
	Count       int
	// Notified reports whether user-joined was fanned out to the room.
	Notified bool
}

type LeaveOutcome struct {
	Removed     bool
	RoomDeleted bool
	Mode        domain.Mode
	Count       int
	NewHost     *domain.Participant
}

// Join adds conn to roomID and sends the joiner its snapshot, then tells
// the room. A repeated join of the same room refreshes the participant
// and keeps its host flag and position.
func (o *Orchestrator) Join(roomID domain.RoomID, conn domain.ConnID, requestedName string) JoinOutcome {
	var out JoinOutcome
	o.Registry.Txn(func(tx *app.Tx) {
		room := tx.GetOrCreate(roomID)
		existing, rejoin := room.Get(conn)

		p := &domain.Participant{
			ConnID:      conn,
			DisplayName: domain.NormalizeDisplayName(requestedName),
			IsHost:      room.Empty(),
			JoinedAt:    time.Now(),
		}
		if rejoin {
			p.IsHost = existing.IsHost
			p.IsMuted = existing.IsMuted
			p.IsScreenSharing = existing.IsScreenSharing
			p.JoinSeq = existing.JoinSeq
			if p.DisplayName == "" {
				p.DisplayName = existing.DisplayName
			}
		} else {
			p.JoinSeq = tx.NextSeq()
			if p.DisplayName == "" {
				p.DisplayName = domain.DefaultDisplayName(room.Len() + 1)
			}
		}
		room.Add(p)
		room.Mode = o.selectMode(room)
		tx.Index(conn, roomID)

		o.Transport.JoinGroup(conn, roomID)
		o.Transport.Emit(conn, core.EvRoomState, core.RoomState{TotalUsers: room.Len(), Mode: room.Mode})
		o.Transport.Emit(conn, core.EvHostStatus, core.HostStatus{IsHost: p.IsHost})

		others := room.Others(conn)
		existingUsers := make([]core.MemberDTO, 0, len(others))
		for _, other := range others {
			existingUsers = append(existingUsers, core.NewMemberDTO(other))
		}
		o.Transport.Emit(conn, core.EvExistingUsers, existingUsers)

		if len(others) > 0 {
			o.Transport.EmitRoom(roomID, conn, core.EvUserJoined, core.UserJoined{
				UserID:   conn,
				UserName: p.DisplayName,
				IsHost:   p.IsHost,
			})
		}
		o.Transport.EmitRoom(roomID, "", core.EvParticipantCount, room.Len())

		out = JoinOutcome{
			Room:        roomID,
			Participant: *p,
			IsHost:      p.IsHost,
			Mode:        room.Mode,
			Count:       room.Len(),
			Notified:    len(others) > 0,
		}
	})

	log.Info().
		Str("module", "app.orch").
		Str("conn", string(conn)).
		Str("room", string(roomID)).
		Str("name", out.Participant.DisplayName).
		Bool("host", out.IsHost).
		Int("count", out.Count).
		Str("mode", string(out.Mode)).
		Msg("joined")
	return out
}

// Leave removes conn from roomID. If conn held the host role, the
// longest-standing survivor inherits it.
func (o *Orchestrator) Leave(roomID domain.RoomID, conn domain.ConnID) LeaveOutcome {
	var out LeaveOutcome
	o.Registry.Txn(func(tx *app.Tx) {
		out = o.leave(tx, roomID, conn)
	})
	if out.Removed {
		ev := log.Info().
			Str("module", "app.orch").
			Str("conn", string(conn)).
			Str("room", string(roomID)).
			Int("count", out.Count).
			Bool("room_deleted", out.RoomDeleted)
		if out.NewHost != nil {
			ev = ev.Str("new_host", string(out.NewHost.ConnID))
		}
		ev.Msg("left")
	}
	return out
}

// Disconnect is the transport lifecycle hook: conn is gone for good, so it
// leaves every room it was indexed under.
func (o *Orchestrator) Disconnect(conn domain.ConnID) {
	var rooms []domain.RoomID
	o.Registry.Txn(func(tx *app.Tx) {
		rooms = tx.RoomsOf(conn)
	})
	for _, roomID := range rooms {
		o.Leave(roomID, conn)
	}
	log.Debug().Str("module", "app.orch").Str("conn", string(conn)).Int("rooms", len(rooms)).Msg("disconnected")
}

func (o *Orchestrator) leave(tx *app.Tx, roomID domain.RoomID, conn domain.ConnID) LeaveOutcome {
	room, ok := tx.Get(roomID)
	if !ok {
		return LeaveOutcome{}
	}
	p, ok := room.Remove(conn)
	if !ok {
		return LeaveOutcome{}
	}
	tx.Unindex(conn, roomID)
	o.Transport.LeaveGroup(conn, roomID)

	o.Transport.EmitRoom(roomID, conn, core.EvUserLeft, conn)

	if tx.RemoveIfEmpty(roomID) {
		return LeaveOutcome{Removed: true, RoomDeleted: true}
	}

	o.Transport.EmitRoom(roomID, "", core.EvParticipantCount, room.Len())
	// Mode is recomputed without an explicit notification; the next join's
	// room-state carries it.
	room.Mode = o.selectMode(room)

	out := LeaveOutcome{Removed: true, Mode: room.Mode, Count: room.Len()}
	if !p.IsHost {
		return out
	}

	next, _ := room.Earliest()
	next.IsHost = true
	o.Transport.Emit(next.ConnID, core.EvHostStatus, core.HostStatus{IsHost: true})
	o.Transport.EmitRoom(roomID, "", core.EvNewHost, core.NewHost{UserID: next.ConnID, UserName: next.DisplayName})

	promoted := *next
	out.NewHost = &promoted
	return out
}
