package core

import (
	"encoding/json"

	"github.com/dkeye/meshcall/internal/domain"
)

// Inbound events.
const (
	EvJoinRoom          = "join-room"
	EvSignal            = "signal"
	EvKeyExchange       = "key-exchange"
	EvScreenShareStatus = "screen-share-status"
	EvMuteStatus        = "mute-status"
	EvKickUser          = "kick-user"
	EvRequestPeerState  = "request-peer-state"
	EvPing              = "ping"
)

// Outbound events.
const (
	EvRoomState             = "room-state"
	EvHostStatus            = "host-status"
	EvExistingUsers         = "existing-users"
	EvUserJoined            = "user-joined"
	EvParticipantCount      = "participant-count-changed"
	EvPeerScreenShareStatus = "peer-screen-share-status"
	EvPeerStreamRefresh     = "peer-stream-refresh"
	EvPeerMuteStatus        = "peer-mute-status"
	EvKickedFromRoom        = "kicked-from-room"
	EvKickDenied            = "kick-denied"
	EvPeerStateResponse     = "peer-state-response"
	EvUserLeft              = "user-left"
	EvNewHost               = "new-host"
	EvPong                  = "pong"
)

type RoomState struct {
	TotalUsers int         `json:"totalUsers"`
	Mode       domain.Mode `json:"mode"`
}

type HostStatus struct {
	IsHost bool `json:"isHost"`
}

// MemberDTO is a read-only view of a participant (no transport fields).
type MemberDTO struct {
	UserID          domain.ConnID `json:"userId"`
	UserName        string        `json:"userName"`
	IsScreenSharing bool          `json:"isScreenSharing"`
	IsMuted         bool          `json:"isMuted"`
	IsHost          bool          `json:"isHost"`
}

func NewMemberDTO(p domain.Participant) MemberDTO {
	return MemberDTO{
		UserID:          p.ConnID,
		UserName:        p.DisplayName,
		IsScreenSharing: p.IsScreenSharing,
		IsMuted:         p.IsMuted,
		IsHost:          p.IsHost,
	}
}

type UserJoined struct {
	UserID   domain.ConnID `json:"userId"`
	UserName string        `json:"userName"`
	IsHost   bool          `json:"isHost"`
}

type SignalOut struct {
	Signal json.RawMessage `json:"signal"`
	From   domain.ConnID   `json:"from"`
}

type KeyExchangeOut struct {
	PublicKey json.RawMessage `json:"publicKey"`
	From      domain.ConnID   `json:"from"`
}

type PeerMuteStatus struct {
	UserID   domain.ConnID `json:"userId"`
	UserName string        `json:"userName"`
	IsMuted  bool          `json:"isMuted"`
}

type PeerScreenShareStatus struct {
	UserID    domain.ConnID `json:"userId"`
	UserName  string        `json:"userName"`
	IsSharing bool          `json:"isSharing"`
}

type PeerStreamRefresh struct {
	UserID domain.ConnID `json:"userId"`
}

type Reason struct {
	Reason string `json:"reason"`
}

type NewHost struct {
	UserID   domain.ConnID `json:"userId"`
	UserName string        `json:"userName"`
}
