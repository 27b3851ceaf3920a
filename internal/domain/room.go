package domain

import "time"

type (
	RoomID string
	ConnID string
)

// Mode is the media topology a room should use.
type Mode string

const (
	ModeMesh       Mode = "mesh"
	ModeForwarding Mode = "forwarding"
)

// DefaultMeshMax is the largest population still served by a full mesh.
const DefaultMeshMax = 8

// RoomInfo is a read-only view for diagnostics.
type RoomInfo struct {
	ID               RoomID    `json:"roomId"`
	ParticipantCount int       `json:"participantCount"`
	Mode             Mode      `json:"mode"`
	CreatedAt        time.Time `json:"createdAt"`
}
