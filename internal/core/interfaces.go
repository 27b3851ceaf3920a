package core

import "github.com/dkeye/meshcall/internal/domain"

// Transport is everything the coordinator needs from the messaging layer.
// Sends are fire-and-forget; an unknown recipient is silently dropped.
type Transport interface {
	// Emit delivers one event to a single connection.
	Emit(to domain.ConnID, event string, payload any)
	// EmitRoom delivers to every connection grouped under room except one.
	// An empty except reaches the whole group.
	EmitRoom(room domain.RoomID, except domain.ConnID, event string, payload any)
	JoinGroup(conn domain.ConnID, room domain.RoomID)
	LeaveGroup(conn domain.ConnID, room domain.RoomID)
}
