package app

import "github.com/dkeye/meshcall/internal/domain"

// SelectMode picks the topology for a room of the given size.
// Rooms larger than meshMax need a forwarding unit.
func SelectMode(size, meshMax int) domain.Mode {
	if size > meshMax {
		return domain.ModeForwarding
	}
	return domain.ModeMesh
}
