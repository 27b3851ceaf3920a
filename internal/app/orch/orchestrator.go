package orch

import (
	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/core"
	"github.com/dkeye/meshcall/internal/domain"
)

const (
	kickReason       = "You have been removed from the room by the host"
	kickDeniedReason = "Only the host can remove participants"
)

// Orchestrator runs every inbound client event against the registry and
// emits the resulting messages through the transport.
type Orchestrator struct {
	Registry  *app.Registry
	Transport core.Transport
	MeshMax   int
}

func New(reg *app.Registry, tr core.Transport, meshMax int) *Orchestrator {
	if meshMax <= 0 {
		meshMax = domain.DefaultMeshMax
	}
	return &Orchestrator{Registry: reg, Transport: tr, MeshMax: meshMax}
}

func (o *Orchestrator) selectMode(room *core.Room) domain.Mode {
	return app.SelectMode(room.Len(), o.MeshMax)
}
