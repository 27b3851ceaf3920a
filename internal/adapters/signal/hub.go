package signal

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/core"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub tracks live connections and their room groups. It implements
// core.Transport and never calls back into the orchestrator.
type Hub struct {
	mu     sync.RWMutex
	conns  map[domain.ConnID]core.SignalConnection
	groups map[domain.RoomID]map[domain.ConnID]struct{}
	policy app.Policy
}

var _ core.Transport = (*Hub)(nil)

func NewHub(policy app.Policy) *Hub {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	return &Hub{
		conns:  make(map[domain.ConnID]core.SignalConnection),
		groups: make(map[domain.RoomID]map[domain.ConnID]struct{}),
		policy: policy,
	}
}

func (h *Hub) Register(id domain.ConnID, c core.SignalConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
}

// Unregister forgets id and drops it from every group.
func (h *Hub) Unregister(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	for room, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, room)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) JoinGroup(conn domain.ConnID, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		h.groups[room] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) LeaveGroup(conn domain.ConnID, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

func (h *Hub) Emit(to domain.ConnID, event string, payload any) {
	frame, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	c, found := h.conns[to]
	h.mu.RUnlock()
	if !found {
		log.Debug().Str("module", "signal.hub").Str("conn", string(to)).Str("event", event).Msg("emit to unknown connection dropped")
		return
	}
	h.deliver(to, c, event, frame)
}

func (h *Hub) EmitRoom(room domain.RoomID, except domain.ConnID, event string, payload any) {
	frame, ok := encode(event, payload)
	if !ok {
		return
	}

	type target struct {
		id domain.ConnID
		c  core.SignalConnection
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.groups[room]))
	for id := range h.groups[room] {
		if id == except {
			continue
		}
		if c, ok := h.conns[id]; ok {
			targets = append(targets, target{id: id, c: c})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		h.deliver(t.id, t.c, event, frame)
	}
}

func (h *Hub) deliver(id domain.ConnID, c core.SignalConnection, event string, frame core.Frame) {
	err := c.TrySend(frame)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrBackpressure) {
		log.Debug().Err(err).Str("module", "signal.hub").Str("conn", string(id)).Str("event", event).Msg("send dropped")
		return
	}

	action := h.policy.OnBackPressure(id, event)
	log.Warn().Str("module", "signal.hub").Str("conn", string(id)).Str("event", event).Str("action", action.String()).Msg("send buffer full")
	if action == app.KickMember {
		c.Close()
	}
}

func encode(event string, payload any) (core.Frame, bool) {
	b, err := json.Marshal(outEnvelope{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "signal.hub").Str("event", event).Msg("marshal")
		return nil, false
	}
	return b, true
}
