package core

import (
	"slices"
	"time"

	"github.com/dkeye/meshcall/internal/domain"
)

// Room holds the ordered membership of one call.
// It is not safe for concurrent use; the registry serializes access.
type Room struct {
	ID        domain.RoomID
	Mode      domain.Mode
	CreatedAt time.Time

	members []*domain.Participant
	byConn  map[domain.ConnID]*domain.Participant
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		ID:        id,
		Mode:      domain.ModeMesh,
		CreatedAt: time.Now(),
		byConn:    make(map[domain.ConnID]*domain.Participant),
	}
}

func (r *Room) Len() int { return len(r.members) }

func (r *Room) Empty() bool { return len(r.members) == 0 }

func (r *Room) Get(id domain.ConnID) (*domain.Participant, bool) {
	p, ok := r.byConn[id]
	return p, ok
}

// Add appends p keeping members sorted by JoinSeq. A participant already
// present under the same ConnID is replaced in place.
func (r *Room) Add(p *domain.Participant) {
	if old, ok := r.byConn[p.ConnID]; ok {
		i := slices.Index(r.members, old)
		r.members[i] = p
		r.byConn[p.ConnID] = p
		return
	}
	i, _ := slices.BinarySearchFunc(r.members, p.JoinSeq, func(m *domain.Participant, seq uint64) int {
		switch {
		case m.JoinSeq < seq:
			return -1
		case m.JoinSeq > seq:
			return 1
		}
		return 0
	})
	r.members = slices.Insert(r.members, i, p)
	r.byConn[p.ConnID] = p
}

func (r *Room) Remove(id domain.ConnID) (*domain.Participant, bool) {
	p, ok := r.byConn[id]
	if !ok {
		return nil, false
	}
	delete(r.byConn, id)
	r.members = slices.DeleteFunc(r.members, func(m *domain.Participant) bool { return m == p })
	return p, true
}

// Earliest returns the longest-standing participant.
func (r *Room) Earliest() (*domain.Participant, bool) {
	if len(r.members) == 0 {
		return nil, false
	}
	return r.members[0], true
}

func (r *Room) Host() (*domain.Participant, bool) {
	for _, m := range r.members {
		if m.IsHost {
			return m, true
		}
	}
	return nil, false
}

// Others returns everyone except id, in join order.
func (r *Room) Others(id domain.ConnID) []domain.Participant {
	out := make([]domain.Participant, 0, len(r.members))
	for _, m := range r.members {
		if m.ConnID == id {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// Snapshot copies all participants in join order.
func (r *Room) Snapshot() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	return out
}

func (r *Room) Info() domain.RoomInfo {
	return domain.RoomInfo{
		ID:               r.ID,
		ParticipantCount: len(r.members),
		Mode:             r.Mode,
		CreatedAt:        r.CreatedAt,
	}
}
