package app

import (
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/meshcall/internal/core"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry owns every live room and the connection -> rooms index.
// All mutation goes through Txn so that a room's membership, host flag,
// mode and the index change together.
type Registry struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*core.Room
	// index lists the rooms of each connection in join order.
	index map[domain.ConnID][]domain.RoomID
	seq   uint64
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomID]*core.Room),
		index: make(map[domain.ConnID][]domain.RoomID),
	}
}

// Tx is the view of the registry handed to a Txn callback.
// It must not escape the callback.
type Tx struct {
	r *Registry
}

// Txn runs fn with exclusive access to all room state.
func (r *Registry) Txn(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{r: r})
}

func (tx *Tx) GetOrCreate(id domain.RoomID) *core.Room {
	if room, ok := tx.r.rooms[id]; ok {
		return room
	}
	room := core.NewRoom(id)
	tx.r.rooms[id] = room
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return room
}

func (tx *Tx) Get(id domain.RoomID) (*core.Room, bool) {
	room, ok := tx.r.rooms[id]
	return room, ok
}

// RemoveIfEmpty deletes the room when nobody is left in it.
func (tx *Tx) RemoveIfEmpty(id domain.RoomID) bool {
	room, ok := tx.r.rooms[id]
	if !ok || !room.Empty() {
		return false
	}
	delete(tx.r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room deleted")
	return true
}

// NextSeq hands out monotonically increasing join sequence numbers.
func (tx *Tx) NextSeq() uint64 {
	tx.r.seq++
	return tx.r.seq
}

// RoomOf returns the first room conn joined that it is still in.
func (tx *Tx) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	rooms := tx.r.index[conn]
	if len(rooms) == 0 {
		return "", false
	}
	return rooms[0], true
}

func (tx *Tx) RoomsOf(conn domain.ConnID) []domain.RoomID {
	return slices.Clone(tx.r.index[conn])
}

func (tx *Tx) Index(conn domain.ConnID, room domain.RoomID) {
	if slices.Contains(tx.r.index[conn], room) {
		return
	}
	tx.r.index[conn] = append(tx.r.index[conn], room)
}

func (tx *Tx) Unindex(conn domain.ConnID, room domain.RoomID) {
	rooms := slices.DeleteFunc(tx.r.index[conn], func(id domain.RoomID) bool { return id == room })
	if len(rooms) == 0 {
		delete(tx.r.index, conn)
		return
	}
	tx.r.index[conn] = rooms
}

// Locate resolves conn to its room and participant.
func (tx *Tx) Locate(conn domain.ConnID) (*core.Room, *domain.Participant, bool) {
	id, ok := tx.RoomOf(conn)
	if !ok {
		return nil, nil, false
	}
	room, ok := tx.r.rooms[id]
	if !ok {
		return nil, nil, false
	}
	p, ok := room.Get(conn)
	if !ok {
		return nil, nil, false
	}
	return room, p, true
}

// LocateIn resolves conn inside a specific room.
func (tx *Tx) LocateIn(roomID domain.RoomID, conn domain.ConnID) (*core.Room, *domain.Participant, bool) {
	room, ok := tx.r.rooms[roomID]
	if !ok {
		return nil, nil, false
	}
	p, ok := room.Get(conn)
	if !ok {
		return nil, nil, false
	}
	return room, p, true
}

func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// List returns every room ordered by id.
func (r *Registry) List() []domain.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Info())
	}
	slices.SortFunc(out, func(a, b domain.RoomInfo) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// Participants copies the membership of a room in join order.
func (r *Registry) Participants(id domain.RoomID) ([]domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	return room.Snapshot(), true
}
