package orch

import (
	"slices"

	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/domain"
)

type sent struct {
	To      domain.ConnID
	Event   string
	Payload any
}

// recordingTransport expands room emits into one record per recipient.
type recordingTransport struct {
	groups map[domain.RoomID][]domain.ConnID
	sent   []sent
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{groups: make(map[domain.RoomID][]domain.ConnID)}
}

func (t *recordingTransport) Emit(to domain.ConnID, event string, payload any) {
	t.sent = append(t.sent, sent{To: to, Event: event, Payload: payload})
}

func (t *recordingTransport) EmitRoom(room domain.RoomID, except domain.ConnID, event string, payload any) {
	for _, id := range t.groups[room] {
		if id == except {
			continue
		}
		t.sent = append(t.sent, sent{To: id, Event: event, Payload: payload})
	}
}

func (t *recordingTransport) JoinGroup(conn domain.ConnID, room domain.RoomID) {
	if !slices.Contains(t.groups[room], conn) {
		t.groups[room] = append(t.groups[room], conn)
	}
}

func (t *recordingTransport) LeaveGroup(conn domain.ConnID, room domain.RoomID) {
	t.groups[room] = slices.DeleteFunc(t.groups[room], func(id domain.ConnID) bool { return id == conn })
}

func (t *recordingTransport) reset() { t.sent = nil }

// to returns what one connection received, in order.
func (t *recordingTransport) to(conn domain.ConnID) []sent {
	var out []sent
	for _, s := range t.sent {
		if s.To == conn {
			out = append(out, s)
		}
	}
	return out
}

func (t *recordingTransport) events(conn domain.ConnID) []string {
	var out []string
	for _, s := range t.to(conn) {
		out = append(out, s.Event)
	}
	return out
}

func (t *recordingTransport) count(event string) int {
	n := 0
	for _, s := range t.sent {
		if s.Event == event {
			n++
		}
	}
	return n
}

func (t *recordingTransport) countTo(conn domain.ConnID, event string) int {
	n := 0
	for _, s := range t.to(conn) {
		if s.Event == event {
			n++
		}
	}
	return n
}

func (t *recordingTransport) last(conn domain.ConnID, event string) (any, bool) {
	msgs := t.to(conn)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Event == event {
			return msgs[i].Payload, true
		}
	}
	return nil, false
}

func newTestOrchestrator() (*Orchestrator, *recordingTransport) {
	tr := newRecordingTransport()
	return New(app.NewRegistry(), tr, domain.DefaultMeshMax), tr
}
