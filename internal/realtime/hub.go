// Package realtime fans list changes out to live WebSocket viewers.
package realtime

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"wishlist/internal/metrics"
)

// Hub is the process-wide room registry. The mutex guards membership only;
// it is never held while frames are written.
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]map[*Session]struct{}
	memberOf map[*Session]string

	evictions atomic.Uint64
	logger    *slog.Logger
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Rooms       int
	Connections int
	Evictions   uint64
}

// NewHub creates an empty registry.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:    make(map[string]map[*Session]struct{}),
		memberOf: make(map[*Session]string),
		logger:   logger,
	}
}

// Join adds s to room. A session belongs to at most one room, so any
// previous membership is released first.
func (h *Hub) Join(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.memberOf[s]; ok {
		if prev == room {
			return
		}
		h.removeLocked(s, prev)
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	h.memberOf[s] = room
}

// Leave removes s from room. Empty rooms are released. Safe to call twice.
func (h *Hub) Leave(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s, room)
}

func (h *Hub) removeLocked(s *Session, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if h.memberOf[s] == room {
		delete(h.memberOf, s)
	}
}

// Members returns the number of sessions in room.
func (h *Hub) Members(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// RoomCounts reports the number of rooms and subscribed sessions.
func (h *Hub) RoomCounts() (rooms, connections int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms), len(h.memberOf)
}

// Stats reports room and connection counts.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Rooms:       len(h.rooms),
		Connections: len(h.memberOf),
		Evictions:   h.evictions.Load(),
	}
}

// Broadcast delivers {event, ...payload} to every member of room except
// exclude and returns how many sends succeeded. A member whose send fails is
// evicted from the room and its connection closed; other members are unaffected.
func (h *Hub) Broadcast(room, event string, payload map[string]any, exclude *Session) int {
	h.mu.Lock()
	members := h.rooms[room]
	targets := make([]*Session, 0, len(members))
	for s := range members {
		if s != exclude {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return 0
	}

	data, err := Envelope(event, payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "room", room, "event", event, "error", err)
		return 0
	}

	var (
		wg     sync.WaitGroup
		deadMu sync.Mutex
		dead   []*Session
	)
	for _, s := range targets {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if err := s.Send(data); err != nil {
				s.logger.Debug("broadcast send failed", "room", room, "event", event, "error", err)
				deadMu.Lock()
				dead = append(dead, s)
				deadMu.Unlock()
			}
		}(s)
	}
	wg.Wait()

	if len(dead) > 0 {
		h.mu.Lock()
		for _, s := range dead {
			h.removeLocked(s, room)
		}
		h.mu.Unlock()
		h.evictions.Add(uint64(len(dead)))
		metrics.RecordEvictions(len(dead))
		for _, s := range dead {
			s.Close(CloseNormal, "")
		}
	}

	return len(targets) - len(dead)
}

// Publish broadcasts to every member of room.
func (h *Hub) Publish(room, event string, payload map[string]any) {
	h.Broadcast(room, event, payload, nil)
}

// SendPersonal unicasts one event to s. Failures are logged, not raised.
func (h *Hub) SendPersonal(s *Session, event string, payload map[string]any) {
	s.SendEvent(event, payload)
}
