package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"codesync-server/internal/domain"
	"codesync-server/internal/metrics"
)

// roomTable is a threadsafe in-memory membership table. Rooms come into
// existence on first join and are released on last leave.
type roomTable struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.ConnID]struct{}
}

func NewRoomTable() RoomTable {
	return &roomTable{rooms: make(map[domain.RoomID]map[domain.ConnID]struct{})}
}

func (t *roomTable) Join(room domain.RoomID, sid domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.rooms[room]
	if !ok {
		set = make(map[domain.ConnID]struct{})
		t.rooms[room] = set
		metrics.ActiveRooms.Set(float64(len(t.rooms)))
	}
	set[sid] = struct{}{}
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("sid", string(sid)).Int("members", len(set)).Msg("member joined")
}

func (t *roomTable) Leave(room domain.RoomID, sid domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.rooms[room]
	if !ok {
		return
	}
	delete(set, sid)
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("sid", string(sid)).Int("members", len(set)).Msg("member left")
	if len(set) == 0 {
		delete(t.rooms, room)
		metrics.ActiveRooms.Set(float64(len(t.rooms)))
		log.Info().Str("module", "core.rooms").Str("room", string(room)).Msg("room released")
	}
}

func (t *roomTable) Members(room domain.RoomID) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.rooms[room]
	out := make([]domain.ConnID, 0, len(set))
	for sid := range set {
		out = append(out, sid)
	}
	return out
}

func (t *roomTable) RoomsOf(sid domain.ConnID) []domain.RoomID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.RoomID
	for room, set := range t.rooms {
		if _, ok := set[sid]; ok {
			out = append(out, room)
		}
	}
	return out
}

func (t *roomTable) List() []RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RoomInfo, 0, len(t.rooms))
	for room, set := range t.rooms {
		out = append(out, RoomInfo{ID: room, MemberCount: len(set)})
	}
	return out
}

func (t *roomTable) Stats() (rooms, members int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rooms = len(t.rooms)
	for _, set := range t.rooms {
		members += len(set)
	}
	return rooms, members
}
