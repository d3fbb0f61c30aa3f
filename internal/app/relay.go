package app

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"codesync-server/internal/core"
	"codesync-server/internal/domain"
	"codesync-server/internal/metrics"
)

var ErrNotConnected = errors.New("connection not registered")

// Relay translates inbound events into registry/table updates and fans the
// resulting notifications out to room members. All table mutations of one
// event complete before any fan-out starts, so a failed delivery can never
// leave the registry and the membership table disagreeing.
type Relay struct {
	Registry *Registry
	Rooms    core.RoomTable
}

func NewRelay(reg *Registry, rooms core.RoomTable) *Relay {
	return &Relay{Registry: reg, Rooms: rooms}
}

// Connect binds a fresh connection. No room membership exists until the
// client sends a join request.
func (e *Relay) Connect(sid domain.ConnID, sess core.SignalConnection, cancel func()) {
	e.Registry.Bind(sid, sess, cancel)
}

// Join records the identity, adds the connection to the room and unicasts a
// "joined" notification to every current member, newcomer included. A
// malformed request mutates nothing and is reported back to the caller.
func (e *Relay) Join(sid domain.ConnID, room domain.RoomID, username string) error {
	if err := domain.ValidateRoomID(string(room)); err != nil {
		return err
	}
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}
	if !e.Registry.SetUsername(sid, username) {
		return ErrNotConnected
	}
	e.Rooms.Join(room, sid)
	metrics.JoinsTotal.Inc()

	members := e.memberInfos(room)
	ev := JoinedEvent{Type: EventJoined, Members: members, Username: username, SID: sid}
	for _, m := range members {
		e.send(m.SID, ev)
	}
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("room", string(room)).Str("username", username).Int("members", len(members)).Msg("join")
	return nil
}

// ContentChange relays the buffer verbatim to every other member of the
// room. The sender never receives its own content back.
func (e *Relay) ContentChange(sid domain.ConnID, room domain.RoomID, content string) {
	ev := ContentEvent{Type: EventContentChange, Content: content}
	for _, member := range e.Rooms.Members(room) {
		if member == sid {
			continue
		}
		if e.send(member, ev) {
			metrics.ContentRelayedTotal.Inc()
		}
	}
}

// Sync delivers a content snapshot to exactly one connection. Used by an
// existing member answering a newcomer; which member answers is decided
// client-side. An unknown target is a no-op.
func (e *Relay) Sync(sid domain.ConnID, target domain.ConnID, content string) {
	if _, ok := e.Registry.Session(target); !ok {
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Str("target", string(target)).Msg("sync target gone")
		return
	}
	e.send(target, ContentEvent{Type: EventContentChange, Content: content})
}

// Pong records a heartbeat probe response.
func (e *Relay) Pong(sid domain.ConnID) {
	e.Registry.Touch(sid)
}

// Disconnect runs the single cleanup path shared by transport-level
// disconnects and liveness eviction. The registry removal is the latch:
// whichever trigger fires second finds no entry and returns without
// emitting anything.
func (e *Relay) Disconnect(sid domain.ConnID) {
	entry, ok := e.Registry.Remove(sid)
	if !ok {
		return
	}
	rooms := e.Rooms.RoomsOf(sid)
	for _, room := range rooms {
		e.Rooms.Leave(room, sid)
	}
	if entry.Cancel != nil {
		entry.Cancel()
	}
	entry.Session.Close()

	ev := DisconnectedEvent{Type: EventDisconnected, SID: sid, Username: entry.Username}
	for _, room := range rooms {
		for _, member := range e.Rooms.Members(room) {
			e.send(member, ev)
		}
	}
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("username", entry.Username).Int("rooms", len(rooms)).Msg("disconnect")
}

// memberInfos joins the membership set with registry identities.
func (e *Relay) memberInfos(room domain.RoomID) []core.MemberInfo {
	sids := e.Rooms.Members(room)
	out := make([]core.MemberInfo, 0, len(sids))
	for _, sid := range sids {
		username, ok := e.Registry.Username(sid)
		if !ok {
			continue
		}
		out = append(out, core.MemberInfo{SID: sid, Username: username})
	}
	return out
}

// send marshals and delivers one event to one connection. A failed delivery
// is logged and skipped; fan-out to the remaining recipients continues.
func (e *Relay) send(sid domain.ConnID, v any) bool {
	sess, ok := e.Registry.Session(sid)
	if !ok {
		return false
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal event")
		return false
	}
	if err := sess.TrySend(core.Frame(b)); err != nil {
		metrics.DeliveryFailuresTotal.Inc()
		log.Warn().Err(err).Str("module", "app.relay").Str("sid", string(sid)).Msg("dropped delivery")
		return false
	}
	return true
}
