package core

import "codesync-server/internal/domain"

// Frame is a raw outbound payload (an encoded event).
type Frame []byte

// SignalConnection abstracts the per-connection messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberInfo is a read-only view for fan-out payloads and APIs (no
// transport fields).
type MemberInfo struct {
	SID      domain.ConnID `json:"sid"`
	Username string        `json:"username"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomTable owns the per-room membership sets. It never touches transport
// resources and never emits events itself.
type RoomTable interface {
	// Join adds sid to the room's set, creating the set if absent.
	// Joining twice has no additional effect.
	Join(room domain.RoomID, sid domain.ConnID)
	// Leave removes sid; an emptied room entry is released.
	Leave(room domain.RoomID, sid domain.ConnID)
	// Members returns the current membership, empty for an unknown room.
	Members(room domain.RoomID) []domain.ConnID
	// RoomsOf lists every room sid is currently a member of.
	RoomsOf(sid domain.ConnID) []domain.RoomID
	List() []RoomInfo
	Stats() (rooms, members int)
}
