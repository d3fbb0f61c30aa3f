package app

import (
	"codesync-server/internal/core"
	"codesync-server/internal/domain"
)

// Wire event types. Every websocket message is a JSON envelope carrying one
// of these in its "type" field.
const (
	EventJoin          = "join"
	EventJoined        = "joined"
	EventContentChange = "content_change"
	EventSync          = "sync"
	EventDisconnected  = "disconnected"
	EventPing          = "ping"
	EventPong          = "pong"
	EventError         = "error"
)

// JoinedEvent is unicast to every member of the room, newcomer included,
// so each side can tell the newcomer apart from the pre-existing members.
type JoinedEvent struct {
	Type     string            `json:"type"`
	Members  []core.MemberInfo `json:"members"`
	Username string            `json:"username"`
	SID      domain.ConnID     `json:"sid"`
}

// ContentEvent carries the shared buffer verbatim; the relay never inspects
// or transforms it.
type ContentEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type DisconnectedEvent struct {
	Type     string        `json:"type"`
	SID      domain.ConnID `json:"sid"`
	Username string        `json:"username"`
}

type PingEvent struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
