package signal

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesync-server/internal/app"
	"codesync-server/internal/config"
	"codesync-server/internal/core"
	"codesync-server/internal/domain"
)

type mockSession struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (m *mockSession) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockSession) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockSession) events(t *testing.T) []map[string]any {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, 0, len(m.frames))
	for _, f := range m.frames {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func newTestController() (*SignalWSController, *app.Relay) {
	relay := app.NewRelay(app.NewRegistry(), core.NewRoomTable())
	cfg := &config.Config{
		ReadLimit:         32768,
		HeartbeatInterval: 30 * time.Second,
		SweepInterval:     60 * time.Second,
		StaleAfter:        90 * time.Second,
		RateLimit:         120,
		RateInterval:      time.Second,
	}
	return NewSignalWSController(relay, cfg), relay
}

func connect(ctl *SignalWSController, sid domain.ConnID) *mockSession {
	sess := &mockSession{}
	ctl.Relay.Connect(sid, sess, func() {})
	return sess
}

func TestHandleMessage_BadJSON(t *testing.T) {
	ctl, _ := newTestController()
	sess := connect(ctl, "A")

	ctl.handleMessage("A", sess, []byte("not json"))

	events := sess.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0]["type"])
}

func TestHandleMessage_UnknownTypeIgnored(t *testing.T) {
	ctl, _ := newTestController()
	sess := connect(ctl, "A")

	ctl.handleMessage("A", sess, []byte(`{"type":"teleport"}`))

	assert.Empty(t, sess.events(t))
}

func TestHandleMessage_JoinDispatch(t *testing.T) {
	ctl, relay := newTestController()
	sess := connect(ctl, "A")

	ctl.handleMessage("A", sess, []byte(`{"type":"join","room":"r1","username":"alice"}`))

	events := sess.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "joined", events[0]["type"])
	assert.ElementsMatch(t, []domain.ConnID{"A"}, relay.Rooms.Members("r1"))
}

func TestHandleMessage_JoinMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "no room", payload: `{"type":"join","username":"alice"}`},
		{name: "no username", payload: `{"type":"join","room":"r1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl, relay := newTestController()
			sess := connect(ctl, "A")

			ctl.handleMessage("A", sess, []byte(tt.payload))

			events := sess.events(t)
			require.Len(t, events, 1)
			assert.Equal(t, "error", events[0]["type"])
			rooms, _ := relay.Rooms.Stats()
			assert.Zero(t, rooms)
		})
	}
}

func TestHandleMessage_ContentChangeRelayed(t *testing.T) {
	ctl, _ := newTestController()
	a := connect(ctl, "A")
	b := connect(ctl, "B")
	ctl.handleMessage("A", a, []byte(`{"type":"join","room":"r1","username":"alice"}`))
	ctl.handleMessage("B", b, []byte(`{"type":"join","room":"r1","username":"bob"}`))

	ctl.handleMessage("A", a, []byte(`{"type":"content_change","room":"r1","content":"hello"}`))

	var got []map[string]any
	for _, ev := range b.events(t) {
		if ev["type"] == "content_change" {
			got = append(got, ev)
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0]["content"])
}

func TestHandleMessage_SyncDispatch(t *testing.T) {
	ctl, _ := newTestController()
	a := connect(ctl, "A")
	b := connect(ctl, "B")

	ctl.handleMessage("A", a, []byte(`{"type":"sync","sid":"B","content":"snapshot"}`))

	events := b.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "content_change", events[0]["type"])
	assert.Equal(t, "snapshot", events[0]["content"])
}

func TestRateLimiter_Window(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("A"))
	assert.True(t, rl.Allow("A"))
	assert.False(t, rl.Allow("A"))
	// Other connections have their own window.
	assert.True(t, rl.Allow("B"))

	rl.Forget("A")
	assert.True(t, rl.Allow("A"))
}

func TestRateLimiter_DropsFloodedContent(t *testing.T) {
	ctl, _ := newTestController()
	ctl.limiter = NewRateLimiter(1, time.Minute)
	a := connect(ctl, "A")
	b := connect(ctl, "B")
	ctl.handleMessage("A", a, []byte(`{"type":"join","room":"r1","username":"alice"}`))
	ctl.handleMessage("B", b, []byte(`{"type":"join","room":"r1","username":"bob"}`))

	ctl.handleMessage("A", a, []byte(`{"type":"content_change","room":"r1","content":"one"}`))
	ctl.handleMessage("A", a, []byte(`{"type":"content_change","room":"r1","content":"two"}`))

	var got []map[string]any
	for _, ev := range b.events(t) {
		if ev["type"] == "content_change" {
			got = append(got, ev)
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0]["content"])
}
