package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesync-server/internal/domain"
)

func TestRoomTable_JoinIdempotent(t *testing.T) {
	tbl := NewRoomTable()

	tbl.Join("r1", "A")
	tbl.Join("r1", "A")

	assert.Len(t, tbl.Members("r1"), 1)
}

func TestRoomTable_MembersUnknownRoom(t *testing.T) {
	tbl := NewRoomTable()

	members := tbl.Members("nowhere")

	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestRoomTable_Membership(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(RoomTable)
		room        domain.RoomID
		wantMembers []domain.ConnID
	}{
		{
			name: "two members one room",
			setup: func(tbl RoomTable) {
				tbl.Join("r1", "A")
				tbl.Join("r1", "B")
			},
			room:        "r1",
			wantMembers: []domain.ConnID{"A", "B"},
		},
		{
			name: "no cross-room leakage",
			setup: func(tbl RoomTable) {
				tbl.Join("r1", "A")
				tbl.Join("r2", "B")
			},
			room:        "r1",
			wantMembers: []domain.ConnID{"A"},
		},
		{
			name: "leave removes exactly one member",
			setup: func(tbl RoomTable) {
				tbl.Join("r1", "A")
				tbl.Join("r1", "B")
				tbl.Leave("r1", "A")
			},
			room:        "r1",
			wantMembers: []domain.ConnID{"B"},
		},
		{
			name: "leave unknown room is a no-op",
			setup: func(tbl RoomTable) {
				tbl.Leave("ghost", "A")
				tbl.Join("r1", "A")
			},
			room:        "r1",
			wantMembers: []domain.ConnID{"A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewRoomTable()
			tt.setup(tbl)

			assert.ElementsMatch(t, tt.wantMembers, tbl.Members(tt.room))
		})
	}
}

func TestRoomTable_EmptyRoomReleased(t *testing.T) {
	tbl := NewRoomTable()

	tbl.Join("r1", "A")
	rooms, members := tbl.Stats()
	require.Equal(t, 1, rooms)
	require.Equal(t, 1, members)

	tbl.Leave("r1", "A")
	rooms, members = tbl.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, members)
}

func TestRoomTable_RoomsOf(t *testing.T) {
	tbl := NewRoomTable()
	tbl.Join("r1", "A")
	tbl.Join("r2", "A")
	tbl.Join("r2", "B")

	assert.ElementsMatch(t, []domain.RoomID{"r1", "r2"}, tbl.RoomsOf("A"))
	assert.ElementsMatch(t, []domain.RoomID{"r2"}, tbl.RoomsOf("B"))
	assert.Empty(t, tbl.RoomsOf("C"))
}

func TestRoomTable_List(t *testing.T) {
	tbl := NewRoomTable()
	tbl.Join("r1", "A")
	tbl.Join("r1", "B")
	tbl.Join("r2", "C")

	infos := tbl.List()

	require.Len(t, infos, 2)
	counts := map[domain.RoomID]int{}
	for _, info := range infos {
		counts[info.ID] = info.MemberCount
	}
	assert.Equal(t, map[domain.RoomID]int{"r1": 2, "r2": 1}, counts)
}
