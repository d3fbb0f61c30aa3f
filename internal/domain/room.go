package domain

// RoomID is an opaque string chosen by the joining client. A room exists
// implicitly while at least one connection is a member of it.
type RoomID string

func ValidateRoomID(id string) error {
	if len(id) == 0 {
		return ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}
