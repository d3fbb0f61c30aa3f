// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUsernameLen = 36
	MaxRoomIDLen   = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrRoomIDTooLong   = errors.New("room id too long")
	ErrRoomIDEmpty     = errors.New("room id empty")
)

// ConnID is the transport-assigned identifier of one live session.
// Assigned fresh on every handshake, never reused.
type ConnID string

// Client is the display identity a connection supplies at join time.
type Client struct {
	SID      ConnID `json:"sid"`
	Username string `json:"username"`
}

func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
