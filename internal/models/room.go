package models

// Room is a temporary expense-sharing session identified by a short code.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Code is the 6-character code people type to join the room.
	Code string

	// Name is the display name of the room (e.g., "Asado del sábado").
	Name string

	// IsLocked freezes expenses. Settlements only exist while a room is locked.
	IsLocked bool

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64

	// ExpiresAt is the Unix timestamp after which the room is deleted.
	ExpiresAt int64
}

// Expired reports whether the room is past its expiry at the given Unix time.
func (r *Room) Expired(now int64) bool {
	return r.ExpiresAt != 0 && now >= r.ExpiresAt
}

// RoomSummary is a room listed for one of the caller's sessions.
type RoomSummary struct {
	Room             Room
	ParticipantCount int
	ExpenseCount     int
	MyName           string
	MyRole           Role
}
