package models

// Role is a participant's role within a room.
type Role string

const (
	// RoleAdmin is the room creator. Admins lock/unlock the room and manage participants.
	RoleAdmin Role = "admin"
	// RoleMember joined the room with their own device.
	RoleMember Role = "member"
	// RoleVirtual is a proxy an admin manages for someone without the app.
	// Virtual participants never hold a session token.
	RoleVirtual Role = "virtual"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleVirtual:
		return true
	}
	return false
}

// Participant is a member of a room.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// RoomID is the room this participant belongs to.
	RoomID string

	// Name is the nickname shown to the room. Unique within a room.
	Name string

	// Role gates privileged operations.
	Role Role

	// PaymentAlias is an optional bank alias or handle others can pay to.
	PaymentAlias string

	// TokenDigest is the hex digest of the session token ID.
	// Empty for virtual participants.
	TokenDigest string

	// JoinedAt is the Unix timestamp when the participant was created.
	JoinedAt int64
}

// IsAdmin reports whether the participant is a room admin.
func (p *Participant) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsVirtual reports whether the participant is a proxy without a device.
func (p *Participant) IsVirtual() bool {
	return p.Role == RoleVirtual
}
