package api

// CreateRoomRequest opens a new room; the creator becomes its admin.
type CreateRoomRequest struct {
	Name      string `json:"name"`
	AdminName string `json:"admin_name"`
}

type CreateRoomResponse struct {
	Room        Room        `json:"room"`
	Participant Participant `json:"participant"`
	Token       string      `json:"token"`
}

type GetRoomRequest struct {
	RoomID string `json:"room_id"`
}

type GetRoomResponse struct {
	Room         Room          `json:"room"`
	Participants []Participant `json:"participants"`
	Me           Participant   `json:"me"`
}

// JoinRoomRequest joins a room by its share code.
type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type JoinRoomResponse struct {
	Room        Room        `json:"room"`
	Participant Participant `json:"participant"`
	Token       string      `json:"token"`
}

// ListMyRoomsRequest carries every token the client holds, one per room.
// Tokens that no longer resolve are skipped.
type ListMyRoomsRequest struct {
	Tokens []string `json:"tokens"`
}

type ListMyRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

type AddVirtualParticipantRequest struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type AddVirtualParticipantResponse struct {
	Participant Participant `json:"participant"`
}

type RemoveParticipantRequest struct {
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
}

type RemoveParticipantResponse struct{}

// UpdatePaymentAliasRequest sets the caller's own payment alias.
type UpdatePaymentAliasRequest struct {
	RoomID       string `json:"room_id"`
	PaymentAlias string `json:"payment_alias"`
}

type UpdatePaymentAliasResponse struct {
	Participant Participant `json:"participant"`
}

type LockRoomRequest struct {
	RoomID string `json:"room_id"`
}

type LockRoomResponse struct {
	Room        Room         `json:"room"`
	Settlements []Settlement `json:"settlements"`
}

type UnlockRoomRequest struct {
	RoomID string `json:"room_id"`
}

type UnlockRoomResponse struct {
	Room Room `json:"room"`
}
