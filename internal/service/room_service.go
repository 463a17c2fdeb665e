package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/calculator"
	"github.com/mmynk/splitroom/internal/middleware"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/notify"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

const (
	roomCodeLen      = 6
	roomCodeAttempts = 10
)

// codeReplacer maps characters that are easy to misread onto unambiguous ones.
var codeReplacer = strings.NewReplacer("0", "X", "O", "Y", "I", "Z", "L", "W", "1", "2")

// RoomService implements the Connect RoomService.
type RoomService struct {
	apiconnect.UnimplementedRoomServiceHandler
	base
	tokens        *auth.TokenManager
	authenticator middleware.Authenticator
}

// NewRoomService creates a RoomService. locks must be shared with the other
// services so that lock, unlock and expense writes on one room never interleave.
func NewRoomService(store storage.Store, tokens *auth.TokenManager, authenticator middleware.Authenticator, locks *RoomLocks, opts Options) *RoomService {
	return &RoomService{
		base:          newBase(store, locks, opts),
		tokens:        tokens,
		authenticator: authenticator,
	}
}

// newRoomCode returns a random share code without confusable characters.
func newRoomCode() string {
	return codeReplacer.Replace(rand.Text()[:roomCodeLen])
}

// CreateRoom opens a new room with the caller as admin.
func (s *RoomService) CreateRoom(ctx context.Context, req *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.CreateRoomResponse], error) {
	slog.Info("CreateRoom request received", "name", req.Msg.Name)

	name, err := cleanName("name", req.Msg.Name, maxRoomNameLen)
	if err != nil {
		return nil, toConnectError("CreateRoom", err)
	}
	adminName, err := cleanName("admin_name", req.Msg.AdminName, maxNameLen)
	if err != nil {
		return nil, toConnectError("CreateRoom", err)
	}

	now := s.clock()
	room := &models.Room{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now.Unix(),
	}
	if s.roomTTL > 0 {
		room.ExpiresAt = now.Add(s.roomTTL).Unix()
	}
	admin := &models.Participant{
		ID:       uuid.New().String(),
		RoomID:   room.ID,
		Name:     adminName,
		Role:     models.RoleAdmin,
		JoinedAt: now.Unix(),
	}

	token, digest, err := s.tokens.Issue(admin.ID, room.ID)
	if err != nil {
		return nil, toConnectError("CreateRoom", err)
	}
	admin.TokenDigest = digest

	// Codes are checked up front, and the unique index catches the rare race.
	for attempt := 1; ; attempt++ {
		room.Code, err = s.freeRoomCode(ctx)
		if err != nil {
			return nil, toConnectError("CreateRoom", err)
		}
		err = s.store.CreateRoom(ctx, room, admin)
		if !errors.Is(err, storage.ErrConflict) || attempt == roomCodeAttempts {
			break
		}
	}
	if err != nil {
		return nil, toConnectError("CreateRoom", err)
	}

	slog.Info("Room created", "room_id", room.ID, "code", room.Code, "participant_id", admin.ID)
	s.emit(ctx, notify.ParticipantJoined, room.ID, map[string]any{"participant_id": admin.ID, "role": string(admin.Role)})

	return connect.NewResponse(&api.CreateRoomResponse{
		Room:        toAPIRoom(room),
		Participant: toAPIParticipant(admin),
		Token:       token,
	}), nil
}

func (s *RoomService) freeRoomCode(ctx context.Context) (string, error) {
	for range roomCodeAttempts {
		code := newRoomCode()
		exists, err := s.store.RoomCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free room code after %d attempts", roomCodeAttempts)
}

// GetRoom returns a room with its participants.
func (s *RoomService) GetRoom(ctx context.Context, req *connect.Request[api.GetRoomRequest]) (*connect.Response[api.GetRoomResponse], error) {
	me, room, err := s.member(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("GetRoom", err)
	}

	participants, err := s.store.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("GetRoom", err)
	}

	resp := &api.GetRoomResponse{
		Room:         toAPIRoom(room),
		Participants: make([]api.Participant, len(participants)),
		Me:           toAPIParticipant(me),
	}
	for i, p := range participants {
		resp.Participants[i] = toAPIParticipant(p)
	}
	return connect.NewResponse(resp), nil
}

// JoinRoom adds the caller to a room by its share code.
func (s *RoomService) JoinRoom(ctx context.Context, req *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error) {
	code := strings.ToUpper(strings.TrimSpace(req.Msg.Code))
	slog.Info("JoinRoom request received", "code", code)

	if code == "" {
		return nil, toConnectError("JoinRoom", invalidf("code is required"))
	}
	name, err := cleanName("name", req.Msg.Name, maxNameLen)
	if err != nil {
		return nil, toConnectError("JoinRoom", err)
	}

	room, err := s.store.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, toConnectError("JoinRoom", err)
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()
	if room, err = s.openRoom(ctx, room.ID); err != nil {
		return nil, toConnectError("JoinRoom", err)
	}

	p := &models.Participant{
		ID:     uuid.New().String(),
		RoomID: room.ID,
		Name:   name,
		Role:   models.RoleMember,
	}
	token, digest, err := s.tokens.Issue(p.ID, room.ID)
	if err != nil {
		return nil, toConnectError("JoinRoom", err)
	}
	p.TokenDigest = digest

	if err := s.createParticipant(ctx, p); err != nil {
		return nil, toConnectError("JoinRoom", err)
	}

	slog.Info("Participant joined", "room_id", room.ID, "participant_id", p.ID)
	s.emit(ctx, notify.ParticipantJoined, room.ID, map[string]any{"participant_id": p.ID, "role": string(p.Role)})

	return connect.NewResponse(&api.JoinRoomResponse{
		Room:        toAPIRoom(room),
		Participant: toAPIParticipant(p),
		Token:       token,
	}), nil
}

func (s *RoomService) createParticipant(ctx context.Context, p *models.Participant) error {
	err := s.store.CreateParticipant(ctx, p)
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%q: %w", p.Name, ErrNameTaken)
	}
	return err
}

// ListMyRooms resolves every token the client holds and summarizes their rooms.
// Tokens that no longer resolve, and rooms that expired, are skipped.
func (s *RoomService) ListMyRooms(ctx context.Context, req *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error) {
	slog.Info("ListMyRooms request received", "tokens_count", len(req.Msg.Tokens))

	rooms := make([]api.RoomSummary, 0, len(req.Msg.Tokens))
	seen := make(map[string]bool, len(req.Msg.Tokens))
	for _, token := range req.Msg.Tokens {
		p, err := s.authenticator.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrUnknownParticipant) || errors.Is(err, auth.ErrMissingToken) {
				continue
			}
			return nil, toConnectError("ListMyRooms", err)
		}
		if seen[p.RoomID] {
			continue
		}
		seen[p.RoomID] = true

		room, err := s.loadRoom(ctx, p.RoomID)
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, ErrRoomExpired) {
			continue
		}
		if err != nil {
			return nil, toConnectError("ListMyRooms", err)
		}

		participants, expenses, err := s.store.CountRoomActivity(ctx, room.ID)
		if err != nil {
			return nil, toConnectError("ListMyRooms", err)
		}
		rooms = append(rooms, api.RoomSummary{
			Room:             toAPIRoom(room),
			ParticipantCount: participants,
			ExpenseCount:     expenses,
			MyName:           p.Name,
			MyRole:           string(p.Role),
		})
	}

	return connect.NewResponse(&api.ListMyRoomsResponse{Rooms: rooms}), nil
}

// AddVirtualParticipant adds a participant without a device, managed by the admin.
func (s *RoomService) AddVirtualParticipant(ctx context.Context, req *connect.Request[api.AddVirtualParticipantRequest]) (*connect.Response[api.AddVirtualParticipantResponse], error) {
	slog.Info("AddVirtualParticipant request received", "room_id", req.Msg.RoomID)

	_, room, err := s.admin(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("AddVirtualParticipant", err)
	}
	name, err := cleanName("name", req.Msg.Name, maxNameLen)
	if err != nil {
		return nil, toConnectError("AddVirtualParticipant", err)
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()
	if _, err := s.openRoom(ctx, room.ID); err != nil {
		return nil, toConnectError("AddVirtualParticipant", err)
	}

	p := &models.Participant{RoomID: room.ID, Name: name, Role: models.RoleVirtual}
	if err := s.createParticipant(ctx, p); err != nil {
		return nil, toConnectError("AddVirtualParticipant", err)
	}

	s.emit(ctx, notify.ParticipantJoined, room.ID, map[string]any{"participant_id": p.ID, "role": string(p.Role)})
	return connect.NewResponse(&api.AddVirtualParticipantResponse{Participant: toAPIParticipant(p)}), nil
}

// RemoveParticipant deletes a member or virtual participant along with the
// expenses they paid and their splits.
func (s *RoomService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	slog.Info("RemoveParticipant request received",
		"room_id", req.Msg.RoomID,
		"participant_id", req.Msg.ParticipantID,
	)

	me, room, err := s.admin(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}

	target, err := s.store.GetParticipant(ctx, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}
	if target.RoomID != room.ID {
		return nil, toConnectError("RemoveParticipant", fmt.Errorf("participant %s: %w", target.ID, storage.ErrNotFound))
	}
	if target.ID == me.ID {
		return nil, toConnectError("RemoveParticipant", fmt.Errorf("%w: you cannot remove yourself", ErrCannotRemove))
	}
	if target.IsAdmin() {
		return nil, toConnectError("RemoveParticipant", fmt.Errorf("%w: admins cannot be removed", ErrCannotRemove))
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()
	if _, err := s.openRoom(ctx, room.ID); err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}

	if err := s.store.DeleteParticipant(ctx, target.ID); err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}

	slog.Info("Participant removed", "room_id", room.ID, "participant_id", target.ID)
	s.emit(ctx, notify.ParticipantRemoved, room.ID, map[string]any{"participant_id": target.ID})
	return connect.NewResponse(&api.RemoveParticipantResponse{}), nil
}

// UpdatePaymentAlias sets the caller's payment alias. Allowed in locked rooms,
// since that is when creditors need to share it.
func (s *RoomService) UpdatePaymentAlias(ctx context.Context, req *connect.Request[api.UpdatePaymentAliasRequest]) (*connect.Response[api.UpdatePaymentAliasResponse], error) {
	me, _, err := s.member(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("UpdatePaymentAlias", err)
	}

	alias := strings.TrimSpace(req.Msg.PaymentAlias)
	if len([]rune(alias)) > maxAliasLen {
		return nil, toConnectError("UpdatePaymentAlias", invalidf("payment_alias must be at most %d characters", maxAliasLen))
	}

	if err := s.store.UpdatePaymentAlias(ctx, me.ID, alias); err != nil {
		return nil, toConnectError("UpdatePaymentAlias", err)
	}

	updated := *me
	updated.PaymentAlias = alias
	return connect.NewResponse(&api.UpdatePaymentAliasResponse{Participant: toAPIParticipant(&updated)}), nil
}

// LockRoom freezes a room and persists the transfers that settle it.
func (s *RoomService) LockRoom(ctx context.Context, req *connect.Request[api.LockRoomRequest]) (*connect.Response[api.LockRoomResponse], error) {
	slog.Info("LockRoom request received", "room_id", req.Msg.RoomID)

	_, room, err := s.admin(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("LockRoom", err)
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()

	room, err = s.openRoom(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("LockRoom", err)
	}

	participants, err := s.store.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("LockRoom", err)
	}
	expenses, err := s.store.ListExpenses(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("LockRoom", err)
	}

	_, transfers := calculator.Settle(participantIDs(participants), balanceInputs(expenses))

	settlements := make([]*models.Settlement, len(transfers))
	for i, t := range transfers {
		settlements[i] = &models.Settlement{
			RoomID:            room.ID,
			FromParticipantID: t.From,
			ToParticipantID:   t.To,
			Amount:            t.Amount,
		}
	}

	err = s.store.LockRoom(ctx, room.ID, settlements)
	if errors.Is(err, storage.ErrRoomLocked) {
		err = ErrRoomLocked
	}
	if err != nil {
		return nil, toConnectError("LockRoom", err)
	}
	room.IsLocked = true

	if s.metrics != nil {
		s.metrics.ObserveSettlement(len(settlements))
	}
	slog.Info("Room locked", "room_id", room.ID, "settlements_count", len(settlements))
	s.emit(ctx, notify.RoomLocked, room.ID, map[string]any{"settlements_count": len(settlements)})

	return connect.NewResponse(&api.LockRoomResponse{
		Room:        toAPIRoom(room),
		Settlements: toAPISettlements(settlements, newRoster(participants)),
	}), nil
}

// UnlockRoom reopens a locked room and discards its settlements.
func (s *RoomService) UnlockRoom(ctx context.Context, req *connect.Request[api.UnlockRoomRequest]) (*connect.Response[api.UnlockRoomResponse], error) {
	slog.Info("UnlockRoom request received", "room_id", req.Msg.RoomID)

	_, room, err := s.admin(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("UnlockRoom", err)
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()

	err = s.store.UnlockRoom(ctx, room.ID)
	if errors.Is(err, storage.ErrRoomOpen) {
		err = ErrRoomNotLocked
	}
	if err != nil {
		return nil, toConnectError("UnlockRoom", err)
	}
	room.IsLocked = false

	slog.Info("Room unlocked", "room_id", room.ID)
	s.emit(ctx, notify.RoomUnlocked, room.ID, nil)

	return connect.NewResponse(&api.UnlockRoomResponse{Room: toAPIRoom(room)}), nil
}

func participantIDs(participants []*models.Participant) []string {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}

// balanceInputs converts stored expenses to calculator input.
func balanceInputs(expenses []*models.Expense) []calculator.ExpenseForBalance {
	out := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		splits := make([]calculator.SplitForBalance, len(e.Splits))
		for j, sp := range e.Splits {
			splits[j] = calculator.SplitForBalance{ParticipantID: sp.ParticipantID, AmountOwed: sp.AmountOwed}
		}
		out[i] = calculator.ExpenseForBalance{PayerID: e.PayerID, Amount: e.Amount, Splits: splits}
	}
	return out
}
