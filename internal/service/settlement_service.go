package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/notify"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	apiconnect.UnimplementedSettlementServiceHandler
	base
}

// NewSettlementService creates a SettlementService sharing locks with the RoomService.
func NewSettlementService(store storage.Store, locks *RoomLocks, opts Options) *SettlementService {
	return &SettlementService{base: newBase(store, locks, opts)}
}

// lockedRoom checks membership and requires the room to be locked.
func (s *SettlementService) lockedRoom(ctx context.Context, roomID string) (*models.Participant, *models.Room, error) {
	me, room, err := s.member(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if !room.IsLocked {
		return nil, nil, ErrRoomNotLocked
	}
	return me, room, nil
}

// ListSettlements returns every settlement of a locked room with payment progress.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	_, room, err := s.lockedRoom(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	people, err := s.roster(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}
	settlements, err := s.store.ListSettlements(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}
	expenses, err := s.store.ListExpenses(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	resp := &api.ListSettlementsResponse{
		Settlements:   toAPISettlements(settlements, people),
		TotalExpenses: decimal.Zero,
		RoomCode:      room.Code,
	}
	for _, e := range expenses {
		resp.TotalExpenses = resp.TotalExpenses.Add(e.Amount)
	}
	for _, st := range settlements {
		if st.IsPaid {
			resp.PaidCount++
		} else {
			resp.PendingCount++
		}
	}
	return connect.NewResponse(resp), nil
}

// MySettlements groups a locked room's settlements by the caller's part in them.
func (s *SettlementService) MySettlements(ctx context.Context, req *connect.Request[api.MySettlementsRequest]) (*connect.Response[api.MySettlementsResponse], error) {
	me, room, err := s.lockedRoom(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("MySettlements", err)
	}

	people, err := s.roster(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("MySettlements", err)
	}
	settlements, err := s.store.ListSettlements(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("MySettlements", err)
	}

	resp := &api.MySettlementsResponse{
		IOwe:          []api.Settlement{},
		TheyOweMe:     []api.Settlement{},
		TotalIOwe:     decimal.Zero,
		TotalOwedToMe: decimal.Zero,
	}
	if current, ok := people[me.ID]; ok {
		resp.MyPaymentAlias = current.PaymentAlias
	}

	for _, st := range settlements {
		view := toAPISettlement(st, people)
		switch {
		case st.FromParticipantID == me.ID:
			resp.IOwe = append(resp.IOwe, view)
			if !st.IsPaid {
				resp.TotalIOwe = resp.TotalIOwe.Add(st.Amount)
			}
		case st.ToParticipantID == me.ID:
			resp.TheyOweMe = append(resp.TheyOweMe, view)
			if !st.IsPaid {
				resp.TotalOwedToMe = resp.TotalOwedToMe.Add(st.Amount)
			}
		}
		if me.IsAdmin() {
			if from, ok := people[st.FromParticipantID]; ok && from.IsVirtual() {
				resp.VirtualSettlements = append(resp.VirtualSettlements, view)
			}
		}
	}
	return connect.NewResponse(resp), nil
}

// MarkSettlementPaid records that a settlement was paid. The debtor, the
// creditor and the admin may do this.
func (s *SettlementService) MarkSettlementPaid(ctx context.Context, req *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error) {
	slog.Info("MarkSettlementPaid request received",
		"settlement_id", req.Msg.SettlementID,
		"payment_method", req.Msg.PaymentMethod,
	)

	me, err := s.caller(ctx)
	if err != nil {
		return nil, toConnectError("MarkSettlementPaid", err)
	}
	if req.Msg.SettlementID == "" {
		return nil, toConnectError("MarkSettlementPaid", invalidf("settlement_id is required"))
	}
	method := models.PaymentMethod(req.Msg.PaymentMethod)
	if !method.Valid() {
		return nil, toConnectError("MarkSettlementPaid", invalidf("payment_method must be %q or %q", models.PaymentCash, models.PaymentTransfer))
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError("MarkSettlementPaid", err)
	}
	if settlement.RoomID != me.RoomID {
		return nil, toConnectError("MarkSettlementPaid", ErrNotInRoom)
	}
	if settlement.FromParticipantID != me.ID && settlement.ToParticipantID != me.ID && !me.IsAdmin() {
		return nil, toConnectError("MarkSettlementPaid", ErrNotInvolved)
	}

	unlock := s.locks.Lock(settlement.RoomID)
	defer unlock()

	room, err := s.loadRoom(ctx, settlement.RoomID)
	if err != nil {
		return nil, toConnectError("MarkSettlementPaid", err)
	}
	if !room.IsLocked {
		return nil, toConnectError("MarkSettlementPaid", ErrRoomNotLocked)
	}
	if settlement.IsPaid {
		return nil, toConnectError("MarkSettlementPaid", ErrAlreadyPaid)
	}

	paidAt := s.now()
	err = s.store.MarkSettlementPaid(ctx, settlement.ID, method, paidAt)
	if errors.Is(err, storage.ErrConflict) {
		err = ErrAlreadyPaid
	}
	if err != nil {
		return nil, toConnectError("MarkSettlementPaid", err)
	}
	settlement.IsPaid = true
	settlement.PaymentMethod = method
	settlement.PaidAt = paidAt

	people, err := s.roster(ctx, settlement.RoomID)
	if err != nil {
		return nil, toConnectError("MarkSettlementPaid", err)
	}

	slog.Info("Settlement paid", "room_id", settlement.RoomID, "settlement_id", settlement.ID, "participant_id", me.ID)
	s.emit(ctx, notify.SettlementPaid, settlement.RoomID, map[string]any{
		"settlement_id":  settlement.ID,
		"payment_method": string(method),
	})

	return connect.NewResponse(&api.MarkSettlementPaidResponse{Settlement: toAPISettlement(settlement, people)}), nil
}
