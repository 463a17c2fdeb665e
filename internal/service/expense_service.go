package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitroom/internal/calculator"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/notify"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	base
}

// NewExpenseService creates an ExpenseService sharing locks with the RoomService.
func NewExpenseService(store storage.Store, locks *RoomLocks, opts Options) *ExpenseService {
	return &ExpenseService{base: newBase(store, locks, opts)}
}

// CreateExpense records a new expense in an open room.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"room_id", req.Msg.RoomID,
		"amount", req.Msg.Amount.String(),
		"splits_count", len(req.Msg.Splits)+len(req.Msg.SplitAmong),
	)

	_, room, err := s.member(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	unlock := s.locks.Lock(room.ID)
	defer unlock()
	if _, err := s.openRoom(ctx, room.ID); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	people, err := s.roster(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	expense, err := buildExpense(expenseInput{
		PayerID:     req.Msg.PayerID,
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		Splits:      req.Msg.Splits,
		SplitAmong:  req.Msg.SplitAmong,
		Weights:     req.Msg.SplitWeights,
	}, people)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	expense.RoomID = room.ID

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	slog.Info("Expense created", "room_id", room.ID, "expense_id", expense.ID)
	s.emit(ctx, notify.ExpenseCreated, room.ID, map[string]any{"expense_id": expense.ID, "amount": expense.Amount.String()})

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense, people)}), nil
}

// UpdateExpense replaces an expense and its splits. Only the payer or the admin may do this.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	existing, err := s.editableExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}

	unlock := s.locks.Lock(existing.RoomID)
	defer unlock()
	if _, err := s.openRoom(ctx, existing.RoomID); err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}

	people, err := s.roster(ctx, existing.RoomID)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}
	expense, err := buildExpense(expenseInput{
		PayerID:     req.Msg.PayerID,
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		Splits:      req.Msg.Splits,
		SplitAmong:  req.Msg.SplitAmong,
		Weights:     req.Msg.SplitWeights,
	}, people)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}
	expense.ID = existing.ID
	expense.RoomID = existing.RoomID
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}

	slog.Info("Expense updated", "room_id", expense.RoomID, "expense_id", expense.ID)
	s.emit(ctx, notify.ExpenseUpdated, expense.RoomID, map[string]any{"expense_id": expense.ID, "amount": expense.Amount.String()})

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense, people)}), nil
}

// DeleteExpense removes an expense. Only the payer or the admin may do this.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	existing, err := s.editableExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}

	unlock := s.locks.Lock(existing.RoomID)
	defer unlock()
	if _, err := s.openRoom(ctx, existing.RoomID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}

	if err := s.store.DeleteExpense(ctx, existing.ID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}

	slog.Info("Expense deleted", "room_id", existing.RoomID, "expense_id", existing.ID)
	s.emit(ctx, notify.ExpenseDeleted, existing.RoomID, map[string]any{"expense_id": existing.ID})

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// editableExpense loads an expense the caller may change.
func (s *ExpenseService) editableExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	me, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if expenseID == "" {
		return nil, invalidf("expense_id is required")
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.RoomID != me.RoomID {
		return nil, ErrNotInRoom
	}
	if expense.PayerID != me.ID && !me.IsAdmin() {
		return nil, ErrNotPayer
	}
	return expense, nil
}

// ListExpenses returns every expense of a room, oldest first, with its total.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	_, room, err := s.member(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}

	people, err := s.roster(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}
	expenses, err := s.store.ListExpenses(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}

	resp := &api.ListExpensesResponse{
		Expenses: make([]api.Expense, len(expenses)),
		Total:    decimal.Zero,
	}
	for i, e := range expenses {
		resp.Expenses[i] = toAPIExpense(e, people)
		resp.Total = resp.Total.Add(e.Amount)
	}
	return connect.NewResponse(resp), nil
}

// GetBalances reports live balances and the transfers locking the room would create now.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	_, room, err := s.member(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}

	participants, err := s.store.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}
	expenses, err := s.store.ListExpenses(ctx, room.ID)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}
	people := newRoster(participants)

	balances, transfers := calculator.Settle(participantIDs(participants), balanceInputs(expenses))

	resp := &api.GetBalancesResponse{
		Balances:  make([]api.Balance, len(balances)),
		Transfers: make([]api.Transfer, len(transfers)),
	}
	for i, b := range balances {
		resp.Balances[i] = api.Balance{
			ParticipantID: b.ParticipantID,
			Name:          people.name(b.ParticipantID),
			Paid:          b.Paid,
			Owed:          b.Owed,
			Net:           b.Net,
		}
	}
	for i, t := range transfers {
		resp.Transfers[i] = api.Transfer{
			FromParticipantID: t.From,
			FromName:          people.name(t.From),
			ToParticipantID:   t.To,
			ToName:            people.name(t.To),
			Amount:            t.Amount,
		}
	}
	return connect.NewResponse(resp), nil
}

func (b *base) roster(ctx context.Context, roomID string) (roster, error) {
	participants, err := b.store.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return newRoster(participants), nil
}
