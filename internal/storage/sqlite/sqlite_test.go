package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "splitroom-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// seedRoom creates a room with an admin and the given members.
func seedRoom(t *testing.T, store *SQLiteStore, code string, members ...string) (*models.Room, []*models.Participant) {
	t.Helper()
	ctx := context.Background()

	room := &models.Room{Code: code, Name: "Trip " + code, ExpiresAt: time.Now().Add(time.Hour).Unix()}
	admin := &models.Participant{Name: "Admin", Role: models.RoleAdmin, TokenDigest: "digest-" + code}
	if err := store.CreateRoom(ctx, room, admin); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	participants := []*models.Participant{admin}
	for _, name := range members {
		p := &models.Participant{RoomID: room.ID, Name: name, Role: models.RoleMember, TokenDigest: "digest-" + code + name}
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant(%s) failed: %v", name, err)
		}
		participants = append(participants, p)
	}
	return room, participants
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRooms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateRoom generates IDs and stores admin", func(t *testing.T) {
		room, participants := seedRoom(t, store, "ABC234")

		if room.ID == "" {
			t.Error("Expected room ID to be generated")
		}
		if room.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		admin := participants[0]
		if admin.RoomID != room.ID {
			t.Errorf("Admin room mismatch: got %s, want %s", admin.RoomID, room.ID)
		}

		byCode, err := store.GetRoomByCode(ctx, "ABC234")
		if err != nil {
			t.Fatalf("GetRoomByCode failed: %v", err)
		}
		if byCode.ID != room.ID || byCode.Name != room.Name || byCode.IsLocked {
			t.Errorf("Unexpected room: %+v", byCode)
		}

		got, err := store.GetParticipant(ctx, admin.ID)
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if got.Role != models.RoleAdmin || got.TokenDigest != "digest-ABC234" {
			t.Errorf("Unexpected admin: %+v", got)
		}
	})

	t.Run("duplicate room code is a conflict", func(t *testing.T) {
		room := &models.Room{Code: "ABC234", Name: "Other"}
		admin := &models.Participant{Name: "Someone", Role: models.RoleAdmin}
		err := store.CreateRoom(ctx, room, admin)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("RoomCodeExists", func(t *testing.T) {
		exists, err := store.RoomCodeExists(ctx, "ABC234")
		if err != nil || !exists {
			t.Errorf("Expected code to exist, got exists=%v err=%v", exists, err)
		}
		exists, err = store.RoomCodeExists(ctx, "ZZZZZZ")
		if err != nil || exists {
			t.Errorf("Expected code to be free, got exists=%v err=%v", exists, err)
		}
	})

	t.Run("GetRoom returns ErrNotFound for nonexistent room", func(t *testing.T) {
		_, err := store.GetRoom(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpiredRooms removes only expired rooms", func(t *testing.T) {
		fresh, _ := seedRoom(t, store, "FRESH2")
		stale, staleMembers := seedRoom(t, store, "STALE2", "Bob")

		// Push the stale room into the past through a direct update.
		if _, err := store.db.ExecContext(ctx, "UPDATE rooms SET expires_at = ? WHERE id = ?", 1, stale.ID); err != nil {
			t.Fatalf("Failed to age room: %v", err)
		}
		expense := &models.Expense{
			RoomID: stale.ID, PayerID: staleMembers[1].ID, Amount: amount("10"), Description: "Snacks",
			Splits: []models.ExpenseSplit{{ParticipantID: staleMembers[0].ID, AmountOwed: amount("10")}},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		deleted, err := store.DeleteExpiredRooms(ctx, time.Now().Unix())
		if err != nil {
			t.Fatalf("DeleteExpiredRooms failed: %v", err)
		}
		if len(deleted) != 1 || deleted[0].ID != stale.ID {
			t.Fatalf("Expected only the stale room to be deleted, got %+v", deleted)
		}

		if _, err := store.GetRoom(ctx, stale.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected stale room to be gone, got %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected stale expense to be gone, got %v", err)
		}
		if _, err := store.GetRoom(ctx, fresh.ID); err != nil {
			t.Errorf("Expected fresh room to survive, got %v", err)
		}
	})
}

func TestParticipants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room, participants := seedRoom(t, store, "PART22", "Bob", "Carol")

	t.Run("ListParticipants keeps joining order", func(t *testing.T) {
		list, err := store.ListParticipants(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		want := []string{"Admin", "Bob", "Carol"}
		if len(list) != len(want) {
			t.Fatalf("Expected %d participants, got %d", len(want), len(list))
		}
		for i, p := range list {
			if p.Name != want[i] {
				t.Errorf("Participant %d: got %s, want %s", i, p.Name, want[i])
			}
		}
	})

	t.Run("name is unique per room", func(t *testing.T) {
		dup := &models.Participant{RoomID: room.ID, Name: "Bob", Role: models.RoleMember}
		err := store.CreateParticipant(ctx, dup)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("virtual participant has no token digest", func(t *testing.T) {
		v := &models.Participant{RoomID: room.ID, Name: "Grandma", Role: models.RoleVirtual}
		if err := store.CreateParticipant(ctx, v); err != nil {
			t.Fatalf("CreateParticipant failed: %v", err)
		}
		got, err := store.GetParticipant(ctx, v.ID)
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if !got.IsVirtual() || got.TokenDigest != "" {
			t.Errorf("Unexpected virtual participant: %+v", got)
		}
	})

	t.Run("UpdatePaymentAlias", func(t *testing.T) {
		bob := participants[1]
		if err := store.UpdatePaymentAlias(ctx, bob.ID, "bob@bank"); err != nil {
			t.Fatalf("UpdatePaymentAlias failed: %v", err)
		}
		got, _ := store.GetParticipant(ctx, bob.ID)
		if got.PaymentAlias != "bob@bank" {
			t.Errorf("Alias mismatch: got %s, want bob@bank", got.PaymentAlias)
		}

		err := store.UpdatePaymentAlias(ctx, "nonexistent-id", "x")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteParticipant removes their expenses and splits", func(t *testing.T) {
		admin, bob, carol := participants[0], participants[1], participants[2]

		paidByCarol := &models.Expense{
			RoomID: room.ID, PayerID: carol.ID, Amount: amount("30"), Description: "Taxi",
			Splits: []models.ExpenseSplit{
				{ParticipantID: admin.ID, AmountOwed: amount("15")},
				{ParticipantID: bob.ID, AmountOwed: amount("15")},
			},
		}
		paidByBob := &models.Expense{
			RoomID: room.ID, PayerID: bob.ID, Amount: amount("20"), Description: "Lunch",
			Splits: []models.ExpenseSplit{
				{ParticipantID: bob.ID, AmountOwed: amount("10")},
				{ParticipantID: carol.ID, AmountOwed: amount("10")},
			},
		}
		for _, e := range []*models.Expense{paidByCarol, paidByBob} {
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		if err := store.DeleteParticipant(ctx, carol.ID); err != nil {
			t.Fatalf("DeleteParticipant failed: %v", err)
		}

		if _, err := store.GetExpense(ctx, paidByCarol.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected Carol's expense to be deleted, got %v", err)
		}
		lunch, err := store.GetExpense(ctx, paidByBob.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if len(lunch.Splits) != 1 || lunch.Splits[0].ParticipantID != bob.ID {
			t.Errorf("Expected only Bob's split to remain, got %+v", lunch.Splits)
		}

		if err := store.DeleteParticipant(ctx, carol.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room, participants := seedRoom(t, store, "EXPN22", "Bob", "Carol")
	admin, bob, carol := participants[0], participants[1], participants[2]

	expense := &models.Expense{
		RoomID:      room.ID,
		PayerID:     admin.ID,
		Amount:      amount("100.00"),
		Description: "Dinner",
		Category:    "food",
		Splits: []models.ExpenseSplit{
			{ParticipantID: admin.ID, AmountOwed: amount("33.34")},
			{ParticipantID: bob.ID, AmountOwed: amount("33.33")},
			{ParticipantID: carol.ID, AmountOwed: amount("33.33")},
		},
	}

	t.Run("CreateExpense and GetExpense round trip", func(t *testing.T) {
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.CreatedAt == 0 {
			t.Fatalf("Expected ID and CreatedAt to be set: %+v", expense)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(amount("100")) {
			t.Errorf("Amount mismatch: got %s, want 100", got.Amount)
		}
		if got.Description != "Dinner" || got.Category != "food" || got.PayerID != admin.ID {
			t.Errorf("Unexpected expense: %+v", got)
		}
		if len(got.Splits) != 3 {
			t.Fatalf("Expected 3 splits, got %d", len(got.Splits))
		}
		if got.Splits[0].ParticipantID != admin.ID || !got.Splits[0].AmountOwed.Equal(amount("33.34")) {
			t.Errorf("Unexpected first split: %+v", got.Splits[0])
		}
		if !got.SplitsTotal().Equal(amount("100")) {
			t.Errorf("Splits total mismatch: got %s", got.SplitsTotal())
		}
	})

	t.Run("duplicate split participant is a conflict", func(t *testing.T) {
		bad := &models.Expense{
			RoomID: room.ID, PayerID: bob.ID, Amount: amount("10"), Description: "Bad",
			Splits: []models.ExpenseSplit{
				{ParticipantID: bob.ID, AmountOwed: amount("5")},
				{ParticipantID: bob.ID, AmountOwed: amount("5")},
			},
		}
		err := store.CreateExpense(ctx, bad)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
		// The transaction must not leave a partial expense behind.
		if _, err := store.GetExpense(ctx, bad.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected rolled back expense, got %v", err)
		}
	})

	t.Run("UpdateExpense replaces splits", func(t *testing.T) {
		expense.Amount = amount("50")
		expense.Description = "Dinner (fixed)"
		expense.Splits = []models.ExpenseSplit{
			{ParticipantID: bob.ID, AmountOwed: amount("50")},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "Dinner (fixed)" || !got.Amount.Equal(amount("50")) {
			t.Errorf("Unexpected expense after update: %+v", got)
		}
		if len(got.Splits) != 1 || got.Splits[0].ParticipantID != bob.ID {
			t.Errorf("Expected a single split for Bob, got %+v", got.Splits)
		}

		missing := &models.Expense{ID: "nonexistent-id", PayerID: bob.ID, Amount: amount("1")}
		if err := store.UpdateExpense(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpenses attaches splits to each expense", func(t *testing.T) {
		second := &models.Expense{
			RoomID: room.ID, PayerID: carol.ID, Amount: amount("12.50"), Description: "Coffee",
			Splits: []models.ExpenseSplit{
				{ParticipantID: admin.ID, AmountOwed: amount("6.25")},
				{ParticipantID: carol.ID, AmountOwed: amount("6.25")},
			},
		}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		list, err := store.ListExpenses(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 expenses, got %d", len(list))
		}
		if list[0].ID != expense.ID || list[1].ID != second.ID {
			t.Errorf("Unexpected order: %s, %s", list[0].ID, list[1].ID)
		}
		if len(list[0].Splits) != 1 || len(list[1].Splits) != 2 {
			t.Errorf("Unexpected split counts: %d, %d", len(list[0].Splits), len(list[1].Splits))
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room, participants := seedRoom(t, store, "SETL22", "Bob")
	admin, bob := participants[0], participants[1]

	settlements := []*models.Settlement{
		{FromParticipantID: bob.ID, ToParticipantID: admin.ID, Amount: amount("25.5")},
	}

	t.Run("LockRoom stores settlements and locks", func(t *testing.T) {
		if err := store.LockRoom(ctx, room.ID, settlements); err != nil {
			t.Fatalf("LockRoom failed: %v", err)
		}

		got, err := store.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if !got.IsLocked {
			t.Error("Expected room to be locked")
		}

		list, err := store.ListSettlements(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("Expected 1 settlement, got %d", len(list))
		}
		s := list[0]
		if s.ID != settlements[0].ID || s.RoomID != room.ID || s.IsPaid {
			t.Errorf("Unexpected settlement: %+v", s)
		}
		if !s.Amount.Equal(amount("25.50")) {
			t.Errorf("Amount mismatch: got %s, want 25.50", s.Amount)
		}
	})

	t.Run("LockRoom twice fails without new settlements", func(t *testing.T) {
		extra := []*models.Settlement{{FromParticipantID: admin.ID, ToParticipantID: bob.ID, Amount: amount("1")}}
		err := store.LockRoom(ctx, room.ID, extra)
		if !errors.Is(err, storage.ErrRoomLocked) {
			t.Errorf("Expected ErrRoomLocked, got %v", err)
		}
		list, _ := store.ListSettlements(ctx, room.ID)
		if len(list) != 1 {
			t.Errorf("Expected settlements to be unchanged, got %d", len(list))
		}
	})

	t.Run("LockRoom on missing room", func(t *testing.T) {
		err := store.LockRoom(ctx, "nonexistent-id", nil)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("MarkSettlementPaid", func(t *testing.T) {
		id := settlements[0].ID
		paidAt := time.Now().Unix()
		if err := store.MarkSettlementPaid(ctx, id, models.PaymentTransfer, paidAt); err != nil {
			t.Fatalf("MarkSettlementPaid failed: %v", err)
		}

		got, err := store.GetSettlement(ctx, id)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if !got.IsPaid || got.PaymentMethod != models.PaymentTransfer || got.PaidAt != paidAt {
			t.Errorf("Unexpected settlement after payment: %+v", got)
		}

		err = store.MarkSettlementPaid(ctx, id, models.PaymentCash, paidAt)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict for already paid settlement, got %v", err)
		}

		err = store.MarkSettlementPaid(ctx, "nonexistent-id", models.PaymentCash, paidAt)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UnlockRoom deletes settlements", func(t *testing.T) {
		if err := store.UnlockRoom(ctx, room.ID); err != nil {
			t.Fatalf("UnlockRoom failed: %v", err)
		}

		got, _ := store.GetRoom(ctx, room.ID)
		if got.IsLocked {
			t.Error("Expected room to be open")
		}
		list, err := store.ListSettlements(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected no settlements, got %d", len(list))
		}

		if err := store.UnlockRoom(ctx, room.ID); !errors.Is(err, storage.ErrRoomOpen) {
			t.Errorf("Expected ErrRoomOpen, got %v", err)
		}
	})
}
