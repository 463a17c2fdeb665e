package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/storage"
)

const settlementColumns = "id, room_id, from_participant_id, to_participant_id, amount, is_paid, payment_method, paid_at, created_at"

// LockRoom flips an open room to locked and inserts its settlements atomically.
// The conditional update makes a second concurrent lock fail instead of
// inserting a duplicate batch.
func (s *SQLiteStore) LockRoom(ctx context.Context, roomID string, settlements []*models.Settlement) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE rooms SET is_locked = 1 WHERE id = ? AND is_locked = 0",
			roomID,
		)
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}
		if err := expectOneRow(result, "room", roomID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return lockStateError(ctx, tx, roomID, storage.ErrRoomLocked)
			}
			return err
		}

		now := time.Now().Unix()
		for _, settlement := range settlements {
			// Generate ID if not set
			if settlement.ID == "" {
				settlement.ID = uuid.New().String()
			}
			if settlement.CreatedAt == 0 {
				settlement.CreatedAt = now
			}
			settlement.RoomID = roomID

			_, err := tx.ExecContext(ctx,
				"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				settlement.ID, settlement.RoomID, settlement.FromParticipantID, settlement.ToParticipantID,
				settlement.Amount.StringFixed(2), boolToInt(settlement.IsPaid), string(settlement.PaymentMethod),
				settlement.PaidAt, settlement.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert settlement: %w", err)
			}
		}
		return nil
	})
}

// UnlockRoom reopens a locked room and discards its settlements atomically.
func (s *SQLiteStore) UnlockRoom(ctx context.Context, roomID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE rooms SET is_locked = 0 WHERE id = ? AND is_locked = 1",
			roomID,
		)
		if err != nil {
			return fmt.Errorf("failed to unlock room: %w", err)
		}
		if err := expectOneRow(result, "room", roomID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return lockStateError(ctx, tx, roomID, storage.ErrRoomOpen)
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE room_id = ?", roomID); err != nil {
			return fmt.Errorf("failed to delete settlements: %w", err)
		}
		return nil
	})
}

// lockStateError tells a missing room apart from one already in the target state.
func lockStateError(ctx context.Context, tx *sql.Tx, roomID string, stateErr error) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", roomID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("room %s: %w", roomID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check room existence: %w", err)
	}
	return fmt.Errorf("room %s: %w", roomID, stateErr)
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlements retrieves all settlements for a room in the order they were computed.
func (s *SQLiteStore) ListSettlements(ctx context.Context, roomID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE room_id = ? ORDER BY rowid",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// MarkSettlementPaid records how and when a settlement was paid.
func (s *SQLiteStore) MarkSettlementPaid(ctx context.Context, settlementID string, method models.PaymentMethod, paidAt int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var paid int
		err := tx.QueryRowContext(ctx, "SELECT is_paid FROM settlements WHERE id = ?", settlementID).Scan(&paid)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check settlement: %w", err)
		}
		if paid != 0 {
			return fmt.Errorf("settlement %s already paid: %w", settlementID, storage.ErrConflict)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE settlements SET is_paid = 1, payment_method = ?, paid_at = ? WHERE id = ?",
			string(method), paidAt, settlementID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark settlement paid: %w", err)
		}
		return nil
	})
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	s := &models.Settlement{}
	var paid int
	var method string
	err := row.Scan(&s.ID, &s.RoomID, &s.FromParticipantID, &s.ToParticipantID, &s.Amount,
		&paid, &method, &s.PaidAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.IsPaid = paid != 0
	s.PaymentMethod = models.PaymentMethod(method)
	return s, nil
}
