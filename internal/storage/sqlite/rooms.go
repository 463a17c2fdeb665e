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

const roomColumns = "id, code, name, is_locked, created_at, expires_at"

// CreateRoom persists a new room and its admin participant in one transaction.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room, admin *models.Participant) error {
	// Generate IDs if not set
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}
	admin.RoomID = room.ID

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO rooms ("+roomColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			room.ID, room.Code, room.Name, boolToInt(room.IsLocked), room.CreatedAt, room.ExpiresAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("room code %s: %w", room.Code, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}

		return insertParticipant(ctx, tx, admin)
	})
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", roomID)
	return scanRoom(row, roomID)
}

// GetRoomByCode retrieves a room by its join code.
func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE code = ?", code)
	return scanRoom(row, code)
}

// RoomCodeExists reports whether a room already uses code.
func (s *SQLiteStore) RoomCodeExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE code = ?", code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check room code: %w", err)
	}
	return true, nil
}

// CountRoomActivity returns the number of participants and expenses in a room.
func (s *SQLiteStore) CountRoomActivity(ctx context.Context, roomID string) (int, int, error) {
	var participants, expenses int
	err := s.db.QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM participants WHERE room_id = ?),
		    (SELECT COUNT(*) FROM expenses WHERE room_id = ?)`,
		roomID, roomID,
	).Scan(&participants, &expenses)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count room activity: %w", err)
	}
	return participants, expenses, nil
}

// DeleteExpiredRooms deletes every room that expired at or before now.
// Dependent rows are deleted explicitly, children first.
func (s *SQLiteStore) DeleteExpiredRooms(ctx context.Context, now int64) ([]*models.Room, error) {
	var deleted []*models.Room
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			"SELECT "+roomColumns+" FROM rooms WHERE expires_at > 0 AND expires_at <= ? ORDER BY created_at",
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to list expired rooms: %w", err)
		}
		for rows.Next() {
			room, err := scanRoom(rows, "")
			if err != nil {
				rows.Close()
				return err
			}
			deleted = append(deleted, room)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate expired rooms: %w", err)
		}

		for _, room := range deleted {
			if err := deleteRoomCascade(ctx, tx, room.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func deleteRoomCascade(ctx context.Context, tx *sql.Tx, roomID string) error {
	statements := []string{
		"DELETE FROM settlements WHERE room_id = ?",
		"DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE room_id = ?)",
		"DELETE FROM expenses WHERE room_id = ?",
		"DELETE FROM participants WHERE room_id = ?",
		"DELETE FROM rooms WHERE id = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, roomID); err != nil {
			return fmt.Errorf("failed to delete room %s: %w", roomID, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner, key string) (*models.Room, error) {
	room := &models.Room{}
	var locked int
	err := row.Scan(&room.ID, &room.Code, &room.Name, &locked, &room.CreatedAt, &room.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	room.IsLocked = locked != 0
	return room, nil
}
