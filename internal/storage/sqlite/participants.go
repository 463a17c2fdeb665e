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

const participantColumns = "id, room_id, name, role, payment_alias, token_digest, joined_at"

// CreateParticipant inserts a new participant into an existing room.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertParticipant(ctx, tx, participant)
	})
}

func insertParticipant(ctx context.Context, tx *sql.Tx, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt == 0 {
		p.JoinedAt = time.Now().Unix()
	}

	// Virtual participants have no token; keep the column NULL for them.
	var digest any
	if p.TokenDigest != "" {
		digest = p.TokenDigest
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO participants ("+participantColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.RoomID, p.Name, string(p.Role), p.PaymentAlias, digest, p.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("participant name %q: %w", p.Name, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE id = ?",
		participantID,
	)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns a room's participants in the order they joined.
func (s *SQLiteStore) ListParticipants(ctx context.Context, roomID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE room_id = ? ORDER BY joined_at, rowid",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// UpdatePaymentAlias sets a participant's payment alias.
func (s *SQLiteStore) UpdatePaymentAlias(ctx context.Context, participantID, alias string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE participants SET payment_alias = ? WHERE id = ?",
		alias, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment alias: %w", err)
	}
	return expectOneRow(result, "participant", participantID)
}

// DeleteParticipant removes a participant, their splits, and the expenses they
// paid (with those expenses' splits).
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, participantID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		statements := []string{
			"DELETE FROM expense_splits WHERE participant_id = ?1",
			"DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE payer_id = ?1)",
			"DELETE FROM expenses WHERE payer_id = ?1",
			"DELETE FROM settlements WHERE from_participant_id = ?1 OR to_participant_id = ?1",
		}
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt, participantID); err != nil {
				return fmt.Errorf("failed to delete participant data: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", participantID)
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		return expectOneRow(result, "participant", participantID)
	})
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	var role string
	var digest sql.NullString
	if err := row.Scan(&p.ID, &p.RoomID, &p.Name, &role, &p.PaymentAlias, &digest, &p.JoinedAt); err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	if digest.Valid {
		p.TokenDigest = digest.String
	}
	return p, nil
}
