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

const expenseColumns = "id, room_id, payer_id, amount, description, category, created_at"

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			expense.ID, expense.RoomID, expense.PayerID, expense.Amount.String(),
			expense.Description, expense.Category, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertSplits(ctx, tx, expense)
	})
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, participant_id, amount_owed) VALUES (?, ?, ?)",
			split.ExpenseID, split.ParticipantID, split.AmountOwed.String(),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate split for participant %s: %w", split.ParticipantID, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	splits, err := s.listSplits(ctx, "WHERE expense_id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	expense.Splits = splits[expense.ID]

	return expense, nil
}

// ListExpenses returns all expenses of a room with their splits, oldest first.
// Splits are loaded with a single query after the expense rows are closed.
func (s *SQLiteStore) ListExpenses(ctx context.Context, roomID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE room_id = ? ORDER BY created_at, rowid",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splits, err := s.listSplits(ctx,
		"WHERE expense_id IN (SELECT id FROM expenses WHERE room_id = ?)",
		roomID,
	)
	if err != nil {
		return nil, err
	}
	for _, expense := range expenses {
		expense.Splits = splits[expense.ID]
	}

	return expenses, nil
}

// listSplits returns splits matching the where clause, grouped by expense ID.
func (s *SQLiteStore) listSplits(ctx context.Context, where string, args ...any) (map[string][]models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, participant_id, amount_owed FROM expense_splits "+where+" ORDER BY rowid",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[string][]models.ExpenseSplit)
	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ExpenseID, &split.ParticipantID, &split.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits[split.ExpenseID] = append(splits[split.ExpenseID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}

// UpdateExpense overwrites an existing expense and replaces its splits.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE expenses SET payer_id = ?, amount = ?, description = ?, category = ? WHERE id = ?",
			expense.PayerID, expense.Amount.String(), expense.Description, expense.Category, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := expectOneRow(result, "expense", expense.ID); err != nil {
			return err
		}

		// Delete old splits and insert new ones
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to delete old splits: %w", err)
		}
		return insertSplits(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense and its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return expectOneRow(result, "expense", expenseID)
	})
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	if err := row.Scan(&e.ID, &e.RoomID, &e.PayerID, &e.Amount, &e.Description, &e.Category, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}
