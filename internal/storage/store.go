// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitroom/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned when a write violates a uniqueness or state constraint.
	ErrConflict = errors.New("storage: conflict")
	// ErrRoomLocked is returned when locking a room that is already locked.
	ErrRoomLocked = errors.New("storage: room already locked")
	// ErrRoomOpen is returned when unlocking a room that is not locked.
	ErrRoomOpen = errors.New("storage: room not locked")
)

// Store defines the interface for room storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateRoom persists a new room together with its admin participant.
	// IDs and timestamps left empty are filled in by the store.
	CreateRoom(ctx context.Context, room *models.Room, admin *models.Participant) error

	// GetRoom retrieves a room by ID.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)

	// GetRoomByCode retrieves a room by its join code.
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)

	// RoomCodeExists reports whether a room already uses code.
	RoomCodeExists(ctx context.Context, code string) (bool, error)

	// CountRoomActivity returns the number of participants and expenses in a room.
	CountRoomActivity(ctx context.Context, roomID string) (participants, expenses int, err error)

	// DeleteExpiredRooms deletes every room whose expiry is at or before now,
	// with all dependent records, and returns the deleted rooms.
	DeleteExpiredRooms(ctx context.Context, now int64) ([]*models.Room, error)

	// CreateParticipant adds a participant to an existing room.
	// Returns ErrConflict if the name is already taken in that room.
	CreateParticipant(ctx context.Context, participant *models.Participant) error

	// GetParticipant retrieves a participant by ID.
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)

	// ListParticipants returns a room's participants in joining order.
	ListParticipants(ctx context.Context, roomID string) ([]*models.Participant, error)

	// UpdatePaymentAlias sets a participant's payment alias.
	UpdatePaymentAlias(ctx context.Context, participantID, alias string) error

	// DeleteParticipant removes a participant together with their splits and
	// the expenses they paid.
	DeleteParticipant(ctx context.Context, participantID string) error

	// CreateExpense persists an expense and its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses returns a room's expenses with their splits, oldest first.
	ListExpenses(ctx context.Context, roomID string) ([]*models.Expense, error)

	// UpdateExpense overwrites an expense and replaces all of its splits.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// LockRoom marks an open room as locked and stores its settlements in one
	// transaction. Returns ErrRoomLocked if the room was already locked.
	LockRoom(ctx context.Context, roomID string, settlements []*models.Settlement) error

	// UnlockRoom reopens a locked room and deletes its settlements in one
	// transaction. Returns ErrRoomOpen if the room was not locked.
	UnlockRoom(ctx context.Context, roomID string) error

	// ListSettlements returns a room's settlements in the order they were computed.
	ListSettlements(ctx context.Context, roomID string) ([]*models.Settlement, error)

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// MarkSettlementPaid records a payment. Returns ErrConflict if the
	// settlement was already paid.
	MarkSettlementPaid(ctx context.Context, settlementID string, method models.PaymentMethod, paidAt int64) error

	// Close releases any resources held by the store.
	Close() error
}
