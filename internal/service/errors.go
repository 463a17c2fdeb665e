package service

import (
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/internal/storage"
)

var (
	ErrNotInRoom     = errors.New("you are not a participant of this room")
	ErrAdminOnly     = errors.New("only the room admin can do this")
	ErrRoomLocked    = errors.New("room is locked")
	ErrRoomNotLocked = errors.New("room is not locked")
	ErrRoomExpired   = errors.New("room has expired")
	ErrNameTaken     = errors.New("name is already taken in this room")
	ErrNotPayer      = errors.New("only the payer or the room admin can change this expense")
	ErrCannotRemove  = errors.New("participant cannot be removed")
	ErrNotInvolved   = errors.New("only the debtor, the creditor or the room admin can mark this settlement")
	ErrAlreadyPaid   = errors.New("settlement is already paid")

	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("invalid request")
	// ErrInvalidSplits is wrapped together with ErrValidation when splits do not add up.
	ErrInvalidSplits = errors.New("invalid splits")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidSplitsf(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrValidation, ErrInvalidSplits, fmt.Sprintf(format, args...))
}

// toConnectError maps domain and storage errors onto Connect codes.
// Unexpected errors are logged and reported as Internal.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrNotInRoom), errors.Is(err, ErrAdminOnly),
		errors.Is(err, ErrNotPayer), errors.Is(err, ErrNotInvolved):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, ErrNameTaken):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ErrRoomLocked), errors.Is(err, ErrRoomNotLocked),
		errors.Is(err, ErrCannotRemove), errors.Is(err, ErrAlreadyPaid):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ErrRoomExpired), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	}

	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
}
