// Package service implements the splitroom Connect services on top of a
// storage.Store: input validation, authorization, the lock/unlock trigger of
// the settlement computation, and the expired room janitor.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/metrics"
	"github.com/mmynk/splitroom/internal/middleware"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/notify"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// PublicProcedures can be called without a participant token.
var PublicProcedures = []string{
	apiconnect.RoomServiceCreateRoomProcedure,
	apiconnect.RoomServiceJoinRoomProcedure,
	apiconnect.RoomServiceListMyRoomsProcedure,
}

// Options carries the collaborators shared by all services.
type Options struct {
	// Notifier receives domain events after successful writes. Defaults to notify.Nop.
	Notifier notify.Notifier
	// Metrics is optional.
	Metrics *metrics.Metrics
	// RoomTTL is how long a room lives after creation. Zero means forever.
	RoomTTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// base holds what every service needs to resolve the caller and their room.
type base struct {
	store    storage.Store
	locks    *RoomLocks
	notifier notify.Notifier
	metrics  *metrics.Metrics
	roomTTL  time.Duration
	clock    func() time.Time
}

func newBase(store storage.Store, locks *RoomLocks, opts Options) base {
	b := base{
		store:    store,
		locks:    locks,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		roomTTL:  opts.RoomTTL,
		clock:    opts.Clock,
	}
	if b.notifier == nil {
		b.notifier = notify.Nop
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	if b.locks == nil {
		b.locks = NewRoomLocks()
	}
	return b
}

// caller returns the participant resolved by the auth interceptor.
func (b *base) caller(ctx context.Context) (*models.Participant, error) {
	p := middleware.GetParticipant(ctx)
	if p == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return p, nil
}

// loadRoom fetches a room and hides it once expired.
func (b *base) loadRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := b.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Expired(b.clock().Unix()) {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrRoomExpired)
	}
	return room, nil
}

// member checks that the caller belongs to roomID and returns both.
func (b *base) member(ctx context.Context, roomID string) (*models.Participant, *models.Room, error) {
	me, err := b.caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	if roomID == "" {
		return nil, nil, invalidf("room_id is required")
	}
	if me.RoomID != roomID {
		return nil, nil, ErrNotInRoom
	}
	room, err := b.loadRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return me, room, nil
}

// admin is member plus the admin role check.
func (b *base) admin(ctx context.Context, roomID string) (*models.Participant, *models.Room, error) {
	me, room, err := b.member(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if !me.IsAdmin() {
		return nil, nil, ErrAdminOnly
	}
	return me, room, nil
}

// openRoom reloads the room under its lock and requires it to be open.
func (b *base) openRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := b.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsLocked {
		return nil, ErrRoomLocked
	}
	return room, nil
}

// emit delivers an event; failures are logged and never returned.
func (b *base) emit(ctx context.Context, typ notify.EventType, roomID string, payload map[string]any) {
	err := b.notifier.Notify(ctx, notify.Event{Type: typ, RoomID: roomID, Payload: payload})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Event delivery failed", "type", string(typ), "room_id", roomID, "error", err)
	}
}

func (b *base) now() int64 {
	return b.clock().Unix()
}
