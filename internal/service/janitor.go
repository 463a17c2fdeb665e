package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/splitroom/internal/metrics"
	"github.com/mmynk/splitroom/internal/storage"
)

// Janitor periodically deletes expired rooms and everything in them.
type Janitor struct {
	store    storage.Store
	metrics  *metrics.Metrics
	interval time.Duration
	clock    func() time.Time
}

// NewJanitor creates a janitor that sweeps every interval.
func NewJanitor(store storage.Store, interval time.Duration, opts Options) *Janitor {
	j := &Janitor{
		store:    store,
		metrics:  opts.Metrics,
		interval: interval,
		clock:    opts.Clock,
	}
	if j.clock == nil {
		j.clock = time.Now
	}
	return j
}

// Sweep deletes every room expired as of now and returns how many were removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	rooms, err := j.store.DeleteExpiredRooms(ctx, j.clock().Unix())
	if err != nil {
		return 0, err
	}
	for _, room := range rooms {
		slog.Info("Expired room deleted", "room_id", room.ID, "code", room.Code)
	}
	if j.metrics != nil {
		j.metrics.ExpiredRooms.Add(float64(len(rooms)))
	}
	return len(rooms), nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if n, err := j.Sweep(ctx); err != nil {
			slog.Error("Expired room sweep failed", "error", err)
		} else if n > 0 {
			slog.Info("Expired room sweep finished", "deleted_count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
