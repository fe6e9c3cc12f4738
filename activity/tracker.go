// Package activity maintains each group's trailing-month interaction
// volume, the normalization input of the balanced rank function.
package activity

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agorafeed/agora"
)

// Window is the trailing period over which interactions are summed.
const Window = 30 * 24 * time.Hour

// Tracker recomputes interactions_month by periodically re-summing item
// counters over the trailing window. The value is an approximation: it lags
// reality between refreshes, which the rank function tolerates.
type Tracker struct {
	store  agora.Store
	logger zerolog.Logger
}

func NewTracker(store agora.Store, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// RefreshGroup recomputes a single group's monthly volume and stores it in
// one write. If the underlying aggregates can't be read, the stored value is
// left untouched and a DataUnavailable error is returned; the group picks up
// a fresh value on the next pass.
func (t *Tracker) RefreshGroup(ctx context.Context, groupID string) error {
	since := agora.NowFunc().Add(-Window)

	n, err := t.store.SumGroupInteractions(ctx, groupID, since)
	if err != nil {
		return agora.DataUnavailable(err)
	}

	return t.store.SetGroupInteractionsMonth(ctx, groupID, n)
}

// RefreshAll recomputes every group. Per-group failures are logged and
// skipped so a transiently unavailable aggregate never zeroes a counter or
// aborts the rest of the pass. The scan stops between groups if ctx is done.
func (t *Tracker) RefreshAll(ctx context.Context) error {
	ids, err := t.store.ListGroupIDs(ctx)
	if err != nil {
		return agora.DataUnavailable(err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.RefreshGroup(ctx, id); err != nil {
			t.logger.Warn().Err(err).Str("group_id", id).Msg("Keeping last interaction count")
		}
	}

	return nil
}

// Run refreshes all groups immediately and then every interval, until ctx
// is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := t.RefreshAll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Error().Err(err).Msg("Group activity refresh failed, will retry")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
