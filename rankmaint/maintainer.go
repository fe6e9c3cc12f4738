// Package rankmaint keeps each item's persisted rank consistent with the
// balanced rank function. The rank column is derived data: it is recomputed
// when an item's score moves, when its group's activity level moves, and on
// a periodic sweep so ranks keep drifting down as items age.
package rankmaint

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/agorafeed/agora"
	"github.com/agorafeed/agora/ranking"
)

type Config struct {
	// Workers bounds concurrent per-item recomputes during sweeps.
	Workers int
	// PageSize is how many items a sweep fetches per storage round-trip.
	PageSize int
	// PagesPerSecond paces the table scan so a sweep over a large table
	// doesn't monopolise the database.
	PagesPerSecond float64
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.PagesPerSecond <= 0 {
		cfg.PagesPerSecond = 10
	}
	return cfg
}

type Maintainer struct {
	store   agora.Store
	logger  zerolog.Logger
	config  Config
	limiter *rate.Limiter
}

func New(store agora.Store, logger zerolog.Logger, config Config) *Maintainer {
	cfg := config.withDefaults()

	return &Maintainer{
		store:   store,
		logger:  logger,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.PagesPerSecond), 1),
	}
}

// recompute evaluates the rank function against the item's current score and
// its group's current activity, then persists the result. The store write
// compares computation times, so a recompute racing a fresher one loses
// silently rather than regressing the rank.
func (m *Maintainer) recompute(ctx context.Context, item *agora.Item) error {
	group, err := m.store.FindGroup(ctx, item.GroupID)
	if err != nil {
		return fmt.Errorf("group %q for item %q: %w", item.GroupID, item.ID, err)
	}

	now := agora.NowFunc()
	r, err := ranking.Rank(item.Score, item.Published, group.InteractionsMonth, now)
	if err != nil {
		return err
	}

	return m.store.UpdateItemRank(ctx, item.ID, r, now)
}

// OnScoreChange recomputes a single item, in response to an ingestion event
// reporting a vote on it.
func (m *Maintainer) OnScoreChange(ctx context.Context, itemID string) error {
	item, err := m.store.FindItem(ctx, itemID)
	if err != nil {
		return agora.DataUnavailable(err)
	}

	return m.recompute(ctx, item)
}

// OnGroupActivityChange recomputes every item in a group after its
// interactions_month moved. Per-item failures are logged and skipped; the
// rest of the group still gets fresh ranks.
func (m *Maintainer) OnGroupActivityChange(ctx context.Context, groupID string) error {
	items, err := m.store.ListItemsByGroup(ctx, groupID)
	if err != nil {
		return agora.DataUnavailable(err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := m.recompute(ctx, item); err != nil {
			m.logger.Warn().Err(err).Str("item_id", item.ID).Msg("Skipping item, will catch up on next sweep")
		}
	}

	return nil
}

// Sweep walks the whole item table and recomputes every rank from each
// item's current score and its group's current activity. Items are fetched
// in ID-ordered pages and recomputed on a bounded worker pool; a failed item
// is logged and skipped, never aborting the pass. Interrupting ctx stops the
// scan between pages; re-running simply rescans from the start, which the
// conditional rank write makes harmless.
func (m *Maintainer) Sweep(ctx context.Context) error {
	pool := pond.NewPool(m.config.Workers)
	swept := atomic.Int64{}
	errored := atomic.Int64{}

	afterID := ""
	for {
		if err := m.limiter.Wait(ctx); err != nil {
			pool.StopAndWait()
			return err
		}

		items, err := m.store.ListItemsAfter(ctx, afterID, m.config.PageSize)
		if err != nil {
			pool.StopAndWait()
			return agora.DataUnavailable(err)
		}
		if len(items) == 0 {
			break
		}
		afterID = items[len(items)-1].ID

		for _, item := range items {
			item := item
			pool.Submit(func() {
				if err := m.recompute(ctx, item); err != nil {
					m.logger.Warn().Err(err).Str("item_id", item.ID).Msg("Skipping item, will catch up on next sweep")
					errored.Add(1)
					return
				}
				swept.Add(1)
			})
		}
	}

	pool.StopAndWait()

	m.logger.Info().
		Int64("swept", swept.Load()).
		Int64("errored", errored.Load()).
		Msg("Rank sweep completed")

	return nil
}

// Backfill populates the rank column in one pass over the full table, using
// every item's current score and its group's current activity at the time of
// the pass. This is the initial-population behavior, not a historical
// reconstruction; running it twice back to back yields identical ranks.
func (m *Maintainer) Backfill(ctx context.Context) error {
	return m.Sweep(ctx)
}

// Run sweeps immediately and then every interval, until ctx is done. Decay
// is time-dependent, so ranks must drift down even when nothing is voting.
func (m *Maintainer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.Error().Err(err).Msg("Rank sweep failed, will retry")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
