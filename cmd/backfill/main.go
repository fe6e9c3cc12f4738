// Command backfill populates every item's rank in one pass, after refreshing
// every group's monthly interaction volume. Meant for initial population of
// the rank column and for recovery after a formula change; safe to re-run.
package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/agorafeed/agora/activity"
	"github.com/agorafeed/agora/cmd"
	"github.com/agorafeed/agora/pgstore"
	"github.com/agorafeed/agora/rankmaint"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Backfilling ranks")

	// setup database
	pgcfg := fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		cfg.DatabaseUser,
		cfg.DatabaseName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
	)
	pg := pgstore.New(pgcfg)
	if err := pg.Connect(); err != nil {
		logger.Fatal().Err(err).Msg("Cannot connect to database")
	}

	ctx := context.Background()

	tracker := activity.NewTracker(pg, logger.With().Str("component", "activity tracker").Logger())
	if err := tracker.RefreshAll(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Cannot refresh group activity")
	}

	maintainer := rankmaint.New(pg, logger.With().Str("component", "rank maintainer").Logger(), rankmaint.Config{
		Workers:        cfg.SweepWorkers,
		PageSize:       cfg.SweepPageSize,
		PagesPerSecond: cfg.SweepPagesPerSec,
	})
	if err := maintainer.Backfill(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Backfill failed")
	}

	logger.Info().Msg("Backfill completed")
}
