package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agorafeed/agora"
	"github.com/agorafeed/agora/activity"
	"github.com/agorafeed/agora/cmd"
	"github.com/agorafeed/agora/pgstore"
	"github.com/agorafeed/agora/prefmigrate"
	"github.com/agorafeed/agora/rankmaint"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Starting ranker daemon")

	// setup database
	pgcfg := fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		cfg.DatabaseUser,
		cfg.DatabaseName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
	)
	pg := pgstore.New(pgcfg)

	tracker := activity.NewTracker(pg, logger.With().Str("component", "activity tracker").Logger())
	maintainer := rankmaint.New(pg, logger.With().Str("component", "rank maintainer").Logger(), rankmaint.Config{
		Workers:        cfg.SweepWorkers,
		PageSize:       cfg.SweepPageSize,
		PagesPerSecond: cfg.SweepPagesPerSec,
	})

	migrators := []agora.PreferenceMigrator{}
	for _, ret := range agora.Retirements {
		migrators = append(migrators, prefmigrate.New(pg, logger.With().Str("component", "pref migrator").Logger(), ret))
	}

	s := agora.NewServer(&agora.ServerConfig{Addr: cfg.Addr}, logger, pg, maintainer, tracker, migrators)
	err = s.Prepare()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot prepare server")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		s.Stop()
		return nil
	})
	g.Go(func() error {
		return tracker.Run(ctx, time.Duration(cfg.TrackerMinutes)*time.Minute)
	})
	g.Go(func() error {
		return maintainer.Run(ctx, time.Duration(cfg.SweepMinutes)*time.Minute)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Ranker daemon exited")
	}

	logger.Info().Msg("Ranker daemon stopped")
}
