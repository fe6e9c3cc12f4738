package agora

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// RankMaintainer is the slice of the rank maintainer the admin surface
// needs to relay ingestion events.
type RankMaintainer interface {
	OnScoreChange(ctx context.Context, itemID string) error
	OnGroupActivityChange(ctx context.Context, groupID string) error
}

// ActivityRefresher recomputes a single group's monthly interaction volume.
type ActivityRefresher interface {
	RefreshGroup(ctx context.Context, groupID string) error
}

// PreferenceMigrator applies one declared sort-preference retirement.
type PreferenceMigrator interface {
	Retirement() Retirement
	Status() MigrationStatus
	ApplyRetirement(ctx context.Context) error
}

type ServerConfig struct {
	Addr string
}

// Server is the admin surface of the ranking kernel: the ingestion pipeline
// posts score-change and interaction events to it, and operators declare
// and inspect preference retirements through it. It serves no feeds; the
// query layer reads the rank column straight from the database.
type Server struct {
	Logger          zerolog.Logger
	config          *ServerConfig
	store           Store
	router          *httprouter.Router
	maintainer      RankMaintainer
	refresher       ActivityRefresher
	migrators       map[SortPreference]PreferenceMigrator
	done            chan struct{}
	idleConnsClosed chan struct{}
}

func NewServer(config *ServerConfig, logger zerolog.Logger, store Store, maintainer RankMaintainer, refresher ActivityRefresher, migrators []PreferenceMigrator) *Server {
	byValue := map[SortPreference]PreferenceMigrator{}
	for _, m := range migrators {
		byValue[m.Retirement().Retired] = m
	}

	return &Server{
		config:          config,
		store:           store,
		maintainer:      maintainer,
		refresher:       refresher,
		migrators:       byValue,
		router:          httprouter.New(),
		Logger:          logger,
		done:            make(chan struct{}),
		idleConnsClosed: make(chan struct{}),
	}
}

func (s *Server) Prepare() error {
	// database
	err := s.store.Connect()
	if err != nil {
		return err
	}

	// routes
	withMiddlewares(func(wrap middleware) {
		s.router.GET("/health", wrap(s.HandleHealth()))
		s.router.POST("/events/score-change", wrap(s.HandleScoreChange()))
		s.router.POST("/events/interaction", wrap(s.HandleInteraction()))
		s.router.GET("/retirements/:value", wrap(s.HandleRetirementStatus()))
		s.router.POST("/retirements/:value/apply", wrap(s.HandleRetirementApply()))
	}, s.logRequestMiddleware())

	return nil
}

func (s *Server) Start() error {
	httpServer := http.Server{Addr: s.config.Addr, Handler: s}

	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Cannot listen")
		}
	}()

	<-s.done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}
	close(s.idleConnsClosed)

	return nil
}

func (s *Server) Stop() {
	close(s.done)
	<-s.idleConnsClosed
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(res, req)
}
