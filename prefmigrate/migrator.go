// Package prefmigrate retires sort-preference values. A retirement rewrites
// every persisted reference to the retired value (user rows and the system
// default) to a fixed replacement, so no row is ever left pointing at a
// value the application no longer understands.
package prefmigrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agorafeed/agora"
)

// Migrator applies a single declared retirement. It walks Active →
// Rewriting → Retired; a failure mid-rewrite parks it at Rewriting, from
// which ApplyRetirement can be retried as often as needed. The rewrite is
// total and idempotent: once no rows match the retired value, re-running it
// is a no-op.
type Migrator struct {
	store      agora.Store
	logger     zerolog.Logger
	retirement agora.Retirement

	mu     sync.Mutex
	status agora.MigrationStatus
}

func New(store agora.Store, logger zerolog.Logger, retirement agora.Retirement) *Migrator {
	return &Migrator{
		store:      store,
		logger:     logger,
		retirement: retirement,
		status:     agora.MigrationActive,
	}
}

// Retirement returns the mapping this migrator applies.
func (m *Migrator) Retirement() agora.Retirement {
	return m.retirement
}

// Status reports where the retirement stands.
func (m *Migrator) Status() agora.MigrationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ApplyRetirement rewrites every reference to the retired value. Safe to
// call repeatedly: a completed retirement returns immediately, an
// interrupted one picks up whatever rows are still left.
func (m *Migrator) ApplyRetirement(ctx context.Context) error {
	m.mu.Lock()
	if m.status == agora.MigrationRetired {
		m.mu.Unlock()
		return nil
	}
	m.status = agora.MigrationRewriting
	m.mu.Unlock()

	// The default goes first so nothing hands out the retired value to new
	// users while user rows are being rewritten.
	def, err := m.store.DefaultPreference(ctx)
	if err != nil {
		return m.partial(err)
	}
	if def == m.retirement.Retired {
		if err := m.store.SetDefaultPreference(ctx, m.retirement.Replacement); err != nil {
			return m.partial(err)
		}
	}

	n, err := m.store.RewritePreferences(ctx, m.retirement.Retired, m.retirement.Replacement)
	if err != nil {
		return m.partial(err)
	}

	// Re-scan rather than trusting the rewrite's row count; resuming after
	// a partial failure must see what is actually left.
	remaining, err := m.store.CountPreferences(ctx, m.retirement.Retired)
	if err != nil {
		return m.partial(err)
	}
	if remaining != 0 {
		return m.partial(fmt.Errorf("%d rows still reference %q", remaining, m.retirement.Retired))
	}

	m.mu.Lock()
	m.status = agora.MigrationRetired
	m.mu.Unlock()

	m.logger.Info().
		Str("retired", string(m.retirement.Retired)).
		Str("replacement", string(m.retirement.Replacement)).
		Int64("rows", n).
		Msg("Retirement applied")

	return nil
}

func (m *Migrator) partial(err error) error {
	return agora.PartialRewrite(m.retirement.Retired, err)
}
