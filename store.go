package agora

import (
	"context"
	"time"
)

// Store is the contract this kernel has with the storage layer. All writes
// are assumed atomic per row; nothing here requires cross-row transactions.
type Store interface {
	Connect() error

	FindItem(ctx context.Context, id string) (*Item, error)
	// ListItemsAfter returns up to limit items whose ID sorts after afterID,
	// in ID order. Passing an empty afterID starts the scan; an empty result
	// ends it.
	ListItemsAfter(ctx context.Context, afterID string, limit int) ([]*Item, error)
	ListItemsByGroup(ctx context.Context, groupID string) ([]*Item, error)
	// UpdateItemRank persists a freshly computed rank. The write only lands
	// if computedAt is newer than the item's stored ranked_at, so a slow
	// recompute racing a fresher one loses silently.
	UpdateItemRank(ctx context.Context, id string, rank float64, computedAt time.Time) error

	FindGroup(ctx context.Context, id string) (*Group, error)
	ListGroupIDs(ctx context.Context) ([]string, error)
	// SumGroupInteractions totals upvotes+downvotes+comments over the
	// group's items published at or after since.
	SumGroupInteractions(ctx context.Context, groupID string, since time.Time) (int64, error)
	SetGroupInteractionsMonth(ctx context.Context, groupID string, n int64) error

	CountPreferences(ctx context.Context, v SortPreference) (int64, error)
	// RewritePreferences sets every user row holding from to to, returning
	// the number of rows touched.
	RewritePreferences(ctx context.Context, from, to SortPreference) (int64, error)
	DefaultPreference(ctx context.Context) (SortPreference, error)
	SetDefaultPreference(ctx context.Context, v SortPreference) error
}
