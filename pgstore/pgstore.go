package pgstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/agorafeed/agora"
)

// A PGStore is responsible of interacting with the storage layer using a
// Postgresql database.
type PGStore struct {
	dbString string
	db       *sqlx.DB
}

// New returns a PGStore configured for a given address string, using the
// "user=postgres dbname=agora ..." format.
func New(addr string) *PGStore {
	return &PGStore{
		dbString: addr,
	}
}

// Connect establish a connection with the database using the address given
// at initialization.
func (s *PGStore) Connect() error {
	db, err := sqlx.Connect("postgres", s.dbString)
	if err != nil {
		return err
	}

	s.db = db

	return nil
}

// DB returns the existing connection, making it suitable to perform requests
// not already supported by the store interface. If called while not
// connected, it will return nil.
func (s *PGStore) DB() *sqlx.DB {
	return s.db
}

func (s *PGStore) FindItem(ctx context.Context, id string) (*agora.Item, error) {
	item := agora.Item{}
	err := s.db.GetContext(ctx, &item, "SELECT * FROM items WHERE id=$1", id)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// https://www.citusdata.com/blog/2016/03/30/five-ways-to-paginate/
func (s *PGStore) ListItemsAfter(ctx context.Context, afterID string, limit int) ([]*agora.Item, error) {
	items := []*agora.Item{}
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM items WHERE id > $1 ORDER BY id LIMIT $2", afterID, limit)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (s *PGStore) ListItemsByGroup(ctx context.Context, groupID string) ([]*agora.Item, error) {
	items := []*agora.Item{}
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM items WHERE group_id=$1 ORDER BY id", groupID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateItemRank persists a recomputed rank. The guard on ranked_at makes
// the write a compare-and-set: a recompute carrying an older computation
// time matches no row and is dropped.
func (s *PGStore) UpdateItemRank(ctx context.Context, id string, rank float64, computedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE items SET rank=$2, ranked_at=$3 WHERE id=$1 AND (ranked_at IS NULL OR ranked_at < $3)",
		id, rank, computedAt,
	)

	return err
}

func (s *PGStore) FindGroup(ctx context.Context, id string) (*agora.Group, error) {
	group := agora.Group{}
	err := s.db.GetContext(ctx, &group, "SELECT * FROM groups WHERE id=$1", id)
	if err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *PGStore) ListGroupIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, "SELECT id FROM groups ORDER BY id")
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (s *PGStore) SumGroupInteractions(ctx context.Context, groupID string, since time.Time) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n,
		"SELECT COALESCE(SUM(upvotes + downvotes + comments_count), 0) FROM items WHERE group_id=$1 AND published >= $2",
		groupID, since,
	)
	if err != nil {
		return 0, err
	}

	return n, nil
}

func (s *PGStore) SetGroupInteractionsMonth(ctx context.Context, groupID string, n int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE groups SET interactions_month=$2 WHERE id=$1", groupID, n)

	return err
}

func (s *PGStore) CountPreferences(ctx context.Context, v agora.SortPreference) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users WHERE sort_preference=$1", v)
	if err != nil {
		return 0, err
	}

	return n, nil
}

func (s *PGStore) RewritePreferences(ctx context.Context, from, to agora.SortPreference) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET sort_preference=$2 WHERE sort_preference=$1", from, to)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (s *PGStore) DefaultPreference(ctx context.Context) (agora.SortPreference, error) {
	var v agora.SortPreference
	err := s.db.GetContext(ctx, &v, "SELECT default_sort_preference FROM settings LIMIT 1")
	if err != nil {
		return "", err
	}

	return v, nil
}

func (s *PGStore) SetDefaultPreference(ctx context.Context, v agora.SortPreference) error {
	_, err := s.db.ExecContext(ctx, "UPDATE settings SET default_sort_preference=$1", v)

	return err
}
