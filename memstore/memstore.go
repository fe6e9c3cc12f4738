// Package memstore provides an in-memory implementation of agora.Store,
// used by unit tests and local seeding. Semantics mirror pgstore, including
// the compare-and-set rank write.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agorafeed/agora"
)

type MemStore struct {
	mu          sync.Mutex
	items       map[string]*agora.Item
	groups      map[string]*agora.Group
	users       map[string]*agora.User
	defaultPref agora.SortPreference

	// Error injection knobs for tests simulating an unavailable storage
	// layer. When set, the matching reads fail with the given error.
	SumErr       error
	RewriteErr   error
	FindGroupErr map[string]error
}

func New() *MemStore {
	return &MemStore{
		items:        map[string]*agora.Item{},
		groups:       map[string]*agora.Group{},
		users:        map[string]*agora.User{},
		defaultPref:  agora.SortBalanced,
		FindGroupErr: map[string]error{},
	}
}

func (s *MemStore) Connect() error { return nil }

// PutItem inserts or replaces an item. Seeding helper, not part of the
// Store contract.
func (s *MemStore) PutItem(item *agora.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.ID] = &cp
}

// PutGroup inserts or replaces a group.
func (s *MemStore) PutGroup(group *agora.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *group
	s.groups[group.ID] = &cp
}

// PutUser inserts or replaces a user.
func (s *MemStore) PutUser(user *agora.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
}

func (s *MemStore) FindItem(ctx context.Context, id string) (*agora.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("no such item: %q", id)
	}
	cp := *item
	return &cp, nil
}

func (s *MemStore) ListItemsAfter(ctx context.Context, afterID string, limit int) ([]*agora.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	items := make([]*agora.Item, 0, len(ids))
	for _, id := range ids {
		cp := *s.items[id]
		items = append(items, &cp)
	}
	return items, nil
}

func (s *MemStore) ListItemsByGroup(ctx context.Context, groupID string) ([]*agora.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.items))
	for id, item := range s.items {
		if item.GroupID == groupID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	items := make([]*agora.Item, 0, len(ids))
	for _, id := range ids {
		cp := *s.items[id]
		items = append(items, &cp)
	}
	return items, nil
}

func (s *MemStore) UpdateItemRank(ctx context.Context, id string, rank float64, computedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("no such item: %q", id)
	}
	// Stale recomputes lose; matching pgstore's conditional UPDATE.
	if !computedAt.After(item.RankedAt) {
		return nil
	}
	item.Rank = rank
	item.RankedAt = computedAt
	return nil
}

func (s *MemStore) FindGroup(ctx context.Context, id string) (*agora.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FindGroupErr[id]; err != nil {
		return nil, err
	}
	group, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("no such group: %q", id)
	}
	cp := *group
	return &cp, nil
}

func (s *MemStore) ListGroupIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemStore) SumGroupInteractions(ctx context.Context, groupID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SumErr != nil {
		return 0, s.SumErr
	}

	var n int64
	for _, item := range s.items {
		if item.GroupID == groupID && !item.Published.Before(since) {
			n += item.Interactions()
		}
	}
	return n, nil
}

func (s *MemStore) SetGroupInteractionsMonth(ctx context.Context, groupID string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("no such group: %q", groupID)
	}
	group.InteractionsMonth = n
	return nil
}

func (s *MemStore) CountPreferences(ctx context.Context, v agora.SortPreference) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, user := range s.users {
		if user.SortPreference == v {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) RewritePreferences(ctx context.Context, from, to agora.SortPreference) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RewriteErr != nil {
		return 0, s.RewriteErr
	}

	var n int64
	for _, user := range s.users {
		if user.SortPreference == from {
			user.SortPreference = to
			n++
		}
	}
	return n, nil
}

func (s *MemStore) DefaultPreference(ctx context.Context) (agora.SortPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultPref, nil
}

func (s *MemStore) SetDefaultPreference(ctx context.Context, v agora.SortPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultPref = v
	return nil
}

// FindUser returns a copy of a user. Test helper.
func (s *MemStore) FindUser(id string) (*agora.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("no such user: %q", id)
	}
	cp := *user
	return &cp, nil
}
