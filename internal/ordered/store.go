// Package ordered keeps a collection of records in display order with a dense
// order index (0, 10, 20, ...).
package ordered

import (
	"cmp"
	"slices"

	"github.com/lamaindor/salon-cms/internal/entity"
)

// Ptr is satisfied by *T when T is an entity record.
type Ptr[T any] interface {
	*T
	entity.Entity
}

// Store is an in-memory ordered collection keyed by id.
// The backing slice is always in display order. Store is not safe for
// concurrent use, the owner serializes access.
type Store[T any, P Ptr[T]] struct {
	items []T
}

// Services, Gallery and Reviews are the three managed collections.
type (
	Services = Store[entity.Service, *entity.Service]
	Gallery  = Store[entity.GalleryItem, *entity.GalleryItem]
	Reviews  = Store[entity.Review, *entity.Review]
)

// New returns a store loaded with items, see Replace.
func New[T any, P Ptr[T]](items []T) *Store[T, P] {
	s := &Store[T, P]{}
	s.Replace(items)

	return s
}

func base[T any, P Ptr[T]](v *T) *entity.Meta {
	return P(v).Base()
}

// Len returns the number of records.
func (s *Store[T, P]) Len() int { return len(s.items) }

// List returns a copy of the records in display order.
func (s *Store[T, P]) List() []T {
	return slices.Clone(s.items)
}

// IDs returns the record ids in display order.
func (s *Store[T, P]) IDs() []string {
	ids := make([]string, len(s.items))
	for i := range s.items {
		ids[i] = base[T, P](&s.items[i]).ID
	}

	return ids
}

// Get returns the record with id.
func (s *Store[T, P]) Get(id string) (T, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}

	var zero T

	return zero, false
}

// Insert appends v after the last record and reindexes.
// A record with an id already present replaces nothing and is rejected.
func (s *Store[T, P]) Insert(v T) bool {
	if s.index(base[T, P](&v).ID) >= 0 {
		return false
	}

	base[T, P](&v).OrderIndex = len(s.items) * entity.OrderStep
	s.items = append(s.items, v)
	s.Reindex()

	return true
}

// Update applies patch to the record with id and refreshes its updated_at.
// Id, created_at and order index are kept. Unknown ids are a no-op.
func (s *Store[T, P]) Update(id string, patch func(P)) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	item := &s.items[i]
	keep := *base[T, P](item)

	patch(P(item))

	m := base[T, P](item)
	m.ID = keep.ID
	m.CreatedAt = keep.CreatedAt
	m.OrderIndex = keep.OrderIndex
	m.UpdatedAt = entity.Timestamp(entity.Now())

	return true
}

// Delete removes the record with id. Unknown ids are a no-op.
func (s *Store[T, P]) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	s.items = slices.Delete(s.items, i, i+1)
	s.Reindex()

	return true
}

// Reorder moves movedID to the current position of targetID and reindexes.
// It reports false, leaving the store untouched, if either id is unknown or both are equal.
func (s *Store[T, P]) Reorder(movedID, targetID string) bool {
	from, to := s.index(movedID), s.index(targetID)
	if from < 0 || to < 0 || from == to {
		return false
	}

	moved := s.items[from]
	s.items = slices.Insert(slices.Delete(s.items, from, from+1), to, moved)
	s.Reindex()

	return true
}

// Reindex assigns 0, 10, 20, ... in display order.
func (s *Store[T, P]) Reindex() {
	for i := range s.items {
		base[T, P](&s.items[i]).OrderIndex = i * entity.OrderStep
	}
}

// Replace loads items, orders them by order index (ties keep their input order)
// and reindexes. Later duplicates of an id are dropped.
func (s *Store[T, P]) Replace(items []T) {
	seen := make(map[string]struct{}, len(items))
	s.items = make([]T, 0, len(items))

	for _, v := range items {
		id := base[T, P](&v).ID
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		s.items = append(s.items, v)
	}

	slices.SortStableFunc(s.items, func(a, b T) int {
		return cmp.Compare(base[T, P](&a).OrderIndex, base[T, P](&b).OrderIndex)
	})

	s.Reindex()
}

// Clear removes every record.
func (s *Store[T, P]) Clear() {
	s.items = nil
}

// Snapshot returns a copy of the current state for Restore.
func (s *Store[T, P]) Snapshot() []T {
	return slices.Clone(s.items)
}

// Restore resets the store to a state taken with Snapshot.
func (s *Store[T, P]) Restore(snapshot []T) {
	s.items = slices.Clone(snapshot)
}

func (s *Store[T, P]) index(id string) int {
	if id == "" {
		return -1
	}

	return slices.IndexFunc(s.items, func(v T) bool {
		return base[T, P](&v).ID == id
	})
}
