package site

import (
	"fmt"

	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
)

// ListReviews returns the reviews in display order.
func (s *Site) ListReviews() []entity.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reviews.List()
}

// AddReview normalizes raw into a new review placed last.
func (s *Site) AddReview(raw map[string]any) (entity.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := entity.NormalizeReview(fresh(raw), s.reviews.Len())
	if err := entity.Validate(&r); err != nil {
		return entity.Review{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if _, err := commit(s, &s.reviews, persist.SlotReviews, func() bool { return s.reviews.Insert(r) }); err != nil {
		return entity.Review{}, err
	}

	s.notify(remote.ScopeReviews)

	r, _ = s.reviews.Get(r.ID)

	return r, nil
}

// UpdateReview merges patch into the review with id.
func (s *Site) UpdateReview(id string, patch map[string]any) (entity.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reviews.Get(id)
	if !ok {
		return entity.Review{}, ErrNotFound
	}

	next := entity.NormalizeReview(merge(current, patch), 0)
	if err := entity.Validate(&next); err != nil {
		return entity.Review{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	_, err := commit(s, &s.reviews, persist.SlotReviews, func() bool {
		return s.reviews.Update(id, func(r *entity.Review) { *r = next })
	})
	if err != nil {
		return entity.Review{}, err
	}

	s.notify(remote.ScopeReviews)

	updated, _ := s.reviews.Get(id)

	return updated, nil
}

// DeleteReview removes the review with id.
func (s *Site) DeleteReview(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.reviews, persist.SlotReviews, func() bool { return s.reviews.Delete(id) })
	if err != nil {
		return err
	}

	if !changed {
		return ErrNotFound
	}

	s.notify(remote.ScopeReviews)

	return nil
}

// ReorderReviews moves movedID onto the position of targetID. It reports false for a no-op.
func (s *Site) ReorderReviews(movedID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.reviews, persist.SlotReviews, func() bool {
		return s.reviews.Reorder(movedID, targetID)
	})
	if err != nil || !changed {
		return false, err
	}

	s.notify(remote.ScopeReviews)

	return true, nil
}
