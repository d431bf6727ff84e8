package site

import (
	"fmt"

	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
)

// immutable fields a patch can not change
var immutableKeys = []string{"id", "created_at", "updated_at", "order_index"} //nolint:gochecknoglobals

// ListServices returns the services in display order.
func (s *Site) ListServices() []entity.Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.services.List()
}

// SearchServices returns the services matching query, ignoring case and accents.
func (s *Site) SearchServices(query string) []entity.Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.services.Search(query)
}

// GetService returns one service.
func (s *Site) GetService(id string) (entity.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services.Get(id)
	if !ok {
		return svc, ErrNotFound
	}

	return svc, nil
}

// AddService normalizes raw into a new service placed last.
func (s *Site) AddService(raw map[string]any) (entity.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc := entity.NormalizeService(fresh(raw), s.services.Len())
	if err := entity.Validate(&svc); err != nil {
		return entity.Service{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if _, err := commit(s, &s.services, persist.SlotServices, func() bool { return s.services.Insert(svc) }); err != nil {
		return entity.Service{}, err
	}

	s.notify(remote.ScopeState)

	svc, _ = s.services.Get(svc.ID)

	return svc, nil
}

// UpdateService merges patch into the service with id.
func (s *Site) UpdateService(id string, patch map[string]any) (entity.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.services.Get(id)
	if !ok {
		return entity.Service{}, ErrNotFound
	}

	next := entity.NormalizeService(merge(current, patch), 0)
	if err := entity.Validate(&next); err != nil {
		return entity.Service{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	_, err := commit(s, &s.services, persist.SlotServices, func() bool {
		return s.services.Update(id, func(p *entity.Service) { *p = next })
	})
	if err != nil {
		return entity.Service{}, err
	}

	s.notify(remote.ScopeState)

	updated, _ := s.services.Get(id)

	return updated, nil
}

// DeleteService removes the service with id.
func (s *Site) DeleteService(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.services, persist.SlotServices, func() bool { return s.services.Delete(id) })
	if err != nil {
		return err
	}

	if !changed {
		return ErrNotFound
	}

	s.notify(remote.ScopeState)

	return nil
}

// ReorderServices moves movedID onto the position of targetID. It reports false for a no-op.
func (s *Site) ReorderServices(movedID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.services, persist.SlotServices, func() bool {
		return s.services.Reorder(movedID, targetID)
	})
	if err != nil || !changed {
		return false, err
	}

	s.notify(remote.ScopeState)

	return true, nil
}

// fresh drops identity fields so a new record gets its own.
func fresh(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	for _, k := range immutableKeys {
		delete(out, k)
	}

	return out
}

// merge overlays patch on the raw form of current, identity fields stay untouched.
func merge(current any, patch map[string]any) map[string]any {
	out := entity.ToRaw(current)

	for k, v := range fresh(patch) {
		out[k] = v
	}

	return out
}
