package site

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/imaging"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
)

// Upload is the outcome for one file of a gallery upload, in input order.
type Upload struct {
	Name string              `json:"name"`
	Item *entity.GalleryItem `json:"item,omitempty"`
	Err  error               `json:"-"`
}

// ListGallery returns the gallery in display order.
func (s *Site) ListGallery() []entity.GalleryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gallery.List()
}

// AddGalleryImages ingests files and appends one gallery item per image. Each file
// succeeds or fails on its own: a decode error or a full local store only drops that file.
// With a configured backend and an admin secret the image goes to object storage,
// otherwise it is embedded as a data URL.
func (s *Site) AddGalleryImages(ctx context.Context, files []imaging.File) []Upload {
	batch := s.images.IngestBatch(ctx, files)
	uploads := make([]Upload, len(batch))

	for i, br := range batch {
		uploads[i].Name = br.Name

		if br.Err != nil {
			uploads[i].Err = br.Err

			continue
		}

		raw := map[string]any{"dataUrl": br.Result.DataURL}
		if url := s.upload(ctx, br.Result.DataURL); url != "" {
			raw = map[string]any{"image_url": url}
		}

		item, err := s.AddGalleryItem(raw)
		if err != nil {
			uploads[i].Err = err

			continue
		}

		uploads[i].Item = &item
	}

	return uploads
}

func (s *Site) upload(ctx context.Context, dataURL string) string {
	if s.backend == nil || !s.backend.Configured() {
		return ""
	}

	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	if secret == "" {
		return ""
	}

	url, res := s.backend.UploadImage(ctx, secret, dataURL)
	if !res.OK() {
		log.Warn().Str("status", string(res.Status)).Str("message", res.Message).Msg("image upload failed, embedding it")

		return ""
	}

	return url
}

// AddGalleryItem appends an item holding an image data URL or image URL.
// When the local store is full the item is not kept.
func (s *Site) AddGalleryItem(raw map[string]any) (entity.GalleryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := entity.NormalizeGalleryItem(fresh(raw), s.gallery.Len())
	if item.Source() == "" {
		return entity.GalleryItem{}, fmt.Errorf("%w: image is required", ErrValidation)
	}

	if err := entity.Validate(&item); err != nil {
		return entity.GalleryItem{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if _, err := commit(s, &s.gallery, persist.SlotGallery, func() bool { return s.gallery.Insert(item) }); err != nil {
		return entity.GalleryItem{}, err
	}

	s.notify(remote.ScopeState)

	item, _ = s.gallery.Get(item.ID)

	return item, nil
}

// UpdateGalleryAlt changes the alt text of one item.
func (s *Site) UpdateGalleryAlt(id, alt string) (entity.GalleryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.gallery.Get(id)
	if !ok {
		return entity.GalleryItem{}, ErrNotFound
	}

	next := entity.NormalizeGalleryItem(merge(current, map[string]any{"alt": alt}), 0)

	_, err := commit(s, &s.gallery, persist.SlotGallery, func() bool {
		return s.gallery.Update(id, func(g *entity.GalleryItem) { *g = next })
	})
	if err != nil {
		return entity.GalleryItem{}, err
	}

	s.notify(remote.ScopeState)

	updated, _ := s.gallery.Get(id)

	return updated, nil
}

// DeleteGalleryItem removes one item.
func (s *Site) DeleteGalleryItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.gallery, persist.SlotGallery, func() bool { return s.gallery.Delete(id) })
	if err != nil {
		return err
	}

	if !changed {
		return ErrNotFound
	}

	s.notify(remote.ScopeState)

	return nil
}

// ClearGallery removes every item.
func (s *Site) ClearGallery() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.gallery, persist.SlotGallery, func() bool {
		had := s.gallery.Len() > 0
		s.gallery.Clear()

		return had
	})
	if err != nil || !changed {
		return err
	}

	s.notify(remote.ScopeState)

	return nil
}

// ReorderGallery moves movedID onto the position of targetID. It reports false for a no-op.
func (s *Site) ReorderGallery(movedID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := commit(s, &s.gallery, persist.SlotGallery, func() bool {
		return s.gallery.Reorder(movedID, targetID)
	})
	if err != nil || !changed {
		return false, err
	}

	s.notify(remote.ScopeState)

	return true, nil
}
