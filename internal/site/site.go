// Package site owns the admin state: the three ordered collections and the settings.
// Every mutation goes through Site, which normalizes and validates the input,
// persists the result and hands a snapshot to the remote syncer.
package site

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/backup"
	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/imaging"
	"github.com/lamaindor/salon-cms/internal/ordered"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
)

// Backend is the read and upload side of the hosted backend.
type Backend interface {
	Configured() bool
	Hydrate(ctx context.Context) (*remote.Aggregate, remote.Result)
	UploadImage(ctx context.Context, secret, dataURL string) (string, remote.Result)
}

// Notifier receives an event after every committed change.
type Notifier interface {
	Notify(ev remote.Event)
	PushNow(ev remote.Event) remote.Result
	Status() remote.Result
}

// Site is the coordinator of the admin state. All methods are safe for concurrent use,
// mutations are serialized and each one is persisted before the next starts.
type Site struct {
	mu sync.Mutex

	services ordered.Services
	gallery  ordered.Gallery
	reviews  ordered.Reviews
	settings entity.Settings

	store   *persist.Adapter
	backend Backend
	syncer  Notifier
	images  *imaging.Pipeline

	secret string
}

// New returns an empty site. backend and syncer may be nil when no remote is used.
func New(store *persist.Adapter, backend Backend, syncer Notifier, images *imaging.Pipeline) *Site {
	if images == nil {
		images = imaging.New(0, 0, 0)
	}

	return &Site{
		store:    store,
		backend:  backend,
		syncer:   syncer,
		images:   images,
		settings: entity.DefaultSettings(),
	}
}

// authSession is what the auth_session slot records. The secret itself is never stored.
type authSession struct {
	Authenticated bool   `json:"authenticated"`
	Since         string `json:"since"`
}

// Boot hydrates the local store from the backend when asked to, then loads it.
// The backend wins at boot, local edits win afterwards.
func (s *Site) Boot(ctx context.Context, hydrate bool) {
	if hydrate && s.backend != nil && s.backend.Configured() {
		agg, res := s.backend.Hydrate(ctx)

		switch {
		case !res.OK():
			log.Warn().Str("status", string(res.Status)).Str("message", res.Message).Msg("hydrate failed, using local state")
		case agg == nil:
			log.Info().Msg("backend holds no data, using local state")
		default:
			s.overwriteLocal(agg)
		}
	}

	s.Load()
}

func (s *Site) overwriteLocal(agg *remote.Aggregate) {
	gallery := ordered.New(agg.Gallery)
	kept := s.localOnlyGallery(gallery)

	writes := map[string]any{
		persist.SlotServices: ordered.New(agg.Services).List(),
		persist.SlotGallery:  gallery.List(),
		persist.SlotReviews:  ordered.New(agg.Reviews).List(),
	}

	if agg.Settings != nil {
		writes[persist.SlotSettings] = agg.Settings
	}

	if err := s.store.SaveAll(writes); err != nil {
		log.Error().Err(err).Msg("failed to store hydrated data, using local state")

		return
	}

	log.Info().
		Int("services", len(agg.Services)).
		Int("gallery", len(agg.Gallery)).
		Int("local_gallery", kept).
		Int("reviews", len(agg.Reviews)).
		Msg("local state hydrated from backend")
}

// localOnlyGallery appends the locally stored gallery items the backend can not hold,
// images kept as data URLs, after the hydrated ones. It returns how many were kept.
func (s *Site) localOnlyGallery(gallery *ordered.Gallery) int {
	var raw []any
	if !s.store.Load(persist.SlotGallery, &raw) {
		return 0
	}

	kept := 0

	for _, item := range normalizeAll(raw, entity.NormalizeGalleryItem) {
		if item.ImageURL != "" || item.DataURL == "" {
			continue
		}

		if gallery.Insert(item) {
			kept++
		}
	}

	return kept
}

// Load replaces the in-memory state with the persisted one. Missing or corrupt
// slots load as empty collections and default settings.
func (s *Site) Load() {
	var (
		rawServices, rawGallery, rawReviews []any
		rawSettings                         map[string]any
	)

	s.store.Load(persist.SlotServices, &rawServices)
	s.store.Load(persist.SlotGallery, &rawGallery)
	s.store.Load(persist.SlotReviews, &rawReviews)
	s.store.Load(persist.SlotSettings, &rawSettings)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.services.Replace(normalizeAll(rawServices, entity.NormalizeService))
	s.gallery.Replace(normalizeAll(rawGallery, entity.NormalizeGalleryItem))
	s.reviews.Replace(normalizeAll(rawReviews, entity.NormalizeReview))
	s.settings = entity.MergeSettings(rawSettings)
}

func normalizeAll[T any](raw []any, normalize func(map[string]any, int) T) []T {
	out := make([]T, 0, len(raw))

	for i, el := range raw {
		if m, ok := el.(map[string]any); ok {
			out = append(out, normalize(m, i))
		}
	}

	return out
}

// SetSecret keeps the admin secret for remote writes until ClearSecret.
func (s *Site) SetSecret(secret string) {
	s.mu.Lock()
	s.secret = secret
	s.mu.Unlock()

	flag := authSession{Authenticated: true, Since: entity.Timestamp(time.Now())}
	if err := s.store.Save(persist.SlotAuthSession, flag); err != nil {
		log.Warn().Err(err).Msg("failed to store session flag")
	}
}

// ClearSecret forgets the admin secret.
func (s *Site) ClearSecret() {
	s.mu.Lock()
	s.secret = ""
	s.mu.Unlock()

	if err := s.store.Remove(persist.SlotAuthSession); err != nil {
		log.Warn().Err(err).Msg("failed to remove session flag")
	}
}

// RemoteConfigured reports whether a hosted backend is set up.
func (s *Site) RemoteConfigured() bool {
	return s.backend != nil && s.backend.Configured()
}

// HasSecret reports whether an admin secret is held.
func (s *Site) HasSecret() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.secret != ""
}

// Settings returns the current settings.
func (s *Site) Settings() entity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings
}

// SaveSettings applies patch over the current settings. Sections or fields absent
// from patch are kept, empty values fall back to the defaults.
func (s *Site) SaveSettings(patch map[string]any) (entity.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := entity.OverlaySettings(s.settings, patch)
	if err := entity.Validate(&next); err != nil {
		return s.settings, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := s.store.Save(persist.SlotSettings, next); err != nil {
		return s.settings, err
	}

	s.settings = next
	s.notify(remote.ScopeState)

	return next, nil
}

// State returns a copy of the whole state.
func (s *Site) State() backup.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state()
}

func (s *Site) state() backup.State {
	return backup.State{
		Settings: s.settings,
		Services: s.services.List(),
		Gallery:  s.gallery.List(),
		Reviews:  s.reviews.List(),
	}
}

// Export returns the export document of the current state.
func (s *Site) Export(at time.Time) backup.Document {
	return backup.Export(s.State(), at)
}

// Import restores a backup document. See ImportState.
func (s *Site) Import(data []byte) (backup.State, error) {
	st, err := backup.Import(data)
	if err != nil {
		return backup.State{}, err
	}

	return st, s.ImportState(st)
}

// ImportState replaces the whole state, persists it and pushes it. The slots are written
// together, if that fails nothing is stored and the previous state is restored in memory.
func (s *Site) ImportState(st backup.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state()

	s.apply(st)

	if err := s.persistAll(); err != nil {
		s.apply(prev)

		return err
	}

	s.notify(remote.ScopeAll)

	return nil
}

func (s *Site) apply(st backup.State) {
	s.services.Replace(st.Services)
	s.gallery.Replace(st.Gallery)
	s.reviews.Replace(st.Reviews)
	s.settings = st.Settings
}

func (s *Site) persistAll() error {
	return s.store.SaveAll(map[string]any{
		persist.SlotServices: s.services.List(),
		persist.SlotGallery:  s.gallery.List(),
		persist.SlotReviews:  s.reviews.List(),
		persist.SlotSettings: s.settings,
	})
}

// Usage returns the local storage usage.
func (s *Site) Usage() (persist.Usage, error) {
	return s.store.Usage()
}

// SyncStatus returns the result of the most recent remote push.
func (s *Site) SyncStatus() remote.Result {
	if s.syncer == nil {
		return remote.Result{Status: remote.StatusNotConfigured}
	}

	return s.syncer.Status()
}

// SyncNow pushes the whole state and waits for the result.
func (s *Site) SyncNow() remote.Result {
	if s.syncer == nil {
		return remote.Result{Status: remote.StatusNotConfigured}
	}

	s.mu.Lock()
	ev := s.event(remote.ScopeAll)
	s.mu.Unlock()

	return s.syncer.PushNow(ev)
}

// notify hands a snapshot to the syncer. Callers hold s.mu.
func (s *Site) notify(scope remote.Scope) {
	if s.syncer == nil {
		return
	}

	s.syncer.Notify(s.event(scope))
}

func (s *Site) event(scope remote.Scope) remote.Event {
	settings := s.settings

	return remote.Event{
		Secret: s.secret,
		Scope:  scope,
		Snapshot: remote.Aggregate{
			Settings: &settings,
			Services: s.services.List(),
			Gallery:  s.gallery.List(),
			Reviews:  s.reviews.List(),
		},
	}
}

// commit runs mutate on store and persists the result into slot. On a failed write
// the store is rolled back. It reports whether mutate changed anything.
func commit[T any, P ordered.Ptr[T]](s *Site, store *ordered.Store[T, P], slot string, mutate func() bool) (bool, error) {
	snapshot := store.Snapshot()

	if !mutate() {
		return false, nil
	}

	if err := s.store.Save(slot, store.List()); err != nil {
		store.Restore(snapshot)

		if errors.Is(err, persist.ErrCapacityExceeded) {
			log.Warn().Err(err).Str("slot", slot).Msg("change rolled back")
		}

		return true, err
	}

	return true, nil
}
