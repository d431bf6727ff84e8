package site_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamaindor/salon-cms/internal/db"
	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/imaging"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
	"github.com/lamaindor/salon-cms/internal/site"
)

type fakeBackend struct {
	configured bool
	agg        *remote.Aggregate
	uploadURL  string
	uploads    int
}

func (f *fakeBackend) Configured() bool { return f.configured }

func (f *fakeBackend) Hydrate(context.Context) (*remote.Aggregate, remote.Result) {
	return f.agg, remote.Result{Status: remote.StatusOK}
}

func (f *fakeBackend) UploadImage(context.Context, string, string) (string, remote.Result) {
	f.uploads++
	if f.uploadURL == "" {
		return "", remote.Result{Status: remote.StatusError, Message: "boom"}
	}

	return f.uploadURL, remote.Result{Status: remote.StatusOK}
}

type fakePusher struct {
	mu     sync.Mutex
	states []remote.Aggregate
	status remote.Status
}

func (f *fakePusher) PushState(_ context.Context, secret string, agg remote.Aggregate) remote.Result {
	if secret == "" {
		return remote.Result{Status: remote.StatusUnauthenticated}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.states = append(f.states, agg)

	return remote.Result{Status: f.status}
}

func (f *fakePusher) PushReviews(context.Context, string, []entity.Review) remote.Result {
	return remote.Result{Status: f.status}
}

func newSite(t *testing.T, capacity int, backend site.Backend, syncer site.Notifier) (*site.Site, *persist.Adapter) {
	t.Helper()

	gdb, err := db.OpenLocal(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)

	store := persist.New(gdb, capacity)
	s := site.New(store, backend, syncer, imaging.New(64, 80, 2))
	s.Boot(context.Background(), false)

	return s, store
}

func TestServiceLifecycle(t *testing.T) {
	s, store := newSite(t, 1<<20, nil, nil)

	a, err := s.AddService(map[string]any{"title": "Pose gel", "price": "35,5", "id": "forced"})
	require.NoError(t, err)
	assert.NotEqual(t, "forced", a.ID)
	assert.InDelta(t, 35.5, a.Price, 0.001)
	assert.Equal(t, entity.DefaultCategory, a.Category)

	b, err := s.AddService(map[string]any{"title": "Manucure express", "category": "Manucure"})
	require.NoError(t, err)
	assert.Equal(t, 10, b.OrderIndex)

	_, err = s.AddService(map[string]any{"title": "  "})
	require.ErrorIs(t, err, site.ErrValidation)

	updated, err := s.UpdateService(a.ID, map[string]any{"price": 40, "id": "other"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.ID)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)
	assert.InDelta(t, 40.0, updated.Price, 0.001)
	assert.Equal(t, "Pose gel", updated.Title)

	_, err = s.UpdateService("missing", map[string]any{"price": 1})
	require.ErrorIs(t, err, site.ErrNotFound)

	moved, err := s.ReorderServices(b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, moved)

	list := s.ListServices()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, 0, list[0].OrderIndex)
	assert.Equal(t, 10, list[1].OrderIndex)

	moved, err = s.ReorderServices(b.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, moved)

	assert.Len(t, s.SearchServices("EXPRESS"), 1)
	assert.Len(t, s.SearchServices("manucure"), 2)

	require.NoError(t, s.DeleteService(a.ID))
	require.ErrorIs(t, s.DeleteService(a.ID), site.ErrNotFound)

	// a fresh site over the same store sees the persisted state
	reloaded := site.New(store, nil, nil, nil)
	reloaded.Load()
	require.Len(t, reloaded.ListServices(), 1)
	assert.Equal(t, b.ID, reloaded.ListServices()[0].ID)
}

func TestGalleryCapacityRollback(t *testing.T) {
	s, _ := newSite(t, 400, nil, nil)

	first, err := s.AddGalleryItem(map[string]any{"image_url": "https://cdn.example.com/a.jpg", "alt": "A"})
	require.NoError(t, err)

	big := "data:image/jpeg;base64," + string(bytes.Repeat([]byte("A"), 1000))
	_, err = s.AddGalleryItem(map[string]any{"dataUrl": big})
	require.ErrorIs(t, err, persist.ErrCapacityExceeded)

	list := s.ListGallery()
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	_, err = s.AddGalleryItem(map[string]any{"alt": "no image"})
	require.ErrorIs(t, err, site.ErrValidation)
}

func TestGalleryReorderAndClear(t *testing.T) {
	s, _ := newSite(t, 1<<20, nil, nil)

	a, err := s.AddGalleryItem(map[string]any{"image_url": "https://cdn.example.com/a.jpg", "alt": "A"})
	require.NoError(t, err)
	b, err := s.AddGalleryItem(map[string]any{"image_url": "https://cdn.example.com/b.jpg", "alt": "B"})
	require.NoError(t, err)

	moved, err := s.ReorderGallery(b.ID, a.ID)
	require.NoError(t, err)
	require.True(t, moved)

	list := s.ListGallery()
	assert.Equal(t, []string{"B", "A"}, []string{list[0].Alt, list[1].Alt})
	assert.Equal(t, []int{0, 10}, []int{list[0].OrderIndex, list[1].OrderIndex})

	updated, err := s.UpdateGalleryAlt(a.ID, "Nail art")
	require.NoError(t, err)
	assert.Equal(t, "Nail art", updated.Alt)
	assert.Equal(t, a.ImageURL, updated.ImageURL)

	require.NoError(t, s.DeleteGalleryItem(b.ID))
	require.NoError(t, s.ClearGallery())
	assert.Empty(t, s.ListGallery())
}

func pngFile(t *testing.T, name string) imaging.File {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for x := range 100 {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	data := buf.Bytes()

	return imaging.File{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}}
}

func TestAddGalleryImages(t *testing.T) {
	backend := &fakeBackend{configured: true}
	s, _ := newSite(t, 1<<20, backend, nil)

	junk := imaging.File{Name: "notes.txt", Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("hello world"))), nil
	}}

	uploads := s.AddGalleryImages(context.Background(), []imaging.File{pngFile(t, "a.png"), junk})
	require.Len(t, uploads, 2)

	require.NoError(t, uploads[0].Err)
	require.NotNil(t, uploads[0].Item)
	assert.Contains(t, uploads[0].Item.DataURL, "data:image/")
	assert.Zero(t, backend.uploads, "no secret, no upload")

	require.Error(t, uploads[1].Err)
	assert.Nil(t, uploads[1].Item)

	// with a secret the image goes to object storage, a failed upload falls back to the data URL
	s.SetSecret("pw")

	uploads = s.AddGalleryImages(context.Background(), []imaging.File{pngFile(t, "b.png")})
	require.NoError(t, uploads[0].Err)
	assert.Equal(t, 1, backend.uploads)
	assert.NotEmpty(t, uploads[0].Item.DataURL)

	backend.uploadURL = "https://cdn.example.com/public-images/uploads/1.webp"
	uploads = s.AddGalleryImages(context.Background(), []imaging.File{pngFile(t, "c.png")})
	require.NoError(t, uploads[0].Err)
	assert.Equal(t, backend.uploadURL, uploads[0].Item.ImageURL)
	assert.Empty(t, uploads[0].Item.DataURL)

	assert.Len(t, s.ListGallery(), 3)
}

func TestAddGalleryImagesRejectsOversizedRaster(t *testing.T) {
	gdb, err := db.OpenLocal(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)

	images := imaging.New(64, 80, 1)
	images.MaxPixels = 1000

	s := site.New(persist.New(gdb, 1<<20), nil, nil, images)
	s.Boot(context.Background(), false)

	uploads := s.AddGalleryImages(context.Background(), []imaging.File{pngFile(t, "huge.png")})
	require.Len(t, uploads, 1)
	require.ErrorIs(t, uploads[0].Err, imaging.ErrTooLarge)
	assert.Empty(t, s.ListGallery())
}

func TestReviews(t *testing.T) {
	s, _ := newSite(t, 1<<20, nil, nil)

	r, err := s.AddReview(map[string]any{"author": "Léa", "rating": "9", "text": "Parfait"})
	require.NoError(t, err)
	assert.Equal(t, "Léa", r.Name)
	assert.Equal(t, entity.MaxRating, r.Rating)

	_, err = s.AddReview(map[string]any{"name": "Zoé", "text": ""})
	require.ErrorIs(t, err, site.ErrValidation)

	r, err = s.UpdateReview(r.ID, map[string]any{"rating": 3})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Rating)

	require.NoError(t, s.DeleteReview(r.ID))
	assert.Empty(t, s.ListReviews())
}

func TestSaveSettings(t *testing.T) {
	s, _ := newSite(t, 1<<20, nil, nil)

	got, err := s.SaveSettings(map[string]any{"hero": map[string]any{"title": "Chez Manon"}})
	require.NoError(t, err)
	assert.Equal(t, "Chez Manon", got.Hero.Title)
	assert.Equal(t, entity.DefaultSettings().Hero.Subtitle, got.Hero.Subtitle)

	_, err = s.SaveSettings(map[string]any{"contact": map[string]any{"email": "not-an-email"}})
	require.ErrorIs(t, err, site.ErrValidation)
	assert.Equal(t, "Chez Manon", s.Settings().Hero.Title)

	got, err = s.SaveSettings(map[string]any{"contact": map[string]any{"instagram_url": ""}})
	require.NoError(t, err)
	assert.Empty(t, got.Contact.InstagramURL)

	s.Load()
	assert.Empty(t, s.Settings().Contact.InstagramURL)
	assert.Equal(t, entity.DefaultSettings().Contact.Phone, s.Settings().Contact.Phone)
}

func TestLocalSaveSurvivesUnconfiguredRemote(t *testing.T) {
	pusher := &fakePusher{status: remote.StatusNotConfigured}
	syncer := remote.NewSyncer(pusher, time.Second)
	s, _ := newSite(t, 1<<20, nil, syncer)

	s.SetSecret("pw")

	_, err := s.AddService(map[string]any{"title": "Pose gel"})
	require.NoError(t, err)

	syncer.Wait()
	assert.Equal(t, remote.StatusNotConfigured, s.SyncStatus().Status)
	assert.Len(t, s.ListServices(), 1)

	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	require.Len(t, pusher.states, 1)
	assert.Len(t, pusher.states[0].Services, 1)
}

func TestSyncNowWithoutSyncer(t *testing.T) {
	s, _ := newSite(t, 1<<20, nil, nil)

	assert.Equal(t, remote.StatusNotConfigured, s.SyncNow().Status)
	assert.Equal(t, remote.StatusNotConfigured, s.SyncStatus().Status)
}

func TestImportExport(t *testing.T) {
	s, _ := newSite(t, 1<<20, nil, nil)

	_, err := s.AddService(map[string]any{"title": "Pose gel", "price": 35})
	require.NoError(t, err)
	_, err = s.AddReview(map[string]any{"name": "Léa", "rating": 5, "text": "Parfait"})
	require.NoError(t, err)

	data, err := s.Export(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).Marshal()
	require.NoError(t, err)

	other, _ := newSite(t, 1<<20, nil, nil)
	st, err := other.Import(data)
	require.NoError(t, err)
	assert.Len(t, st.Services, 1)
	assert.Equal(t, s.ListServices()[0].ID, other.ListServices()[0].ID)
	assert.Len(t, other.ListReviews(), 1)

	st, err = other.Import([]byte(`{"services":"not an array","reviews":[{"name":"Zoé","text":"Top"}]}`))
	require.NoError(t, err)
	assert.Empty(t, st.Services)
	assert.Empty(t, other.ListServices())
	assert.Len(t, other.ListReviews(), 1)

	_, err = other.Import([]byte(`[1,2]`))
	require.Error(t, err)
	assert.Len(t, other.ListReviews(), 1)
}

func TestImportRollsBackOnCapacity(t *testing.T) {
	s, _ := newSite(t, 600, nil, nil)

	_, err := s.AddService(map[string]any{"title": "Pose gel"})
	require.NoError(t, err)

	big := `{"gallery":[{"dataUrl":"data:image/png;base64,` + string(bytes.Repeat([]byte("A"), 2000)) + `"}]}`
	_, err = s.Import([]byte(big))
	require.ErrorIs(t, err, persist.ErrCapacityExceeded)

	assert.Len(t, s.ListServices(), 1)
	assert.Empty(t, s.ListGallery())
}

func TestBootHydratesFromBackend(t *testing.T) {
	settings := entity.DefaultSettings()
	settings.Hero.Title = "Depuis le backend"

	backend := &fakeBackend{configured: true, agg: &remote.Aggregate{
		Settings: &settings,
		Services: []entity.Service{{Meta: entity.Meta{ID: "s1", OrderIndex: 20}, Title: "B", Category: "Manucure"},
			{Meta: entity.Meta{ID: "s2", OrderIndex: 10}, Title: "A", Category: "Manucure"}},
	}}

	gdb, err := db.OpenLocal(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)

	s := site.New(persist.New(gdb, 1<<20), backend, nil, nil)
	s.Boot(context.Background(), true)

	list := s.ListServices()
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "Depuis le backend", s.Settings().Hero.Title)
}

func TestImportChecksCombinedSize(t *testing.T) {
	s, store := newSite(t, 4000, nil, nil)

	payload := string(bytes.Repeat([]byte("A"), 1800))

	_, err := s.Import([]byte(`{"gallery":[{"dataUrl":"data:image/png;base64,` + payload + `"}]}`))
	require.NoError(t, err)

	// the new services only fit because the gallery is emptied in the same write
	_, err = s.Import([]byte(`{"services":[{"title":"Pose gel","description":"` + payload + `"}],"gallery":[]}`))
	require.NoError(t, err)

	assert.Len(t, s.ListServices(), 1)
	assert.Empty(t, s.ListGallery())

	u, err := store.Usage()
	require.NoError(t, err)
	assert.LessOrEqual(t, u.Used, u.Capacity)
}

func hydratingSite(t *testing.T, capacity int, backend *fakeBackend, seed func(*persist.Adapter)) *site.Site {
	t.Helper()

	gdb, err := db.OpenLocal(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)

	store := persist.New(gdb, capacity)
	seed(store)

	s := site.New(store, backend, nil, nil)
	s.Boot(context.Background(), true)

	return s
}

func TestBootKeepsLocalOnlyGalleryItems(t *testing.T) {
	backend := &fakeBackend{configured: true, agg: &remote.Aggregate{
		Gallery: []entity.GalleryItem{{Meta: entity.Meta{ID: "remote"}, ImageURL: "https://cdn.example.com/a.webp"}},
	}}

	s := hydratingSite(t, 1<<20, backend, func(store *persist.Adapter) {
		require.NoError(t, store.Save(persist.SlotGallery, []entity.GalleryItem{
			{Meta: entity.Meta{ID: "stale"}, ImageURL: "https://cdn.example.com/old.webp"},
			{Meta: entity.Meta{ID: "local", OrderIndex: 10}, DataURL: "data:image/webp;base64,AAAA", Alt: "vernis"},
		}))
	})

	list := s.ListGallery()
	require.Len(t, list, 2)
	assert.Equal(t, "remote", list[0].ID)
	assert.Equal(t, "local", list[1].ID)
	assert.Equal(t, "data:image/webp;base64,AAAA", list[1].DataURL)
	assert.Equal(t, "vernis", list[1].Alt)
	assert.Equal(t, 10, list[1].OrderIndex)
}

func TestBootKeepsLocalStateWhenHydrationOverflows(t *testing.T) {
	long := string(bytes.Repeat([]byte("x"), 1800))

	backend := &fakeBackend{configured: true, agg: &remote.Aggregate{
		Services: []entity.Service{{Meta: entity.Meta{ID: "s1"}, Title: "Cils", Description: long}},
		Reviews:  []entity.Review{{Meta: entity.Meta{ID: "r1"}, Name: "Lea", Text: long, Rating: 5}},
	}}

	s := hydratingSite(t, 3000, backend, func(store *persist.Adapter) {
		require.NoError(t, store.Save(persist.SlotServices, []entity.Service{{Meta: entity.Meta{ID: "mine"}, Title: "Pose gel"}}))
	})

	list := s.ListServices()
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].ID)
	assert.Empty(t, s.ListReviews())
}

func TestSecretFlag(t *testing.T) {
	s, store := newSite(t, 1<<20, nil, nil)

	s.SetSecret("pw")
	assert.True(t, s.HasSecret())

	var flag map[string]any
	require.True(t, store.Load(persist.SlotAuthSession, &flag))
	assert.Equal(t, true, flag["authenticated"])

	s.ClearSecret()
	assert.False(t, s.HasSecret())
	assert.False(t, store.Load(persist.SlotAuthSession, &flag))
}
