package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/db"
	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/imaging"
	"github.com/lamaindor/salon-cms/internal/objectstore"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend"
	"github.com/lamaindor/salon-cms/internal/web/session"
)

const (
	testPassword = "18121995"
	testAnonKey  = "anon"
)

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode: true,
		Title:   "test",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Hour},
		},
		Admin: config.Admin{Password: testPassword, AnonKey: testAnonKey},
	}
}

type env struct {
	svc     *Service
	site    *site.Site
	objects *objectstore.Memory
}

func newTestEnv(t *testing.T, capacity int, backendRole bool) *env {
	t.Helper()

	session.Init(nil)

	cfg := newTestConfig()

	local, err := db.OpenLocal(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)

	st := site.New(persist.New(local, capacity), nil, nil, imaging.New(64, 80, 2))
	st.Boot(context.Background(), false)

	var (
		webBackend *Backend
		objects    *objectstore.Memory
	)

	if backendRole {
		content, err := db.Open(config.DB{Path: filepath.Join(t.TempDir(), "backend.db")})
		require.NoError(t, err)
		require.NoError(t, db.MigrateContent(content))

		objects = objectstore.NewMemory(cfg.Webserver.URL + backend.ObjectPath)
		webBackend = &Backend{DB: content, Objects: objects}
	}

	return &env{svc: New(cfg, st, webBackend), site: st, objects: objects}
}

func (e *env) do(t *testing.T, method, target string, body any, cookie string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	resp, err := e.svc.App.Test(req, -1)
	require.NoError(t, err)

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, out
}

func (e *env) login(t *testing.T) string {
	t.Helper()

	resp, _ := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": testPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}

	t.Fatal("no session cookie")

	return ""
}

func TestLoginAndAuth(t *testing.T) {
	e := newTestEnv(t, 1<<20, false)

	resp, body := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unauthorized"}`, string(body))

	resp, _ = e.do(t, http.MethodGet, "/api/admin/services", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/admin/services", nil, "forged")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie := e.login(t)
	assert.True(t, e.site.HasSecret())

	resp, body = e.do(t, http.MethodGet, "/api/admin/services", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = e.do(t, http.MethodPost, "/api/admin/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, e.site.HasSecret())

	resp, _ = e.do(t, http.MethodGet, "/api/admin/services", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type remoteOnly struct{}

func (remoteOnly) Configured() bool { return true }

func (remoteOnly) Hydrate(context.Context) (*remote.Aggregate, remote.Result) {
	return nil, remote.Result{Status: remote.StatusOK}
}

func (remoteOnly) UploadImage(context.Context, string, string) (string, remote.Result) {
	return "", remote.Result{Status: remote.StatusError}
}

func TestLoginWithoutAdminPasswordIsRefused(t *testing.T) {
	session.Init(nil)

	cfg := newTestConfig()
	cfg.Admin = config.Admin{}

	local, err := db.OpenLocal(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)

	st := site.New(persist.New(local, 1<<20), remoteOnly{}, nil, nil)
	st.Boot(context.Background(), false)
	require.True(t, st.RemoteConfigured())

	e := &env{svc: New(cfg, st, nil), site: st}

	for _, password := range []string{"", "anything", testPassword} {
		resp, _ := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, "")
		assert.NotEqual(t, http.StatusOK, resp.StatusCode, password)

		for _, c := range resp.Cookies() {
			assert.NotEqual(t, session.CookieName, c.Name, "no session may be issued")
		}
	}

	resp, _ := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "anything"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, st.HasSecret())
}

func TestServicesAPI(t *testing.T) {
	e := newTestEnv(t, 1<<20, false)
	cookie := e.login(t)

	resp, _ := e.do(t, http.MethodPost, "/api/admin/services", map[string]any{"title": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/admin/services", map[string]any{
		"title": "Pose gel", "price": "35", "link_url": "https://book.example.com/gel",
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var first entity.Service
	require.NoError(t, json.Unmarshal(body, &first))

	resp, body = e.do(t, http.MethodPost, "/api/admin/services", map[string]any{"title": "Manucure express"}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var second entity.Service
	require.NoError(t, json.Unmarshal(body, &second))

	resp, _ = e.do(t, http.MethodPost, "/api/admin/services/reorder",
		map[string]string{"moved_id": second.ID, "target_id": first.ID}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPut, "/api/admin/services/missing", map[string]any{"price": 1}, cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/public/services", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var offers []map[string]any
	require.NoError(t, json.Unmarshal(body, &offers))
	require.Len(t, offers, 2)
	assert.Equal(t, "Manucure express", offers[0]["title"])
	assert.Equal(t, entity.DefaultSettings().Contact.BookingURL, offers[0]["booking_url"])
	assert.Equal(t, "https://book.example.com/gel", offers[1]["booking_url"])

	resp, _ = e.do(t, http.MethodDelete, "/api/admin/services/"+first.ID, nil, cookie)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCapacityIsInsufficientStorage(t *testing.T) {
	e := newTestEnv(t, 300, false)
	cookie := e.login(t)

	resp, body := e.do(t, http.MethodPost, "/api/admin/gallery/items", map[string]any{
		"dataUrl": "data:image/png;base64," + strings.Repeat("A", 1000),
	}, cookie)
	assert.Equal(t, http.StatusInsufficientStorage, resp.StatusCode)
	assert.Contains(t, string(body), "export")
	assert.Empty(t, e.site.ListGallery())
}

func TestGalleryUpload(t *testing.T) {
	e := newTestEnv(t, 1<<20, false)
	cookie := e.login(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("just text"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/gallery", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})

	resp, err := e.svc.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Added   int `json:"added"`
		Results []struct {
			Name  string `json:"name"`
			Error string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Zero(t, out.Added)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "notes.txt", out.Results[0].Name)
	assert.NotEmpty(t, out.Results[0].Error)
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t, 1<<20, false)
	cookie := e.login(t)

	_, err := e.site.AddReview(map[string]any{"name": "Léa", "text": "Parfait"})
	require.NoError(t, err)

	resp, body := e.do(t, http.MethodGet, "/api/admin/export", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "salon-backup-")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.InDelta(t, 2, doc["version"], 0)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", strings.NewReader(`"nope"`))
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	resp, err = e.svc.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/import", strings.NewReader(`{"services":"not an array"}`))
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	resp, err = e.svc.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, e.site.ListReviews())
}

func TestCheckAlive(t *testing.T) {
	e := newTestEnv(t, 1<<20, false)

	resp, body := e.do(t, http.MethodGet, CheckAlivePath, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	e.svc.alive.Store(false)

	resp, _ = e.do(t, http.MethodGet, CheckAlivePath, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, MetricsPath, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEdgeEndpoint(t *testing.T) {
	e := newTestEnv(t, 1<<20, true)

	resp, body := e.do(t, http.MethodPost, remote.EdgePath, map[string]any{"password": "", "action": "save_settings"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unauthorized"}`, string(body))

	resp, body = e.do(t, http.MethodPost, remote.EdgePath, map[string]any{"password": testPassword, "action": "drop_tables"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unknown_action"}`, string(body))

	resp, body = e.do(t, http.MethodPost, remote.EdgePath, map[string]any{
		"password": testPassword, "action": "upload_image", "data_url": "data:text/plain;base64,AAAA",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid_data_url"}`, string(body))

	png := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))
	resp, body = e.do(t, http.MethodPost, remote.EdgePath, map[string]any{
		"password": testPassword, "action": "upload_image", "data_url": png,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up struct {
		OK        bool   `json:"ok"`
		PublicURL string `json:"publicUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &up))
	assert.True(t, up.OK)
	assert.True(t, strings.HasPrefix(up.PublicURL, "http://localhost/storage/v1/object/public/public-images/uploads/"))
	assert.True(t, strings.HasSuffix(up.PublicURL, ".png"))
	assert.Equal(t, 1, e.objects.Len())

	resp, body = e.do(t, http.MethodGet, strings.TrimPrefix(up.PublicURL, "http://localhost"), nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG fake", string(body))

	resp, _ = e.do(t, http.MethodPost, remote.EdgePath, map[string]any{
		"password": testPassword, "action": "replace_reviews",
		"reviews": []map[string]any{{"name": "Léa", "rating": 9, "text": "Top"}, {"text": "Bien"}},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, remote.EdgePath, map[string]any{
		"password": testPassword, "action": "save_settings",
		"value": map[string]any{"hero": map[string]any{"title": "Chez Manon"}},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodOptions, remote.EdgePath, nil)
	req.Header.Set("Origin", "https://salon.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := e.svc.App.Test(req, -1)
	require.NoError(t, err)
	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRestReadPath(t *testing.T) {
	e := newTestEnv(t, 1<<20, true)

	resp, _ := e.do(t, http.MethodGet, remote.RestPath+"/reviews", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	get := func(path string) []byte {
		req := httptest.NewRequest(http.MethodGet, remote.RestPath+path, nil)
		req.Header.Set("apikey", testAnonKey)

		resp, err := e.svc.App.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		return b
	}

	assert.JSONEq(t, `[]`, string(get("/settings?select=value&key=eq.global")))
	assert.JSONEq(t, `[]`, string(get("/services?select=*&order=order_index.asc,created_at.asc")))
}

// TestRoundTripThroughOwnBackend pushes the admin state to this same server acting
// as the hosted backend, then hydrates a fresh site from it.
func TestRoundTripThroughOwnBackend(t *testing.T) {
	e := newTestEnv(t, 1<<20, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = e.svc.App.Listener(ln) }()

	t.Cleanup(func() { _ = e.svc.App.Shutdown() })

	client := remote.New(config.Remote{URL: "http://" + ln.Addr().String(), AnonKey: testAnonKey, Timeout: 5 * time.Second})

	st := e.site.State()
	st.Services = []entity.Service{entity.NormalizeService(map[string]any{"title": "Pose gel", "price": 35}, 0)}
	st.Reviews = []entity.Review{entity.NormalizeReview(map[string]any{"name": "Léa", "text": "Top"}, 0)}
	st.Gallery = []entity.GalleryItem{
		entity.NormalizeGalleryItem(map[string]any{"image_url": "https://cdn.example.com/a.webp", "alt": "A"}, 0),
		entity.NormalizeGalleryItem(map[string]any{"dataUrl": "data:image/png;base64,AAAA"}, 1),
	}

	agg := remote.Aggregate{Settings: &st.Settings, Services: st.Services, Gallery: st.Gallery, Reviews: st.Reviews}
	require.True(t, client.PushState(context.Background(), testPassword, agg).OK())
	require.True(t, client.PushReviews(context.Background(), testPassword, agg.Reviews).OK())

	res := client.PushState(context.Background(), "wrong", agg)
	assert.Equal(t, remote.StatusUnauthenticated, res.Status)

	hydrated, res := client.Hydrate(context.Background())
	require.True(t, res.OK())
	require.NotNil(t, hydrated)
	require.Len(t, hydrated.Services, 1)
	assert.Equal(t, "Pose gel", hydrated.Services[0].Title)
	assert.Equal(t, st.Services[0].ID, hydrated.Services[0].ID)
	require.Len(t, hydrated.Gallery, 1, "embedded images stay local")
	require.Len(t, hydrated.Reviews, 1)
	assert.Equal(t, "Léa", hydrated.Reviews[0].Name)
	require.NotNil(t, hydrated.Settings)
}
