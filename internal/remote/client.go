// Package remote pushes the admin state to the hosted backend and hydrates it back.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/entity"
)

const (
	// EdgePath is the password gated write endpoint.
	EdgePath = "/functions/v1/admin-api"
	// RestPath is the prefix of the read path.
	RestPath = "/rest/v1"

	// Actions of the write endpoint.
	ActionSaveSettings    = "save_settings"
	ActionReplaceReviews  = "replace_reviews"
	ActionReplaceServices = "replace_services"
	ActionReplaceGallery  = "replace_gallery"
	ActionUploadImage     = "upload_image"

	defaultTimeout = 15 * time.Second
	orderQuery     = "?select=*&order=order_index.asc,created_at.asc"

	// placeholder values shipped in the sample config
	placeholderURL = "SUPABASE_URL"
	placeholderKey = "SUPABASE_ANON_KEY"
)

// Aggregate is the full state pushed to or hydrated from the backend.
type Aggregate struct {
	Settings *entity.Settings    `json:"settings"`
	Services []entity.Service     `json:"services"`
	Gallery  []entity.GalleryItem `json:"gallery"`
	Reviews  []entity.Review      `json:"reviews"`
}

// Empty reports whether the aggregate carries no data at all.
func (a *Aggregate) Empty() bool {
	return a.Settings == nil && len(a.Services) == 0 && len(a.Gallery) == 0 && len(a.Reviews) == 0
}

// Client talks to the backend write endpoint and read path.
type Client struct {
	baseURL string
	anonKey string
	timeout time.Duration
}

// New returns a client for cfg. An empty URL or key leaves it unconfigured.
func New(cfg config.Remote) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		timeout: timeout,
	}
}

// Configured reports whether a backend is set up.
func (c *Client) Configured() bool {
	return c != nil &&
		c.baseURL != "" && c.baseURL != placeholderURL &&
		c.anonKey != "" && c.anonKey != placeholderKey
}

// PushState replaces settings, services and gallery on the backend.
// It stops at the first call that does not succeed.
func (c *Client) PushState(ctx context.Context, secret string, agg Aggregate) Result {
	settings := entity.DefaultSettings()
	if agg.Settings != nil {
		settings = *agg.Settings
	}

	calls := []struct {
		action string
		fields fiber.Map
	}{
		{ActionSaveSettings, fiber.Map{"value": settings}},
		{ActionReplaceServices, fiber.Map{"services": nonNil(agg.Services)}},
		{ActionReplaceGallery, fiber.Map{"gallery": nonNil(agg.Gallery)}},
	}

	for _, call := range calls {
		if res := c.call(ctx, secret, call.action, call.fields, nil); !res.OK() {
			return res
		}
	}

	return result(StatusOK, "")
}

// PushReviews replaces every review on the backend.
func (c *Client) PushReviews(ctx context.Context, secret string, reviews []entity.Review) Result {
	return c.call(ctx, secret, ActionReplaceReviews, fiber.Map{"reviews": nonNil(reviews)}, nil)
}

// UploadImage stores a data URL in the backend object storage and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, secret, dataURL string) (string, Result) {
	var out struct {
		PublicURL string `json:"publicUrl"`
	}

	res := c.call(ctx, secret, ActionUploadImage, fiber.Map{"data_url": dataURL}, &out)
	if res.OK() && out.PublicURL == "" {
		return "", result(StatusError, "upload returned no url")
	}

	return out.PublicURL, res
}

// Hydrate reads the whole state from the backend. It returns nil when the backend
// holds no data.
func (c *Client) Hydrate(ctx context.Context) (*Aggregate, Result) {
	if !c.Configured() {
		return nil, result(StatusNotConfigured, "")
	}

	var (
		agg          Aggregate
		rawServices  []map[string]any
		rawGallery   []map[string]any
		rawReviews   []map[string]any
		settingsRows []struct {
			Value map[string]any `json:"value"`
		}
	)

	reads := []struct {
		path string
		dst  any
	}{
		{"/services" + orderQuery, &rawServices},
		{"/gallery" + orderQuery, &rawGallery},
		{"/reviews" + orderQuery, &rawReviews},
		{"/settings?select=value&key=eq.global", &settingsRows},
	}

	for _, r := range reads {
		if res := c.get(ctx, r.path, r.dst); !res.OK() {
			return nil, res
		}
	}

	for i, raw := range rawServices {
		agg.Services = append(agg.Services, entity.NormalizeService(raw, i))
	}

	for i, raw := range rawGallery {
		agg.Gallery = append(agg.Gallery, entity.NormalizeGalleryItem(raw, i))
	}

	for i, raw := range rawReviews {
		agg.Reviews = append(agg.Reviews, entity.NormalizeReview(raw, i))
	}

	if len(settingsRows) > 0 && settingsRows[0].Value != nil {
		s := entity.MergeSettings(settingsRows[0].Value)
		agg.Settings = &s
	}

	if agg.Empty() {
		return nil, result(StatusOK, "")
	}

	return &agg, result(StatusOK, "")
}

func (c *Client) call(ctx context.Context, secret, action string, fields fiber.Map, out any) Result {
	if !c.Configured() {
		return result(StatusNotConfigured, "")
	}

	if secret == "" {
		return result(StatusUnauthenticated, "no admin secret in session")
	}

	if err := ctx.Err(); err != nil {
		return result(StatusError, err.Error())
	}

	body := fiber.Map{"password": secret, "action": action}
	for k, v := range fields {
		body[k] = v
	}

	a := fiber.Post(c.baseURL + EdgePath)
	c.authorize(a)
	a.JSON(body)

	return c.do(a, action, out)
}

func (c *Client) get(ctx context.Context, path string, out any) Result {
	if err := ctx.Err(); err != nil {
		return result(StatusError, err.Error())
	}

	a := fiber.Get(c.baseURL + RestPath + path)
	c.authorize(a)

	return c.do(a, path, out)
}

func (c *Client) authorize(a *fiber.Agent) {
	a.Set("apikey", c.anonKey)
	a.Set(fiber.HeaderAuthorization, "Bearer "+c.anonKey)
	a.Timeout(c.timeout)
}

func (c *Client) do(a *fiber.Agent, what string, out any) Result {
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Warn().Err(err).Str("call", what).Msg("remote call failed")

		return result(StatusError, err.Error())
	}

	switch {
	case code == fiber.StatusUnauthorized:
		return result(StatusUnauthenticated, "admin secret rejected")
	case code < 200 || code > 299:
		msg := errorMessage(body)
		log.Warn().Int("status", code).Str("call", what).Str("error", msg).Msg("remote call rejected")

		return result(StatusError, fmt.Sprintf("%d: %s", code, msg))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return result(StatusError, "malformed response: "+err.Error())
		}
	}

	return result(StatusOK, "")
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}

	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}

	return strings.TrimSpace(string(body))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
