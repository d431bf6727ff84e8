package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// NormalizeService turns a partial record into a well-formed Service.
// It never fails: unparsable fields fall back to their defaults.
func NormalizeService(raw map[string]any, fallbackIndex int) Service {
	s := Service{
		Meta:        normalizeMeta(raw, fallbackIndex),
		Category:    str(raw, "category"),
		Title:       str(raw, "title"),
		Description: str(raw, "description"),
		LinkURL:     str(raw, "link_url"),
		Featured:    boolean(raw["featured"]),
	}

	if s.Category == "" {
		s.Category = DefaultCategory
	}

	if p, ok := number(raw["price"]); ok && p > 0 {
		s.Price = math.Round(p*100) / 100 //nolint:mnd
	}

	if d, ok := number(raw["duration"]); ok && math.Round(d) > 0 {
		minutes := int(math.Round(d))
		s.Duration = &minutes
	}

	return s
}

// NormalizeGalleryItem turns a partial record into a well-formed GalleryItem.
// A remote image URL wins over an embedded data URL.
func NormalizeGalleryItem(raw map[string]any, fallbackIndex int) GalleryItem {
	g := GalleryItem{
		Meta:     normalizeMeta(raw, fallbackIndex),
		DataURL:  str(raw, "dataUrl"),
		ImageURL: str(raw, "image_url"),
		Alt:      str(raw, "alt"),
	}

	if g.ImageURL != "" {
		g.DataURL = ""
	}

	return g
}

// NormalizeReview turns a partial record into a well-formed Review.
// The author is read from "name" or, as the remote table calls it, "author".
func NormalizeReview(raw map[string]any, fallbackIndex int) Review {
	r := Review{
		Meta:   normalizeMeta(raw, fallbackIndex),
		Name:   str(raw, "name"),
		Text:   str(raw, "text"),
		Date:   str(raw, "date"),
		Rating: MaxRating,
	}

	if r.Name == "" {
		r.Name = str(raw, "author")
	}

	if r.Name == "" {
		r.Name = DefaultReviewer
	}

	if v, ok := number(raw["rating"]); ok && int(v) != 0 {
		r.Rating = min(MaxRating, max(MinRating, int(v)))
	}

	return r
}

// ToRaw converts a typed record back into the raw shape the normalizers accept.
func ToRaw(v any) map[string]any {
	out := map[string]any{}

	b, err := json.Marshal(v)
	if err != nil {
		return out
	}

	_ = json.Unmarshal(b, &out)

	return out
}

func normalizeMeta(raw map[string]any, fallbackIndex int) Meta {
	now := Timestamp(Now())

	m := Meta{
		ID:         str(raw, "id"),
		OrderIndex: fallbackIndex * OrderStep,
		CreatedAt:  str(raw, "created_at"),
		UpdatedAt:  now,
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	if v, ok := number(raw["order_index"]); ok {
		m.OrderIndex = int(math.Round(v))
	}

	if m.CreatedAt == "" {
		m.CreatedAt = now
	}

	return m
}

// str returns the trimmed string form of raw[key]; objects and arrays yield "".
func str(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case nil, map[string]any, []any:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return ""
		}

		return strings.TrimSpace(s)
	}
}

// number parses numbers, numeric strings and booleans. Empty strings and
// non-finite values are reported as not ok.
func number(v any) (float64, bool) {
	var (
		f   float64
		err error
	)

	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}

		f, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	default:
		f, err = cast.ToFloat64E(t)
	}

	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func boolean(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "0", "false", "off", "no":
			return false
		default:
			return true
		}
	}

	if f, ok := number(v); ok {
		return f != 0
	}

	b, err := cast.ToBoolE(v)

	return err == nil && b
}
