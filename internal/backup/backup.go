// Package backup exports the whole admin state into one portable JSON document and
// restores it, re-normalizing every record on the way in.
package backup

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/ordered"
)

// Version is the format version written by Export. Version 1 documents carry
// services and gallery only and still import.
const Version = 2

// ErrInvalidDocument is returned when the document is not a JSON object.
var ErrInvalidDocument = errors.New("invalid backup document")

// State is the full admin state.
type State struct {
	Settings entity.Settings
	Services []entity.Service
	Gallery  []entity.GalleryItem
	Reviews  []entity.Review
}

// Document is the export file format.
type Document struct {
	Version    int                  `json:"version"`
	ExportedAt string               `json:"exported_at"`
	Settings   *entity.Settings     `json:"settings"`
	Services   []entity.Service     `json:"services"`
	Gallery    []entity.GalleryItem `json:"gallery"`
	Reviews    []entity.Review      `json:"reviews"`
}

// Export builds the document for st.
func Export(st State, at time.Time) Document {
	settings := st.Settings

	return Document{
		Version:    Version,
		ExportedAt: entity.Timestamp(at),
		Settings:   &settings,
		Services:   nonNil(st.Services),
		Gallery:    nonNil(st.Gallery),
		Reviews:    nonNil(st.Reviews),
	}
}

// Marshal encodes the document the way it is written to disk.
func (d Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Import decodes a document of unknown shape. Only a top-level value that is not
// a JSON object fails; a malformed collection becomes empty and every record is
// normalized and reindexed. Settings are merged against the defaults.
func Import(data []byte) (State, error) {
	var raw map[string]any

	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return State{}, ErrInvalidDocument
	}

	st := State{
		Services: collection(raw["services"], entity.NormalizeService),
		Gallery:  collection(raw["gallery"], entity.NormalizeGalleryItem),
		Reviews:  collection(raw["reviews"], entity.NormalizeReview),
	}

	settings, _ := raw["settings"].(map[string]any)
	st.Settings = entity.MergeSettings(settings)

	st.Services = ordered.New(st.Services).List()
	st.Gallery = ordered.New(st.Gallery).List()
	st.Reviews = ordered.New(st.Reviews).List()

	return st, nil
}

// collection normalizes every object of v. Anything but an array yields an empty
// collection, non-object elements are skipped.
func collection[T any](v any, normalize func(map[string]any, int) T) []T {
	arr, ok := v.([]any)
	if !ok {
		return []T{}
	}

	out := make([]T, 0, len(arr))

	for i, el := range arr {
		if m, isObj := el.(map[string]any); isObj {
			out = append(out, normalize(m, i))
		}
	}

	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
