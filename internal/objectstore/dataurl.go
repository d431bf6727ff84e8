package objectstore

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidDataURL is returned for anything that is not a base64 png, jpeg or webp data URL.
var ErrInvalidDataURL = errors.New("invalid_data_url")

var dataURLPattern = regexp.MustCompile(`(?is)^data:(image/(png|jpeg|jpg|webp));base64,(.+)$`)

// Image is a decoded data URL.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// ParseDataURL decodes an image data URL.
func ParseDataURL(s string) (Image, error) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Image{}, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(m[3])
	if err != nil {
		return Image{}, ErrInvalidDataURL
	}

	img := Image{ContentType: strings.ToLower(m[1]), Data: data, Ext: "jpg"}

	switch {
	case strings.Contains(img.ContentType, "png"):
		img.Ext = "png"
	case strings.Contains(img.ContentType, "webp"):
		img.Ext = "webp"
	}

	return img, nil
}
