// Package imaging downsizes uploaded images and re-encodes them as compact data URLs.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/png"

	"github.com/HugoSmits86/nativewebp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxSide is the longest side of an ingested image.
	DefaultMaxSide = 1600
	// DefaultQuality is the JPEG quality of the fallback encoder.
	DefaultQuality = 82
	// DefaultMaxPixels bounds the decoded raster, width times height, of one image.
	DefaultMaxPixels = 40_000_000

	formatJPEG = "jpeg"

	mimeWebP = "image/webp"
	mimeJPEG = "image/jpeg"
)

var (
	// ErrNotImage is returned for files whose content type is not an image.
	ErrNotImage = errors.New("file is not an image")

	// ErrDecode is returned when the image data can not be decoded.
	ErrDecode = errors.New("failed to decode image")

	// ErrTooLarge is returned when the image header announces more pixels than allowed.
	ErrTooLarge = errors.New("image dimensions exceed the pixel limit")

	ingested = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "salon",
		Name:      "images_ingested_total",
		Help:      "Number of ingested images, differentiated by encoder and outcome.",
	}, []string{"format", "outcome"})
)

// Encoder turns a raster into bytes of one format.
type Encoder func(w io.Writer, img image.Image) error

// Pipeline decodes, downsizes and re-encodes images.
type Pipeline struct {
	MaxSide   int
	Quality   int
	Workers   int
	MaxPixels int

	// encoders override the preferred and fallback encoders in tests
	preferred Encoder
	fallback  Encoder
}

// Result is one ingested image.
type Result struct {
	Name     string `json:"name"`
	DataURL  string `json:"dataUrl"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int    `json:"bytes"`
}

// New returns a pipeline with defaults for zero values.
func New(maxSide, quality, workers int) *Pipeline {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	return &Pipeline{MaxSide: maxSide, Quality: quality, Workers: workers, MaxPixels: DefaultMaxPixels}
}

// Ingest decodes r, scales the longer side down to MaxSide and encodes the result.
// The header is checked against MaxPixels before the raster is allocated.
func (p *Pipeline) Ingest(ctx context.Context, name string, r io.Reader) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		ingested.WithLabelValues("", "decode_error").Inc()

		return Result{}, fmt.Errorf("%w %s: %w", ErrDecode, name, err)
	}

	if pixels, limit := int64(header.Width)*int64(header.Height), p.maxPixels(); pixels > limit {
		ingested.WithLabelValues("", "too_large").Inc()

		return Result{}, fmt.Errorf("%w: %s is %dx%d, limit %d pixels", ErrTooLarge, name, header.Width, header.Height, limit)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		ingested.WithLabelValues("", "decode_error").Inc()

		return Result{}, fmt.Errorf("%w %s: %w", ErrDecode, name, err)
	}

	w, h := TargetSize(src.Bounds().Dx(), src.Bounds().Dy(), p.MaxSide)
	dst := flatten(src, w, h)

	mime, out, err := p.encode(dst, format)
	if err != nil {
		ingested.WithLabelValues("", "encode_error").Inc()

		return Result{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}

	ingested.WithLabelValues(mime, "ok").Inc()

	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(out)

	log.Debug().
		Str("name", name).
		Int("width", w).
		Int("height", h).
		Int("bytes", len(out)).
		Str("mime", mime).
		Msg("image ingested")

	return Result{
		Name:     name,
		DataURL:  dataURL,
		MimeType: mime,
		Width:    w,
		Height:   h,
		Bytes:    EstimateDataURLBytes(dataURL),
	}, nil
}

func (p *Pipeline) maxPixels() int64 {
	if p.MaxPixels <= 0 {
		return DefaultMaxPixels
	}

	return int64(p.MaxPixels)
}

// encode writes img as WebP and falls back to JPEG when the WebP encoder fails.
// nativewebp is lossless only, so photographs decoded from JPEG go straight to JPEG.
func (p *Pipeline) encode(img image.Image, sourceFormat string) (string, []byte, error) {
	preferred, fallback := p.preferred, p.fallback
	if preferred == nil {
		preferred = encodeWebP
	}

	if fallback == nil {
		quality := p.Quality
		fallback = func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
		}
	}

	var webpErr error

	if sourceFormat != formatJPEG {
		var buf bytes.Buffer
		if webpErr = preferred(&buf, img); webpErr == nil {
			return mimeWebP, buf.Bytes(), nil
		}

		log.Debug().Err(webpErr).Msg("webp encoder failed, using jpeg")
	}

	var buf bytes.Buffer
	if err := fallback(&buf, img); err != nil {
		return "", nil, errors.Join(webpErr, err)
	}

	return mimeJPEG, buf.Bytes(), nil
}

func encodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}

// TargetSize scales w x h so the longer side is at most maxSide. Images are never
// upscaled and no side drops below one pixel.
func TargetSize(w, h, maxSide int) (int, int) {
	longer := max(w, h)
	if maxSide <= 0 || longer <= maxSide {
		return max(w, 1), max(h, 1)
	}

	scale := float64(maxSide) / float64(longer)

	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5)) //nolint:mnd
}

// flatten draws src scaled to w x h onto an opaque white surface.
func flatten(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return dst
}

// EstimateDataURLBytes returns the decoded size of a base64 data URL payload.
func EstimateDataURLBytes(dataURL string) int {
	_, b64, found := strings.Cut(dataURL, ",")
	if !found {
		return 0
	}

	padding := 0

	switch {
	case strings.HasSuffix(b64, "=="):
		padding = 2
	case strings.HasSuffix(b64, "="):
		padding = 1
	}

	return max(0, len(b64)*3/4-padding) //nolint:mnd
}
