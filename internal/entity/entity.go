// Package entity defines the managed content records of the storefront and the
// normalizer every record passes through before it enters the system.
package entity

import (
	"time"
)

const (
	// DefaultCategory is used for services without a category.
	DefaultCategory = "Manucure"

	// DefaultReviewer is used for reviews without an author name.
	DefaultReviewer = "Cliente"

	// OrderStep is the gap between two neighbouring order indexes.
	OrderStep = 10

	// MinRating and MaxRating bound a review rating.
	MinRating = 1
	MaxRating = 5

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// Now returns the current time. Tests replace it to get stable timestamps.
var Now = time.Now //nolint:gochecknoglobals

// Timestamp formats t the way every record stores its timestamps (UTC, milliseconds).
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Meta is shared by every ordered record.
type Meta struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Base gives generic code access to the shared fields.
func (m *Meta) Base() *Meta { return m }

// Entity is implemented by pointers to Service, GalleryItem and Review.
type Entity interface {
	Base() *Meta
	SearchText() string
}

// Service is one bookable service of the catalog.
type Service struct {
	Meta
	Category    string  `json:"category"`
	Title       string  `json:"title"       validate:"required"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Duration    *int    `json:"duration"    validate:"omitempty,gt=0"`
	LinkURL     string  `json:"link_url"    validate:"omitempty,http_url"`
	Description string  `json:"description"`
	Featured    bool    `json:"featured"`
}

// SearchText returns the text the admin search box matches against.
func (s *Service) SearchText() string {
	return s.Title + " " + s.Category + " " + s.Description
}

// BookingURL returns the service's own booking link or fallback.
func (s *Service) BookingURL(fallback string) string {
	if s.LinkURL != "" {
		return s.LinkURL
	}

	return fallback
}

// GalleryItem is one image of the gallery.
// DataURL is set in local mode, ImageURL when the image lives in object storage.
type GalleryItem struct {
	Meta
	DataURL  string `json:"dataUrl,omitempty"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
	Alt      string `json:"alt"`
}

// SearchText implements Entity.
func (g *GalleryItem) SearchText() string { return g.Alt }

// Source returns the URL the browser loads the image from.
func (g *GalleryItem) Source() string {
	if g.ImageURL != "" {
		return g.ImageURL
	}

	return g.DataURL
}

// Review is a customer testimonial.
type Review struct {
	Meta
	Name   string `json:"name"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Text   string `json:"text"   validate:"required"`
	Date   string `json:"date"`
}

// SearchText implements Entity.
func (r *Review) SearchText() string { return r.Name + " " + r.Text }

// Hero is the copy of the landing section.
type Hero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTALabel string `json:"cta_label"`
}

// Contact holds the contact data and social links.
type Contact struct {
	Phone           string `json:"phone"`
	Email           string `json:"email"             validate:"omitempty,email"`
	Address         string `json:"address"`
	WhatsAppURL     string `json:"whatsapp_url"      validate:"omitempty,url"`
	InstagramURL    string `json:"instagram_url"     validate:"omitempty,url"`
	FacebookURL     string `json:"facebook_url"      validate:"omitempty,url"`
	TikTokURL       string `json:"tiktok_url"        validate:"omitempty,url"`
	GoogleReviewURL string `json:"google_review_url" validate:"omitempty,url"`
	BookingURL      string `json:"booking_url"       validate:"omitempty,url"`
}

// Reservation is the copy of the reservation panel.
type Reservation struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Settings is the singleton site configuration edited in the admin panel.
type Settings struct {
	Hero        Hero        `json:"hero"`
	Contact     Contact     `json:"contact"`
	Reservation Reservation `json:"reservation"`
}

// DefaultSettings returns the values used for every settings field left empty.
func DefaultSettings() Settings {
	return Settings{
		Hero: Hero{
			Title:    "La Main d'Or",
			Subtitle: "Ongles, cils et soins des mains à Gravelines",
			CTALabel: "Prendre rendez-vous",
		},
		Contact: Contact{
			Phone:        "+33 7 50 12 60 32",
			WhatsAppURL:  "https://wa.me/33750126032",
			InstagramURL: "https://www.instagram.com/manon__behra",
			BookingURL:   "https://calendly.com/votre-compte/rdv",
		},
		Reservation: Reservation{
			Title: "Réserver",
			Text:  "Choisis ta prestation et réserve ton créneau en ligne.",
		},
	}
}
