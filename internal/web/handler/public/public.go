package public

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

// GenericBookingURL is used when neither a service nor the settings carry a booking link.
const GenericBookingURL = "https://calendly.com/votre-compte/rdv"

// Service is the storefront handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the storefront handler.
var Handler = Service{}

// Offer is a service as the storefront shows it.
type Offer struct {
	entity.Service
	Booking string `json:"booking_url"`
}

// GalleryImage is a gallery item as the storefront shows it.
type GalleryImage struct {
	ID  string `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Init registers the storefront routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.site = st

	app.Route(handler.PublicAPIPath, func(router fiber.Router) {
		router.Get("/services", s.Services)
		router.Get("/gallery", s.Gallery)
		router.Get("/reviews", s.Reviews)
		router.Get("/settings", s.Settings)
	})
}

// Services returns the catalog with each booking link resolved.
func (s *Service) Services(c *fiber.Ctx) error {
	fallback := BookingFallback(s.site.Settings())
	list := s.site.ListServices()
	out := make([]Offer, len(list))

	for i := range list {
		out[i] = Offer{Service: list[i], Booking: list[i].BookingURL(fallback)}
	}

	return c.JSON(out)
}

// Gallery returns the images in display order.
func (s *Service) Gallery(c *fiber.Ctx) error {
	list := s.site.ListGallery()
	out := make([]GalleryImage, 0, len(list))

	for i := range list {
		if src := list[i].Source(); src != "" {
			out = append(out, GalleryImage{ID: list[i].ID, Src: src, Alt: list[i].Alt})
		}
	}

	return c.JSON(out)
}

// Reviews returns the reviews in display order.
func (s *Service) Reviews(c *fiber.Ctx) error {
	return c.JSON(s.site.ListReviews())
}

// Settings returns the storefront copy and contact links.
func (s *Service) Settings(c *fiber.Ctx) error {
	return c.JSON(s.site.Settings())
}

// BookingFallback returns the salon wide booking link, or the generic one.
func BookingFallback(st entity.Settings) string {
	if st.Contact.BookingURL != "" {
		return st.Contact.BookingURL
	}

	return GenericBookingURL
}
