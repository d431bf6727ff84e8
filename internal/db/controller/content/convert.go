package content

import (
	"github.com/lamaindor/salon-cms/internal/db/models"
	"github.com/lamaindor/salon-cms/internal/entity"
)

// ServiceRows normalizes raw records into service rows.
func ServiceRows(raw []map[string]any) []models.ServiceRow {
	rows := make([]models.ServiceRow, 0, len(raw))

	for i, r := range raw {
		s := entity.NormalizeService(r, i)
		rows = append(rows, models.ServiceRow{
			ID:          s.ID,
			Category:    s.Category,
			Title:       s.Title,
			Price:       s.Price,
			Duration:    s.Duration,
			LinkURL:     s.LinkURL,
			Description: s.Description,
			Featured:    s.Featured,
			OrderIndex:  s.OrderIndex,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}

	return rows
}

// GalleryRows normalizes raw records into gallery rows. Items without an image URL
// only live in the admin's local store and are skipped.
func GalleryRows(raw []map[string]any) []models.GalleryRow {
	rows := make([]models.GalleryRow, 0, len(raw))

	for i, r := range raw {
		g := entity.NormalizeGalleryItem(r, i)
		if g.ImageURL == "" {
			continue
		}

		rows = append(rows, models.GalleryRow{
			ID:         g.ID,
			ImageURL:   g.ImageURL,
			Alt:        g.Alt,
			OrderIndex: g.OrderIndex,
			CreatedAt:  g.CreatedAt,
			UpdatedAt:  g.UpdatedAt,
		})
	}

	return rows
}

// ReviewRows normalizes raw records into review rows.
func ReviewRows(raw []map[string]any) []models.ReviewRow {
	rows := make([]models.ReviewRow, 0, len(raw))

	for i, r := range raw {
		rv := entity.NormalizeReview(r, i)
		rows = append(rows, models.ReviewRow{
			ID:         rv.ID,
			Author:     rv.Name,
			Rating:     rv.Rating,
			Text:       rv.Text,
			Date:       rv.Date,
			OrderIndex: rv.OrderIndex,
			CreatedAt:  rv.CreatedAt,
		})
	}

	return rows
}
