// Package content provides the operations on the backend content tables.
package content

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lamaindor/salon-cms/internal/db/models"
)

const displayOrder = "order_index ASC, created_at ASC"

var (
	// ErrSettingsNotFound is returned when no settings row was saved yet.
	ErrSettingsNotFound = errors.New("settings not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ListServices returns the services in display order.
func ListServices(db *gorm.DB) ([]models.ServiceRow, error) {
	return list[models.ServiceRow](db)
}

// ListGallery returns the gallery in display order.
func ListGallery(db *gorm.DB) ([]models.GalleryRow, error) {
	return list[models.GalleryRow](db)
}

// ListReviews returns the reviews in display order.
func ListReviews(db *gorm.DB) ([]models.ReviewRow, error) {
	return list[models.ReviewRow](db)
}

// ReplaceServices deletes every service and inserts rows.
func ReplaceServices(db *gorm.DB, rows []models.ServiceRow) error {
	return replaceAll(db, rows)
}

// ReplaceGallery deletes every gallery row and inserts rows.
func ReplaceGallery(db *gorm.DB, rows []models.GalleryRow) error {
	return replaceAll(db, rows)
}

// ReplaceReviews deletes every review and inserts rows.
// Both steps run in one transaction.
func ReplaceReviews(db *gorm.DB, rows []models.ReviewRow) error {
	return replaceAll(db, rows)
}

// GetSettings returns the settings row.
func GetSettings(db *gorm.DB) (*models.SettingsRow, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var row models.SettingsRow

	// struct condition, key is reserved in mysql and needs quoting
	result := db.Where(&models.SettingsRow{Key: models.SettingsKey}).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}

		return nil, result.Error
	}

	return &row, nil
}

// SaveSettings upserts the settings row.
func SaveSettings(db *gorm.DB, value []byte) error {
	if db == nil {
		return ErrDBNil
	}

	row := models.SettingsRow{
		Key:       models.SettingsKey,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func list[T any](db *gorm.DB) ([]T, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	rows := []T{}
	if err := db.Order(displayOrder).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func replaceAll[T any](db *gorm.DB, rows []T) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		return tx.Create(&rows).Error
	})
}
