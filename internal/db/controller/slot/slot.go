// Package slot provides the operations on the local key-value slot table.
package slot

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lamaindor/salon-cms/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSlotNotFound is returned when a slot is not found.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotNameEmpty is returned for an empty slot name.
	ErrSlotNameEmpty = errors.New("slot name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a slot by its name.
func Get(db *gorm.DB, name string) (*models.Slot, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSlotNameEmpty
	}

	var slot models.Slot
	result := db.Where(nameQueryPattern, name).First(&slot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, result.Error
	}

	return &slot, nil
}

// GetAll retrieves all slots.
func GetAll(db *gorm.DB) ([]models.Slot, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var slots []models.Slot
	result := db.Order("name").Find(&slots)
	if result.Error != nil {
		return nil, result.Error
	}

	return slots, nil
}

// Set creates or replaces the slot name (upsert on the unique name).
func Set(db *gorm.DB, name string, value []byte) (*models.Slot, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSlotNameEmpty
	}

	slot := &models.Slot{Name: name, Value: value}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(slot)
	if result.Error != nil {
		return nil, result.Error
	}

	return slot, nil
}

// DeleteByName deletes a slot by name.
func DeleteByName(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}
	if name == "" {
		return ErrSlotNameEmpty
	}

	result := db.Where(nameQueryPattern, name).Delete(&models.Slot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}
