// Package models contains database model definitions.
package models

// Slot is one named entry of the local key-value store holding a serialized collection.
type Slot struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique;size:64;not null"`
	Value []byte
}

// Size is the number of bytes the slot accounts for against the capacity.
func (s *Slot) Size() int {
	return len(s.Name) + len(s.Value)
}
