// Package persist stores the admin state in a bounded local key-value slot table.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lamaindor/salon-cms/internal/db/controller/slot"
)

// Slot names of the persisted state.
const (
	SlotServices    = "services"
	SlotGallery     = "gallery"
	SlotReviews     = "reviews"
	SlotSettings    = "settings"
	SlotAuthSession = "auth_session"
)

// Slots lists every managed slot.
var Slots = []string{SlotServices, SlotGallery, SlotReviews, SlotSettings, SlotAuthSession} //nolint:gochecknoglobals

// Adapter reads and writes JSON snapshots into the slot table.
type Adapter struct {
	db       *gorm.DB
	capacity int
}

// Usage reports how many bytes are stored and how many are allowed.
type Usage struct {
	Used     int            `json:"used"`
	Capacity int            `json:"capacity"`
	Slots    map[string]int `json:"slots"`
}

// New returns an adapter over db enforcing capacity bytes.
func New(db *gorm.DB, capacity int) *Adapter {
	return &Adapter{db: db, capacity: capacity}
}

// Save serializes v into slot name. It returns an error wrapping ErrCapacityExceeded
// when the total size of all slots would exceed the capacity, nothing is written then.
func (a *Adapter) Save(name string, v any) error {
	return a.SaveAll(map[string]any{name: v})
}

// SaveAll writes several slots in one transaction. The capacity check covers the
// combined size of every written slot plus the slots left untouched, so either all
// values are stored or none.
func (a *Adapter) SaveAll(values map[string]any) error {
	encoded := make(map[string][]byte, len(values))

	for name, v := range values {
		if !slices.Contains(Slots, name) {
			return fmt.Errorf("%w: %s", ErrUnknownSlot, name)
		}

		value, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode slot %s: %w", name, err)
		}

		encoded[name] = value
	}

	return a.db.Transaction(func(tx *gorm.DB) error {
		current, err := slot.GetAll(tx)
		if err != nil {
			return err
		}

		need := 0
		for i := range current {
			if _, ok := encoded[current[i].Name]; !ok {
				need += current[i].Size()
			}
		}

		for name, value := range encoded {
			need += len(name) + len(value)
		}

		if need > a.capacity {
			return fmt.Errorf("%w: %s need %d of %d bytes", ErrCapacityExceeded, slotList(encoded), need, a.capacity)
		}

		for _, name := range slices.Sorted(maps.Keys(encoded)) {
			if _, err = slot.Set(tx, name, encoded[name]); err != nil {
				return err
			}
		}

		return nil
	})
}

func slotList(encoded map[string][]byte) string {
	names := slices.Sorted(maps.Keys(encoded))
	if len(names) == 1 {
		return "slot " + names[0]
	}

	return "slots " + strings.Join(names, ", ")
}

// Load decodes slot name into dst. Missing or corrupt data leaves dst untouched and
// reports false, it never fails.
func (a *Adapter) Load(name string, dst any) bool {
	s, err := slot.Get(a.db, name)
	if err != nil {
		if !errors.Is(err, slot.ErrSlotNotFound) {
			log.Warn().Err(err).Str("slot", name).Msg("failed to read slot")
		}

		return false
	}

	if err = json.Unmarshal(s.Value, dst); err != nil {
		log.Warn().Err(err).Str("slot", name).Msg("ignoring corrupt slot")

		return false
	}

	return true
}

// Remove deletes slot name. A missing slot is not an error.
func (a *Adapter) Remove(name string) error {
	err := slot.DeleteByName(a.db, name)
	if errors.Is(err, slot.ErrSlotNotFound) {
		return nil
	}

	return err
}

// Usage returns the current storage usage.
func (a *Adapter) Usage() (Usage, error) {
	slots, err := slot.GetAll(a.db)
	if err != nil {
		return Usage{}, err
	}

	u := Usage{Capacity: a.capacity, Slots: make(map[string]int, len(slots))}
	for i := range slots {
		size := slots[i].Size()
		u.Slots[slots[i].Name] = size
		u.Used += size
	}

	return u, nil
}
