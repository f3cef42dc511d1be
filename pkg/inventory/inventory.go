// Package inventory implements the fixed-capacity slot store of items a
// reader has collected during a story session.
//
// The inventory lives on the interactive goroutine only; it takes no
// locks and the async fetch worker never touches it.
package inventory

import (
	"errors"

	"github.com/migueltarga/kiddo-engine/pkg/story"
)

// Capacity is the number of inventory slots.
const Capacity = 5

var (
	// ErrFull is returned when every slot is occupied.
	ErrFull = errors.New("inventory is full")

	// ErrEmptyID is returned for items with an empty id. An empty id
	// means "empty slot" and is never an addressable item.
	ErrEmptyID = errors.New("inventory item has empty id")
)

// Inventory is a fixed-capacity slot array of held items.
type Inventory struct {
	slots [Capacity]story.InventoryItem

	// OnAdd, when set, is invoked synchronously for items added via
	// AddNotify. The UI layer uses it to show a "new item" toast; the
	// inventory itself has no display knowledge.
	OnAdd func(story.InventoryItem)
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{}
}

// Initialize clears all slots and then adds the given items in order.
// Items that do not fit once capacity is reached are silently dropped.
func (inv *Inventory) Initialize(items []story.InventoryItem) {
	inv.Clear()
	for _, item := range items {
		_ = inv.Add(item)
	}
}

// Clear empties every slot.
func (inv *Inventory) Clear() {
	for i := range inv.slots {
		inv.slots[i] = story.InventoryItem{}
	}
}

// Add places the item in the first empty slot.
func (inv *Inventory) Add(item story.InventoryItem) error {
	if item.Empty() {
		return ErrEmptyID
	}
	for i := range inv.slots {
		if inv.slots[i].Empty() {
			inv.slots[i] = item
			return nil
		}
	}
	return ErrFull
}

// AddNotify adds the item and, on success, fires the OnAdd hook.
func (inv *Inventory) AddNotify(item story.InventoryItem) error {
	if err := inv.Add(item); err != nil {
		return err
	}
	if inv.OnAdd != nil {
		inv.OnAdd(item)
	}
	return nil
}

// Remove clears the first slot holding id. It reports whether a slot
// was found; a miss leaves the inventory unchanged.
func (inv *Inventory) Remove(id string) bool {
	for i := range inv.slots {
		if !inv.slots[i].Empty() && inv.slots[i].ID == id {
			inv.slots[i] = story.InventoryItem{}
			return true
		}
	}
	return false
}

// Has reports whether the inventory holds id. An empty id is trivially
// true: it expresses "no requirement".
func (inv *Inventory) Has(id string) bool {
	if id == "" {
		return true
	}
	for i := range inv.slots {
		if inv.slots[i].ID == id {
			return true
		}
	}
	return false
}

// Items returns the occupied slots in slot order.
func (inv *Inventory) Items() []story.InventoryItem {
	items := make([]story.InventoryItem, 0, Capacity)
	for i := range inv.slots {
		if !inv.slots[i].Empty() {
			items = append(items, inv.slots[i])
		}
	}
	return items
}

// Count returns the number of held items.
func (inv *Inventory) Count() int {
	return len(inv.Items())
}

// Full reports whether no empty slot remains.
func (inv *Inventory) Full() bool {
	for i := range inv.slots {
		if inv.slots[i].Empty() {
			return false
		}
	}
	return true
}
