package types

import "strings"

// Inventory is the set of pantry items the user has on hand, case-folded and
// trimmed. Items preserves first-seen order so downstream queries built from
// the inventory are deterministic.
type Inventory struct {
	items []string
	set   map[string]struct{}
}

// ParseInventory builds an Inventory from comma-separated free text. Entries
// are trimmed and lower-cased; empties and duplicates are dropped.
func ParseInventory(text string) Inventory {
	inv := Inventory{set: make(map[string]struct{})}
	for _, part := range strings.Split(text, ",") {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		if _, ok := inv.set[item]; ok {
			continue
		}
		inv.set[item] = struct{}{}
		inv.items = append(inv.items, item)
	}
	return inv
}

// Has reports whether the inventory contains the item, case-insensitively.
func (inv Inventory) Has(item string) bool {
	_, ok := inv.set[strings.ToLower(item)]
	return ok
}

// Items returns the inventory entries in first-seen order.
func (inv Inventory) Items() []string {
	return inv.items
}

// Len returns the number of distinct items.
func (inv Inventory) Len() int {
	return len(inv.items)
}

// Query returns the space-joined inventory used as the retrieval query.
func (inv Inventory) Query() string {
	return strings.Join(inv.items, " ")
}
