// Package recommend implements the hybrid next-pick recommender: sequential
// pattern matching over mined pick patterns with a same-category similarity
// fallback.
package recommend

import (
	"strings"
	"sync/atomic"
)

// Primary attribute values. Anything the data source reports outside this
// enumeration is stored as AttributeUnknown.
const (
	AttributeStrength     = "Strength"
	AttributeAgility      = "Agility"
	AttributeIntelligence = "Intelligence"
	AttributeUniversal    = "Universal"
	AttributeUnknown      = "Unknown"

	// RoleUnknown is used when an item has no roles listed.
	RoleUnknown = "Unknown"
)

// Item is a pickable entity (a hero) with its categorical features.
type Item struct {
	ID               string `json:"hero_id"`
	Name             string `json:"hero_name"`
	AttackType       string `json:"attack_type"`
	PrimaryAttribute string `json:"primary_attr"`
	Role             string `json:"role"`
}

// FeatureKey is the grouping key used by the similarity fallback.
// Only equality matters.
type FeatureKey struct {
	AttackType       string
	PrimaryAttribute string
	Role             string
}

// Features returns the item's similarity key.
func (i Item) Features() FeatureKey {
	return FeatureKey{
		AttackType:       i.AttackType,
		PrimaryAttribute: i.PrimaryAttribute,
		Role:             i.Role,
	}
}

// NormalizeAttribute maps a short attribute code ("str", "agi", "int", "all")
// to its display value.
func NormalizeAttribute(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "str":
		return AttributeStrength
	case "agi":
		return AttributeAgility
	case "int":
		return AttributeIntelligence
	case "all":
		return AttributeUniversal
	default:
		return AttributeUnknown
	}
}

// Catalog is a read-only collection of items keyed by id.
type Catalog struct {
	items []Item
	index map[string]int
}

// NewCatalog builds a catalog. Items without an id are skipped; when an id
// repeats, the later item replaces the earlier one in place.
func NewCatalog(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if pos, ok := c.index[item.ID]; ok {
			c.items[pos] = item
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	pos, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[pos], true
}

// List returns all items in catalog order.
func (c *Catalog) List() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// DisplayName returns the item's name, or the raw id when it is unknown.
func (c *Catalog) DisplayName(id string) string {
	if item, ok := c.Lookup(id); ok && item.Name != "" {
		return item.Name
	}
	return id
}

// CatalogStore holds the current catalog snapshot.
type CatalogStore struct {
	current atomic.Pointer[Catalog]
}

// NewCatalogStore creates a store seeded with the given catalog (nil means empty).
func NewCatalogStore(initial *Catalog) *CatalogStore {
	s := &CatalogStore{}
	s.Replace(initial)
	return s
}

// Load returns the current catalog. Never nil.
func (s *CatalogStore) Load() *Catalog {
	return s.current.Load()
}

// Replace swaps in a new catalog and returns the previous one.
func (s *CatalogStore) Replace(c *Catalog) *Catalog {
	if c == nil {
		c = NewCatalog(nil)
	}
	return s.current.Swap(c)
}
