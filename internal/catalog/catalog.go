// Package catalog indexes game items and expands them into component trees.
package catalog

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/meur/buildforge/internal/models"
)

// ErrItemNotFound is returned when an id has no catalog entry
var ErrItemNotFound = errors.New("catalog item not found")

// Catalog is a read-only index of items by id
type Catalog struct {
	version string
	items   map[int]models.Item
	ids     []int
	log     *slog.Logger
}

// Option configures a Catalog
type Option func(*Catalog)

// WithLogger sets the logger used for data quality warnings
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// WithVersion records the game data version the items came from
func WithVersion(v string) Option {
	return func(c *Catalog) {
		c.version = v
	}
}

// New builds a catalog from items. A later duplicate id replaces an earlier one.
func New(items []models.Item, opts ...Option) *Catalog {
	c := &Catalog{
		items: make(map[int]models.Item, len(items)),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, it := range items {
		c.items[it.ID] = it
	}
	c.ids = make([]int, 0, len(c.items))
	for id := range c.items {
		c.ids = append(c.ids, id)
	}
	sort.Ints(c.ids)

	return c
}

// Version returns the game data version, if known
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of items
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Get returns an item by id
func (c *Catalog) Get(id int) (models.Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Items returns all items ordered by id
func (c *Catalog) Items() []models.Item {
	out := make([]models.Item, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.items[id])
	}
	return out
}

// Filter selects items ordered by id. A zero mapID matches every map and a
// nil rarity matches every rarity.
func (c *Catalog) Filter(rarity *Rarity, mapID int) []models.Item {
	out := []models.Item{}
	for _, id := range c.ids {
		it := c.items[id]
		if mapID != 0 && !it.AvailableOn(mapID) {
			continue
		}
		if rarity != nil && c.Rarity(it) != *rarity {
			continue
		}
		out = append(out, it)
	}
	return out
}
