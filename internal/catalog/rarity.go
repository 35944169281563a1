package catalog

import (
	"fmt"
	"strings"

	"github.com/meur/buildforge/internal/models"
)

// Rarity is the crafting tier of an item
type Rarity int

const (
	RarityBasic Rarity = iota
	RarityEpic
	RarityLegendary
)

func (r Rarity) String() string {
	switch r {
	case RarityEpic:
		return "epic"
	case RarityLegendary:
		return "legendary"
	default:
		return "basic"
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRarity parses a rarity name, case-insensitively
func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return RarityBasic, nil
	case "epic":
		return RarityEpic, nil
	case "legendary":
		return RarityLegendary, nil
	}
	return RarityBasic, fmt.Errorf("unknown rarity %q", s)
}

// IsBasic reports whether the item is a component with no recipe of its own
func IsBasic(it models.Item) bool {
	return it.IsBase() && len(it.To) > 0
}

// IsEpic reports whether the item is an intermediate component
func IsEpic(it models.Item) bool {
	return !it.IsBase() && len(it.To) > 0
}

// IsLegendary reports whether the item is a finished item
func IsLegendary(it models.Item) bool {
	return !it.IsBase() && len(it.To) == 0
}

// Rarity classifies an item. Items matching no tier (no recipe and nothing to
// build into, e.g. consumables) fall back to RarityBasic and an error is logged.
func (c *Catalog) Rarity(it models.Item) Rarity {
	switch {
	case IsLegendary(it):
		return RarityLegendary
	case IsEpic(it):
		return RarityEpic
	case IsBasic(it):
		return RarityBasic
	}
	c.log.Error("Item matches no rarity, defaulting to basic", "item_id", it.ID, "name", it.Name)
	return RarityBasic
}
