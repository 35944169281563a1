package models

// Item represents a catalog item that can be placed in a build
type Item struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Price int      `json:"price"`
	From  []int    `json:"from"` // Direct components, in recipe order
	To    []int    `json:"to"`   // Items this one builds into
	Tags  []string `json:"tags"`
	Maps  []int    `json:"maps"` // Map ids the item is available on, nil when unknown
}

// IsBase reports whether the item has no components
func (i Item) IsBase() bool {
	return len(i.From) == 0
}

// AvailableOn reports whether the item can be bought on the given map.
// Items without map data (nil Maps) are treated as available everywhere;
// an empty non-nil list means the item is sold on no map.
func (i Item) AvailableOn(mapID int) bool {
	if i.Maps == nil {
		return true
	}
	for _, m := range i.Maps {
		if m == mapID {
			return true
		}
	}
	return false
}

// ItemList is a collection of items
type ItemList struct {
	Version    string `json:"version"`
	Items      []Item `json:"items"`
	TotalCount int    `json:"total_count"`
}
