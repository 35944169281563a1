package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/meur/buildforge/internal/models"
	"github.com/meur/buildforge/internal/validation"
)

//go:embed schema/items.schema.json
var itemsSchema []byte

const itemsSchemaName = "items.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *validation.Schema
	schemaErr      error
)

func loadSchema() (*validation.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = validation.CompileSchema(itemsSchemaName, itemsSchema)
	})
	return compiledSchema, schemaErr
}

// File is a decoded catalog file
type File struct {
	Version string
	Items   []models.Item
}

// flexID accepts an item id written as a JSON string or number
type flexID int

func (f *flexID) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("item id must be a string or integer: %s", b)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("item id %q is not numeric", s)
	}
	*f = flexID(n)
	return nil
}

type rawItem struct {
	Name  string          `json:"name"`
	From  []flexID        `json:"from"`
	To    []flexID        `json:"to"`
	Into  []flexID        `json:"into"`
	Icon  string          `json:"icon"`
	Price *int            `json:"price"`
	Tags  []string        `json:"tags"`
	Maps  map[string]bool `json:"maps"`
	Gold  struct {
		Total int `json:"total"`
	} `json:"gold"`
	Image struct {
		Full string `json:"full"`
	} `json:"image"`
}

// LoadFile reads and parses a catalog file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a catalog in either the Data Dragon layout
// ({"version": ..., "data": {"1001": {...}}}) or as a flat id -> item map.
// The document is checked against the catalog schema first.
func Parse(data []byte) (*File, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	if errs := schema.ValidateBytes(data); len(errs) > 0 {
		return nil, errs
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	f := &File{}
	if v, ok := top["version"]; ok {
		if err := json.Unmarshal(v, &f.Version); err != nil {
			return nil, fmt.Errorf("failed to decode version: %w", err)
		}
	}

	entries := top
	if d, ok := top["data"]; ok {
		entries = nil
		if err := json.Unmarshal(d, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode data: %w", err)
		}
	}

	for key, raw := range entries {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue // version, type and other non-item keys
		}
		var ri rawItem
		if err := json.Unmarshal(raw, &ri); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", key, err)
		}
		f.Items = append(f.Items, ri.toItem(id))
	}

	sort.Slice(f.Items, func(i, j int) bool { return f.Items[i].ID < f.Items[j].ID })
	return f, nil
}

func (ri rawItem) toItem(id int) models.Item {
	it := models.Item{
		ID:    id,
		Name:  ri.Name,
		Icon:  ri.Icon,
		Price: ri.Gold.Total,
		From:  toInts(ri.From),
		To:    toInts(ri.To),
		Tags:  ri.Tags,
	}
	if len(it.To) == 0 {
		it.To = toInts(ri.Into)
	}
	if it.Icon == "" {
		it.Icon = ri.Image.Full
	}
	if ri.Price != nil {
		it.Price = *ri.Price
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if ri.Maps == nil {
		return it
	}
	// A maps object that enables nothing means the item is sold nowhere
	it.Maps = []int{}
	for m, enabled := range ri.Maps {
		mapID, err := strconv.Atoi(m)
		if err != nil || !enabled {
			continue
		}
		it.Maps = append(it.Maps, mapID)
	}
	sort.Ints(it.Maps)
	return it
}

func toInts(ids []flexID) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, int(id))
	}
	return out
}
