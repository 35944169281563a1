// Package build holds the in-memory build document and every mutation the
// editor can apply to it.
//
// A Document is owned by one editing session and is not safe for concurrent
// use.
package build

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/meur/buildforge/internal/models"
)

var (
	ErrBlockNotFound = errors.New("block not found")
	ErrItemNotFound  = errors.New("build item not found")
	ErrInvalidItemID = errors.New("catalog item id must be numeric")
)

// maxIDAttempts bounds retries against a generator that keeps repeating
// itself before a uuid suffix is forced
const maxIDAttempts = 8

// IDGenerator produces candidate ids for blocks and build items
type IDGenerator func() string

// Document is the canonical build state. Blocks are kept in slice order and
// each block's Position always equals its index.
type Document struct {
	data   models.Build
	newID  IDGenerator
	issued map[string]struct{}
}

// Option configures a Document
type Option func(*Document)

// WithIDGenerator replaces the uuid based id source
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Document) {
		if g != nil {
			d.newID = g
		}
	}
}

// New creates an empty document
func New(opts ...Option) *Document {
	d := &Document{
		data: models.Build{
			AssociatedMaps:      []int{},
			AssociatedChampions: []int{},
			Blocks:              []models.Block{},
		},
		newID:  uuid.NewString,
		issued: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromBuild loads a decoded build. Block order is taken from the slice and
// positions are renumbered. Every id already present is reserved so new ids
// never collide with it; empty or repeated ids are replaced with fresh ones
// and counts below one are raised to one. The input is copied.
func FromBuild(b models.Build, opts ...Option) *Document {
	d := New(opts...)
	d.data.Title = b.Title
	d.data.AssociatedMaps = normalizeIDs(b.AssociatedMaps)
	d.data.AssociatedChampions = normalizeIDs(b.AssociatedChampions)

	for _, blk := range b.Blocks {
		cp := copyBlock(blk)
		cp.ID = d.reserve(cp.ID)
		for i := range cp.Items {
			cp.Items[i].ID = d.reserve(cp.Items[i].ID)
			if cp.Items[i].Count < 1 {
				cp.Items[i].Count = 1
			}
		}
		d.data.Blocks = append(d.data.Blocks, cp)
	}
	d.renumber()

	return d
}

// FromTemplate creates a document with one empty block per template
func FromTemplate(title string, templates []models.BlockTemplate, opts ...Option) *Document {
	d := New(opts...)
	d.data.Title = title

	sorted := append([]models.BlockTemplate(nil), templates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	for _, tpl := range sorted {
		blk := d.CreateBlock(len(d.data.Blocks), "")
		_ = d.RenameBlock(blk.ID, tpl.Type)
	}
	return d
}

// Snapshot returns a deep copy of the document's wire form
func (d *Document) Snapshot() models.Build {
	out := models.Build{
		Title:               d.data.Title,
		AssociatedMaps:      append([]int{}, d.data.AssociatedMaps...),
		AssociatedChampions: append([]int{}, d.data.AssociatedChampions...),
		Blocks:              make([]models.Block, 0, len(d.data.Blocks)),
	}
	for _, blk := range d.data.Blocks {
		out.Blocks = append(out.Blocks, copyBlock(blk))
	}
	return out
}

// Title returns the build title
func (d *Document) Title() string {
	return d.data.Title
}

// SetTitle renames the build
func (d *Document) SetTitle(title string) {
	d.data.Title = title
}

// SetAssociatedMaps replaces the map set
func (d *Document) SetAssociatedMaps(maps []int) {
	d.data.AssociatedMaps = normalizeIDs(maps)
}

// SetAssociatedChampions replaces the champion set
func (d *Document) SetAssociatedChampions(champions []int) {
	d.data.AssociatedChampions = normalizeIDs(champions)
}

// Blocks returns a copy of the blocks in order
func (d *Document) Blocks() []models.Block {
	return d.Snapshot().Blocks
}

// Block returns a copy of one block
func (d *Document) Block(blockID string) (models.Block, bool) {
	i := d.blockIndex(blockID)
	if i < 0 {
		return models.Block{}, false
	}
	return copyBlock(d.data.Blocks[i]), true
}

// ItemCount returns the number of items in a block
func (d *Document) ItemCount(blockID string) (int, bool) {
	i := d.blockIndex(blockID)
	if i < 0 {
		return 0, false
	}
	return len(d.data.Blocks[i].Items), true
}

// ItemIndex returns the position of a build item inside a block
func (d *Document) ItemIndex(blockID, buildItemID string) (int, bool) {
	bi := d.blockIndex(blockID)
	if bi < 0 {
		return 0, false
	}
	ii := itemIndex(d.data.Blocks[bi].Items, buildItemID)
	return ii, ii >= 0
}

// FindItem returns the block holding a build item
func (d *Document) FindItem(buildItemID string) (blockID string, index int, ok bool) {
	for _, blk := range d.data.Blocks {
		if i := itemIndex(blk.Items, buildItemID); i >= 0 {
			return blk.ID, i, true
		}
	}
	return "", 0, false
}

// allocID returns an id that this document has never handed out or loaded
func (d *Document) allocID() string {
	for attempt := 0; ; attempt++ {
		id := d.newID()
		if attempt >= maxIDAttempts {
			id += "-" + uuid.NewString()
		}
		if id == "" {
			continue
		}
		if _, used := d.issued[id]; used {
			continue
		}
		d.issued[id] = struct{}{}
		return id
	}
}

// reserve registers an existing id, or allocates a fresh one when id is
// empty or already taken
func (d *Document) reserve(id string) string {
	if id == "" {
		return d.allocID()
	}
	if _, used := d.issued[id]; used {
		return d.allocID()
	}
	d.issued[id] = struct{}{}
	return id
}

func (d *Document) blockIndex(blockID string) int {
	for i, blk := range d.data.Blocks {
		if blk.ID == blockID {
			return i
		}
	}
	return -1
}

func (d *Document) renumber() {
	for i := range d.data.Blocks {
		d.data.Blocks[i].Position = i
	}
}

func itemIndex(items []models.BuildItem, buildItemID string) int {
	for i, it := range items {
		if it.ID == buildItemID {
			return i
		}
	}
	return -1
}

func copyBlock(b models.Block) models.Block {
	cp := b
	cp.Items = append([]models.BuildItem{}, b.Items...)
	return cp
}

// normalizeIDs returns the ids deduplicated and ascending
func normalizeIDs(in []int) []int {
	out := make([]int, 0, len(in))
	seen := make(map[int]struct{}, len(in))
	for _, id := range in {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// IsCatalogID reports whether s has the form of a catalog item id
func IsCatalogID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
