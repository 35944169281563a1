package build

import (
	"fmt"

	"github.com/meur/buildforge/internal/models"
)

// CreateBlock inserts an empty block at position (clamped to the block
// range) and shifts later blocks down by one. When seedItemID is a catalog
// id the block starts with one build item referencing it; any other seed is
// ignored.
func (d *Document) CreateBlock(position int, seedItemID string) models.Block {
	position = clamp(position, 0, len(d.data.Blocks))

	blk := models.Block{
		ID:    d.allocID(),
		Items: []models.BuildItem{},
	}
	if IsCatalogID(seedItemID) {
		blk.Items = append(blk.Items, d.newItem(seedItemID))
	}

	d.data.Blocks = append(d.data.Blocks, models.Block{})
	copy(d.data.Blocks[position+1:], d.data.Blocks[position:])
	d.data.Blocks[position] = blk
	d.renumber()

	return copyBlock(d.data.Blocks[position])
}

// RemoveBlock deletes a block and closes the gap it leaves. Removing a block
// that does not exist is a no-op.
func (d *Document) RemoveBlock(blockID string) {
	i := d.blockIndex(blockID)
	if i < 0 {
		return
	}
	d.data.Blocks = append(d.data.Blocks[:i], d.data.Blocks[i+1:]...)
	d.renumber()
}

// RenameBlock sets the freeform label of a block
func (d *Document) RenameBlock(blockID, blockType string) error {
	i := d.blockIndex(blockID)
	if i < 0 {
		return fmt.Errorf("rename %s: %w", blockID, ErrBlockNotFound)
	}
	d.data.Blocks[i].Type = blockType
	return nil
}

// AddItem appends a new build item with count 1 to a block
func (d *Document) AddItem(blockID, catalogItemID string) (models.BuildItem, error) {
	n, ok := d.ItemCount(blockID)
	if !ok {
		return models.BuildItem{}, fmt.Errorf("add item to %s: %w", blockID, ErrBlockNotFound)
	}
	return d.InsertItem(blockID, catalogItemID, n)
}

// InsertItem places a new build item with count 1 at index, clamped to the
// block's length. catalogItemID must be numeric.
func (d *Document) InsertItem(blockID, catalogItemID string, index int) (models.BuildItem, error) {
	bi := d.blockIndex(blockID)
	if bi < 0 {
		return models.BuildItem{}, fmt.Errorf("insert item into %s: %w", blockID, ErrBlockNotFound)
	}
	if !IsCatalogID(catalogItemID) {
		return models.BuildItem{}, fmt.Errorf("insert %q: %w", catalogItemID, ErrInvalidItemID)
	}

	it := d.newItem(catalogItemID)
	blk := &d.data.Blocks[bi]
	blk.Items = insertAt(blk.Items, clamp(index, 0, len(blk.Items)), it)
	return it, nil
}

// RemoveItem deletes a build item from a block. It is a no-op when the item
// is already gone; only a missing block is an error.
func (d *Document) RemoveItem(blockID, buildItemID string) error {
	bi := d.blockIndex(blockID)
	if bi < 0 {
		return fmt.Errorf("remove item from %s: %w", blockID, ErrBlockNotFound)
	}
	blk := &d.data.Blocks[bi]
	if ii := itemIndex(blk.Items, buildItemID); ii >= 0 {
		blk.Items = append(blk.Items[:ii], blk.Items[ii+1:]...)
	}
	return nil
}

// MoveItem relocates a build item into another block at toIndex, clamped to
// [0, len(destination)]. The item keeps its id and count. Moving within one
// block is a reorder.
func (d *Document) MoveItem(fromBlockID, toBlockID, buildItemID string, toIndex int) error {
	if fromBlockID == toBlockID {
		return d.ReorderWithinBlock(fromBlockID, buildItemID, toIndex)
	}

	src := d.blockIndex(fromBlockID)
	if src < 0 {
		return fmt.Errorf("move from %s: %w", fromBlockID, ErrBlockNotFound)
	}
	dst := d.blockIndex(toBlockID)
	if dst < 0 {
		return fmt.Errorf("move to %s: %w", toBlockID, ErrBlockNotFound)
	}
	ii := itemIndex(d.data.Blocks[src].Items, buildItemID)
	if ii < 0 {
		return fmt.Errorf("move %s: %w", buildItemID, ErrItemNotFound)
	}

	it := d.data.Blocks[src].Items[ii]
	d.data.Blocks[src].Items = append(d.data.Blocks[src].Items[:ii], d.data.Blocks[src].Items[ii+1:]...)

	dest := &d.data.Blocks[dst]
	dest.Items = insertAt(dest.Items, clamp(toIndex, 0, len(dest.Items)), it)
	return nil
}

// ReorderWithinBlock moves a build item so that it ends up at toIndex in its
// block. toIndex is clamped to the block's valid indexes.
func (d *Document) ReorderWithinBlock(blockID, buildItemID string, toIndex int) error {
	bi := d.blockIndex(blockID)
	if bi < 0 {
		return fmt.Errorf("reorder in %s: %w", blockID, ErrBlockNotFound)
	}
	blk := &d.data.Blocks[bi]
	from := itemIndex(blk.Items, buildItemID)
	if from < 0 {
		return fmt.Errorf("reorder %s: %w", buildItemID, ErrItemNotFound)
	}

	to := clamp(toIndex, 0, len(blk.Items)-1)
	if to == from {
		return nil
	}

	it := blk.Items[from]
	blk.Items = append(blk.Items[:from], blk.Items[from+1:]...)
	blk.Items = insertAt(blk.Items, to, it)
	return nil
}

// SetItemCount changes the quantity of a build item. Counts below one are
// raised to one.
func (d *Document) SetItemCount(blockID, buildItemID string, count int) error {
	bi := d.blockIndex(blockID)
	if bi < 0 {
		return fmt.Errorf("set count in %s: %w", blockID, ErrBlockNotFound)
	}
	ii := itemIndex(d.data.Blocks[bi].Items, buildItemID)
	if ii < 0 {
		return fmt.Errorf("set count of %s: %w", buildItemID, ErrItemNotFound)
	}
	if count < 1 {
		count = 1
	}
	d.data.Blocks[bi].Items[ii].Count = count
	return nil
}

func (d *Document) newItem(catalogItemID string) models.BuildItem {
	return models.BuildItem{
		ID:     d.allocID(),
		ItemID: catalogItemID,
		Count:  1,
	}
}

func insertAt(items []models.BuildItem, i int, it models.BuildItem) []models.BuildItem {
	items = append(items, models.BuildItem{})
	copy(items[i+1:], items[i:])
	items[i] = it
	return items
}
