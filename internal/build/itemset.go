package build

import "github.com/meur/buildforge/internal/models"

// ToItemSet converts a build to the League client item set format. Instance
// ids and block positions have no place there and are dropped; block order
// is preserved.
func ToItemSet(b models.Build) models.ItemSet {
	set := models.ItemSet{
		Title:               b.Title,
		Type:                "custom",
		Map:                 "any",
		Mode:                "any",
		AssociatedMaps:      append([]int{}, b.AssociatedMaps...),
		AssociatedChampions: append([]int{}, b.AssociatedChampions...),
		Blocks:              make([]models.ItemSetBlock, 0, len(b.Blocks)),
	}

	for _, blk := range b.Blocks {
		out := models.ItemSetBlock{
			Type:  blk.Type,
			Items: make([]models.ItemSetItem, 0, len(blk.Items)),
		}
		for _, it := range blk.Items {
			out.Items = append(out.Items, models.ItemSetItem{ID: it.ItemID, Count: it.Count})
		}
		set.Blocks = append(set.Blocks, out)
	}

	return set
}
