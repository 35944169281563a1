package catalog

import (
	"github.com/meur/buildforge/internal/models"
)

// MaxTreeDepth bounds component expansion. Catalog data may contain cycles,
// so this cap is what guarantees termination.
const MaxTreeDepth = 5

// TreeNode is one component in an expanded item tree
type TreeNode struct {
	Item     models.Item `json:"item"`
	Depth    int         `json:"depth"`    // Distance from the expanded root, >= 1
	Instance int         `json:"instance"` // Occurrence number of Item.ID within the tree, from 0
	Parent   int         `json:"parent"`   // Index of the parent node, -1 when the parent is the root
}

type frame struct {
	id     int
	depth  int
	parent int
}

// ResolveComponentTree expands root into its components, depth first in
// recipe order. The root itself is not part of the result. Component ids
// missing from the catalog are skipped. Nothing deeper than MaxTreeDepth
// is emitted.
func ResolveComponentTree(root models.Item, c *Catalog) []TreeNode {
	nodes := []TreeNode{}
	seen := make(map[int]int)

	stack := make([]frame, 0, len(root.From))
	stack = pushComponents(stack, root.From, 1, -1)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		it, ok := c.Get(f.id)
		if !ok {
			c.log.Warn("Skipping unknown component", "item_id", root.ID, "component_id", f.id, "depth", f.depth)
			continue
		}

		nodes = append(nodes, TreeNode{
			Item:     it,
			Depth:    f.depth,
			Instance: seen[it.ID],
			Parent:   f.parent,
		})
		seen[it.ID]++

		if f.depth < MaxTreeDepth {
			stack = pushComponents(stack, it.From, f.depth+1, len(nodes)-1)
		}
	}

	return nodes
}

// pushComponents pushes ids in reverse so they pop in declared order
func pushComponents(stack []frame, ids []int, depth, parent int) []frame {
	for i := len(ids) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: ids[i], depth: depth, parent: parent})
	}
	return stack
}

// Tree resolves the component tree of the item with the given id
func (c *Catalog) Tree(id int) (models.Item, []TreeNode, error) {
	root, ok := c.Get(id)
	if !ok {
		return models.Item{}, nil, ErrItemNotFound
	}
	return root, ResolveComponentTree(root, c), nil
}
