package catalog

import "github.com/meur/buildforge/internal/models"

// NestedNode is a component with its own components attached
type NestedNode struct {
	Item     models.Item   `json:"item"`
	Depth    int           `json:"depth"`
	Instance int           `json:"instance"`
	Children []*NestedNode `json:"children"`
}

// Nest rebuilds the nested structure of a resolved tree from the parent
// indexes alone. It returns the root's direct components.
func Nest(nodes []TreeNode) []*NestedNode {
	roots := []*NestedNode{}
	built := make([]*NestedNode, len(nodes))

	for i, n := range nodes {
		nn := &NestedNode{
			Item:     n.Item,
			Depth:    n.Depth,
			Instance: n.Instance,
			Children: []*NestedNode{},
		}
		built[i] = nn

		if n.Parent < 0 || n.Parent >= i {
			roots = append(roots, nn)
			continue
		}
		parent := built[n.Parent]
		parent.Children = append(parent.Children, nn)
	}

	return roots
}
