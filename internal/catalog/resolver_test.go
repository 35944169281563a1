package catalog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/buildforge/internal/models"
)

func item(id int, from ...int) models.Item {
	return models.Item{ID: id, Name: "item", From: from}
}

func ids(nodes []TreeNode) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Item.ID)
	}
	return out
}

func depths(nodes []TreeNode) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Depth)
	}
	return out
}

func TestResolveComponentTree(t *testing.T) {
	t.Run("known graph resolves direct components in order", func(t *testing.T) {
		cat := New([]models.Item{item(3078, 1052, 1011), item(1052), item(1011)})
		root, _ := cat.Get(3078)

		nodes := ResolveComponentTree(root, cat)

		require.Len(t, nodes, 2)
		assert.Equal(t, []int{1052, 1011}, ids(nodes))
		assert.Equal(t, []int{1, 1}, depths(nodes))
		assert.Equal(t, -1, nodes[0].Parent)
		assert.Equal(t, -1, nodes[1].Parent)
	})

	t.Run("base item resolves to empty sequence", func(t *testing.T) {
		cat := New([]models.Item{item(1052)})
		root, _ := cat.Get(1052)

		nodes := ResolveComponentTree(root, cat)

		assert.NotNil(t, nodes)
		assert.Empty(t, nodes)
	})

	t.Run("self cycle stops at the depth cap", func(t *testing.T) {
		cat := New([]models.Item{item(100, 100)})
		root, _ := cat.Get(100)

		nodes := ResolveComponentTree(root, cat)

		require.Len(t, nodes, MaxTreeDepth)
		assert.Equal(t, []int{100, 100, 100, 100, 100}, ids(nodes))
		assert.Equal(t, []int{1, 2, 3, 4, 5}, depths(nodes))
		for i, n := range nodes {
			assert.Equal(t, i, n.Instance)
			assert.Equal(t, i-1, n.Parent)
		}
	})

	t.Run("two item cycle terminates", func(t *testing.T) {
		cat := New([]models.Item{item(1, 2), item(2, 1)})
		root, _ := cat.Get(1)

		nodes := ResolveComponentTree(root, cat)

		assert.Equal(t, []int{2, 1, 2, 1, 2}, ids(nodes))
		assert.Equal(t, []int{1, 2, 3, 4, 5}, depths(nodes))
	})

	t.Run("deep chain is cut below depth five", func(t *testing.T) {
		cat := New([]models.Item{
			item(1, 2), item(2, 3), item(3, 4), item(4, 5), item(5, 6), item(6, 7), item(7, 8), item(8),
		})
		root, _ := cat.Get(1)

		nodes := ResolveComponentTree(root, cat)

		assert.Equal(t, []int{2, 3, 4, 5, 6}, ids(nodes))
		for _, n := range nodes {
			assert.LessOrEqual(t, n.Depth, MaxTreeDepth)
		}
	})

	t.Run("depth first in declared order", func(t *testing.T) {
		// 10 <- [20, 30]; 20 <- [21, 22]; 30 <- [31]
		cat := New([]models.Item{
			item(10, 20, 30), item(20, 21, 22), item(30, 31), item(21), item(22), item(31),
		})
		root, _ := cat.Get(10)

		nodes := ResolveComponentTree(root, cat)

		assert.Equal(t, []int{20, 21, 22, 30, 31}, ids(nodes))
		assert.Equal(t, []int{1, 2, 2, 1, 2}, depths(nodes))
		assert.Equal(t, []int{-1, 0, 0, -1, 3}, []int{
			nodes[0].Parent, nodes[1].Parent, nodes[2].Parent, nodes[3].Parent, nodes[4].Parent,
		})
	})

	t.Run("repeated components get distinct instances", func(t *testing.T) {
		cat := New([]models.Item{item(3031, 1038, 1038, 1018), item(1038), item(1018)})
		root, _ := cat.Get(3031)

		nodes := ResolveComponentTree(root, cat)

		require.Len(t, nodes, 3)
		assert.Equal(t, 0, nodes[0].Instance)
		assert.Equal(t, 1, nodes[1].Instance)
		assert.Equal(t, 0, nodes[2].Instance)
	})

	t.Run("unknown component is skipped and logged", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		cat := New([]models.Item{item(3078, 9999, 1011), item(1011)}, WithLogger(log))
		root, _ := cat.Get(3078)

		nodes := ResolveComponentTree(root, cat)

		assert.Equal(t, []int{1011}, ids(nodes))
		assert.Contains(t, buf.String(), "component_id=9999")
	})

	t.Run("resolution is deterministic", func(t *testing.T) {
		cat := New([]models.Item{
			item(10, 20, 30, 20), item(20, 21, 10), item(30, 31), item(21), item(31, 30),
		})
		root, _ := cat.Get(10)

		first := ResolveComponentTree(root, cat)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, ResolveComponentTree(root, cat))
		}
	})

	t.Run("every node sits one level below its parent", func(t *testing.T) {
		cat := New([]models.Item{
			item(10, 20, 30, 20), item(20, 21, 10), item(30, 31), item(21), item(31, 30),
		})
		root, _ := cat.Get(10)

		nodes := ResolveComponentTree(root, cat)
		for _, n := range nodes {
			if n.Parent < 0 {
				assert.Equal(t, 1, n.Depth)
				assert.Contains(t, root.From, n.Item.ID)
				continue
			}
			parent := nodes[n.Parent]
			assert.Equal(t, parent.Depth+1, n.Depth)
			assert.Contains(t, parent.Item.From, n.Item.ID)
		}
	})
}

func TestCatalogTree(t *testing.T) {
	cat := New([]models.Item{item(3078, 1052), item(1052)})

	root, nodes, err := cat.Tree(3078)
	require.NoError(t, err)
	assert.Equal(t, 3078, root.ID)
	assert.Len(t, nodes, 1)

	_, _, err = cat.Tree(42)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestNest(t *testing.T) {
	cat := New([]models.Item{
		item(10, 20, 30), item(20, 21, 22), item(30, 31), item(21), item(22), item(31),
	})
	root, _ := cat.Get(10)

	nested := Nest(ResolveComponentTree(root, cat))

	require.Len(t, nested, 2)
	assert.Equal(t, 20, nested[0].Item.ID)
	assert.Equal(t, 30, nested[1].Item.ID)
	require.Len(t, nested[0].Children, 2)
	assert.Equal(t, 21, nested[0].Children[0].Item.ID)
	assert.Equal(t, 22, nested[0].Children[1].Item.ID)
	require.Len(t, nested[1].Children, 1)
	assert.Equal(t, 31, nested[1].Children[0].Item.ID)
	assert.Empty(t, nested[1].Children[0].Children)

	assert.Empty(t, Nest(nil))
}
