package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/buildforge/internal/catalog"
	"github.com/meur/buildforge/internal/metrics"
	"github.com/meur/buildforge/internal/models"
	"github.com/meur/buildforge/internal/sharecode"
	"github.com/meur/buildforge/internal/storage"
)

func testItems() []models.Item {
	return []models.Item{
		{ID: 1001, Name: "Boots", Maps: []int{models.MapHowlingAbyss}},
		{ID: 1028, Name: "Ruby Crystal", To: []int{3044}},
		{ID: 1036, Name: "Long Sword", To: []int{3044}},
		{ID: 3044, Name: "Phage", From: []int{1036, 1028}, To: []int{3078}},
		{ID: 3057, Name: "Sheen", To: []int{3078}},
		{ID: 3078, Name: "Trinity Force", From: []int{3057, 3044}, Maps: []int{models.MapSummonersRift}},
	}
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Catalog == nil {
		deps.Catalog = catalog.New(testItems(), catalog.WithVersion("14.1.1"))
	}
	s, err := New(deps)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func validBuild() models.Build {
	return models.Build{
		Title:               "Jax",
		AssociatedMaps:      []int{models.MapSummonersRift},
		AssociatedChampions: []int{24},
		Blocks: []models.Block{
			{ID: "b1", Position: 0, Type: "Core Items", Items: []models.BuildItem{
				{ID: "i1", ItemID: "3078", Count: 1},
				{ID: "i2", ItemID: "2003", Count: 3},
			}},
			{ID: "b2", Position: 1, Type: "Situational", Items: []models.BuildItem{}},
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Deps{})
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetItems(t *testing.T) {
	s := newTestServer(t, Deps{})

	t.Run("all items", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/items", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list models.ItemList
		decodeBody(t, rec, &list)
		assert.Equal(t, "14.1.1", list.Version)
		assert.Equal(t, 6, list.TotalCount)
		assert.Equal(t, 1001, list.Items[0].ID)
	})

	t.Run("by rarity", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/items?rarity=epic", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list models.ItemList
		decodeBody(t, rec, &list)
		require.Len(t, list.Items, 1)
		assert.Equal(t, 3044, list.Items[0].ID)
	})

	t.Run("by rarity and map", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/items?rarity=legendary&map=12", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list models.ItemList
		decodeBody(t, rec, &list)
		assert.Empty(t, list.Items)
		assert.Zero(t, list.TotalCount)
	})

	t.Run("bad filters", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/items?rarity=mythic", nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/items?map=rift", nil).Code)
	})
}

func TestGetItem(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodGet, "/api/items/3078", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Trinity Force", body["name"])
	assert.Equal(t, "legendary", body["rarity"])

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/items/9999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/items/abc", nil).Code)
}

func TestGetItemTree(t *testing.T) {
	s := newTestServer(t, Deps{})
	hits := metrics.TreeCacheLookups.WithLabelValues(metrics.OutcomeHit)
	before := testutil.ToFloat64(hits)

	rec := do(t, s, http.MethodGet, "/api/items/3078/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tree struct {
		Root   map[string]interface{} `json:"root"`
		Nodes  []catalog.TreeNode     `json:"nodes"`
		Nested []catalog.NestedNode   `json:"nested"`
	}
	decodeBody(t, rec, &tree)

	assert.Equal(t, "legendary", tree.Root["rarity"])

	ids := []int{}
	for _, n := range tree.Nodes {
		ids = append(ids, n.Item.ID)
	}
	assert.Equal(t, []int{3057, 3044, 1036, 1028}, ids)
	assert.Equal(t, []int{-1, -1, 1, 1}, []int{
		tree.Nodes[0].Parent, tree.Nodes[1].Parent, tree.Nodes[2].Parent, tree.Nodes[3].Parent,
	})

	require.Len(t, tree.Nested, 2)
	assert.Empty(t, tree.Nested[0].Children)
	require.Len(t, tree.Nested[1].Children, 2)
	assert.Equal(t, 1036, tree.Nested[1].Children[0].Item.ID)

	again := do(t, s, http.MethodGet, "/api/items/3078/tree", nil)
	assert.Equal(t, rec.Body.String(), again.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(hits))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/items/42/tree", nil).Code)
}

func TestGetCatalog(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodGet, "/api/catalog", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		decodeBody(t, rec, &body)
		assert.Equal(t, "14.1.1", body["version"])
		assert.EqualValues(t, 6, body["item_count"])
		assert.NotContains(t, body, "imported_at")
	})

	t.Run("with imported store", func(t *testing.T) {
		store, err := storage.New(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		require.NoError(t, store.ReplaceCatalog(context.Background(), "14.1.1", testItems()))

		s := newTestServer(t, Deps{Store: store})
		rec := do(t, s, http.MethodGet, "/api/catalog", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		decodeBody(t, rec, &body)
		assert.Contains(t, body, "imported_at")

		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil).Code)
	})
}

func TestNewBuild(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodGet, "/api/builds/new?title=Jax", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var b models.Build
	decodeBody(t, rec, &b)
	assert.Equal(t, "Jax", b.Title)
	require.Len(t, b.Blocks, 4)
	for i, blk := range b.Blocks {
		assert.Equal(t, i, blk.Position)
		assert.NotEmpty(t, blk.ID)
		assert.Empty(t, blk.Items)
	}
	assert.Equal(t, "Starting Items", b.Blocks[0].Type)
	assert.Equal(t, "Situational", b.Blocks[3].Type)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := newTestServer(t, Deps{})
	b := validBuild()

	rec := do(t, s, http.MethodPost, "/api/builds/encode", b)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var enc models.EncodeResponse
	decodeBody(t, rec, &enc)
	require.NotEmpty(t, enc.Code)

	rec = do(t, s, http.MethodGet, "/api/builds/decode?code="+enc.Code, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	canonical, err := sharecode.Canonical(b)
	require.NoError(t, err)
	assert.Equal(t, string(canonical), rec.Body.String())
}

func TestEncodeErrors(t *testing.T) {
	s := newTestServer(t, Deps{})

	t.Run("invalid json", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/builds/encode", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid build", func(t *testing.T) {
		b := validBuild()
		b.Blocks[0].Items[1].Count = 0
		b.Blocks[1].Position = 5

		rec := do(t, s, http.MethodPost, "/api/builds/encode", b)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body struct {
			Error  string `json:"error"`
			Errors []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"errors"`
		}
		decodeBody(t, rec, &body)
		assert.NotEmpty(t, body.Error)

		fields := []string{}
		for _, e := range body.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"blocks[0].items[1].count", "blocks[1].position"}, fields)
	})
}

func TestDecodeErrors(t *testing.T) {
	s := newTestServer(t, Deps{MaxCodeLength: 64})
	codec := sharecode.NewCodec(0)

	t.Run("missing code", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/builds/decode", nil).Code)
	})

	t.Run("malformed code", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/builds/decode?code=!!!", nil).Code)
	})

	t.Run("code too long", func(t *testing.T) {
		code := strings.Repeat("A", 65)
		assert.Equal(t, http.StatusRequestEntityTooLarge, do(t, s, http.MethodGet, "/api/builds/decode?code="+code, nil).Code)
	})

	t.Run("valid json but invalid build", func(t *testing.T) {
		code, err := codec.Compress([]byte(`{"title":"x"}`))
		require.NoError(t, err)

		rec := do(t, s, http.MethodGet, "/api/builds/decode?code="+code, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `"field":"blocks"`)
	})
}

func TestExportBuild(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/builds/export", validBuild())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var set models.ItemSet
	decodeBody(t, rec, &set)
	assert.Equal(t, "Jax", set.Title)
	assert.Equal(t, "custom", set.Type)
	require.Len(t, set.Blocks, 2)
	assert.Equal(t, []models.ItemSetItem{{ID: "3078", Count: 1}, {ID: "2003", Count: 3}}, set.Blocks[0].Items)
	assert.Empty(t, set.Blocks[1].Items)

	bad := validBuild()
	bad.Blocks[0].Items[0].ItemID = "trinity"
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/api/builds/export", bad).Code)
}
