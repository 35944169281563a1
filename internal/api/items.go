package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meur/buildforge/internal/catalog"
	"github.com/meur/buildforge/internal/metrics"
	"github.com/meur/buildforge/internal/models"
	"github.com/meur/buildforge/internal/storage"
)

type itemResponse struct {
	models.Item
	Rarity catalog.Rarity `json:"rarity"`
}

type treeResponse struct {
	Root   itemResponse          `json:"root"`
	Nodes  []catalog.TreeNode    `json:"nodes"`
	Nested []*catalog.NestedNode `json:"nested"`
}

type catalogResponse struct {
	Version    string     `json:"version"`
	ItemCount  int        `json:"item_count"`
	ImportedAt *time.Time `json:"imported_at,omitempty"`
}

// handleGetCatalog describes the loaded catalog
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{
		Version:   s.catalog.Version(),
		ItemCount: s.catalog.Len(),
	}

	if s.store != nil {
		info, err := s.store.CatalogInfo(r.Context())
		switch {
		case err == nil:
			resp.ImportedAt = &info.ImportedAt
		case !errors.Is(err, storage.ErrNotFound):
			logFor(r.Context()).Error("Failed to read catalog info", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to fetch catalog")
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleGetItems returns catalog items, optionally filtered by rarity and map
func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var rarity *catalog.Rarity
	if raw := q.Get("rarity"); raw != "" {
		parsed, err := catalog.ParseRarity(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid rarity")
			return
		}
		rarity = &parsed
	}

	mapID := 0
	if raw := q.Get("map"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid map id")
			return
		}
		mapID = id
	}

	items := s.catalog.Filter(rarity, mapID)
	respondJSON(w, http.StatusOK, models.ItemList{
		Version:    s.catalog.Version(),
		Items:      items,
		TotalCount: len(items),
	})
}

// handleGetItem returns a single catalog item with its rarity
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, found := s.catalog.Get(id)
	if !found {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	respondJSON(w, http.StatusOK, itemResponse{Item: item, Rarity: s.catalog.Rarity(item)})
}

// handleGetItemTree returns the component tree of an item both flat and nested
func (s *Server) handleGetItemTree(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	if cached, hit := s.trees.Get(id); hit {
		metrics.TreeCacheLookups.WithLabelValues(metrics.OutcomeHit).Inc()
		respondJSON(w, http.StatusOK, cached)
		return
	}
	metrics.TreeCacheLookups.WithLabelValues(metrics.OutcomeMiss).Inc()

	root, nodes, err := s.catalog.Tree(id)
	if errors.Is(err, catalog.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		logFor(r.Context()).Error("Failed to resolve item tree", "item_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to resolve item tree")
		return
	}

	resp := treeResponse{
		Root:   itemResponse{Item: root, Rarity: s.catalog.Rarity(root)},
		Nodes:  nodes,
		Nested: catalog.Nest(nodes),
	}
	s.trees.Add(id, resp)

	respondJSON(w, http.StatusOK, resp)
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return 0, false
	}
	return id, true
}
