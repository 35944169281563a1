package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meur/buildforge/internal/catalog"
	"github.com/meur/buildforge/internal/logger"
	"github.com/meur/buildforge/internal/metrics"
	"github.com/meur/buildforge/internal/sharecode"
	"github.com/meur/buildforge/internal/storage"
	"github.com/meur/buildforge/internal/validation"
)

const (
	defaultTreeCacheSize = 512
	maxBodyBytes         = 1 << 20
)

// Deps are the collaborators the API serves from
type Deps struct {
	Catalog        *catalog.Catalog
	Store          *storage.Store // optional, adds import info to /api/catalog
	Codec          *sharecode.Codec
	TreeCacheSize  int
	MaxCodeLength  int // rejects longer ?code= values, 0 disables the check
	AllowedOrigins []string
}

// Server holds the HTTP server dependencies
type Server struct {
	catalog       *catalog.Catalog
	store         *storage.Store
	codec         *sharecode.Codec
	trees         *lru.Cache[int, treeResponse]
	maxCodeLength int
	origins       []string
	router        chi.Router
}

// New creates a new API server
func New(deps Deps) (*Server, error) {
	size := deps.TreeCacheSize
	if size <= 0 {
		size = defaultTreeCacheSize
	}
	trees, err := lru.New[int, treeResponse](size)
	if err != nil {
		return nil, err
	}

	codec := deps.Codec
	if codec == nil {
		codec = sharecode.NewCodec(0)
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}

	s := &Server{
		catalog:       deps.Catalog,
		store:         deps.Store,
		codec:         codec,
		trees:         trees,
		maxCodeLength: deps.MaxCodeLength,
		origins:       origins,
		router:        chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the chi router so callers can mount extra handlers
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(logger.Middleware)
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/catalog", s.handleGetCatalog)
		r.Get("/items", s.handleGetItems)
		r.Get("/items/{id}", s.handleGetItem)
		r.Get("/items/{id}/tree", s.handleGetItemTree)

		// Builds
		r.Get("/builds/new", s.handleNewBuild)
		r.Post("/builds/encode", s.handleEncodeBuild)
		r.Get("/builds/decode", s.handleDecodeBuild)
		r.Post("/builds/export", s.handleExportBuild)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.store != nil {
			if err := s.store.Ping(r.Context()); err != nil {
				respondError(w, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondValidation(w http.ResponseWriter, errs validation.FieldErrors) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"error":  "Validation failed",
		"errors": errs,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func logFor(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx)
}
