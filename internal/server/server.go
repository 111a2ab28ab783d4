package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/handfistface/ListPoint/internal/blob"
	"github.com/handfistface/ListPoint/internal/handler"
	"github.com/handfistface/ListPoint/internal/middleware"
	"github.com/handfistface/ListPoint/internal/store"
)

// Config carries the server's wiring options.
type Config struct {
	SecureCookies bool
	Blob          blob.Config
}

type Server struct {
	db            *sql.DB
	authH         *handler.AuthHandler
	listH         *handler.ListHandler
	itemH         *handler.ItemHandler
	originalH     *handler.OriginalHandler
	sectionH      *handler.SectionHandler
	collaboratorH *handler.CollaboratorHandler
	exploreH      *handler.ExploreHandler
	favoriteH     *handler.FavoriteHandler
	autocompleteH *handler.AutocompleteHandler
	thumbnailH    *handler.ThumbnailHandler
	adminH        *handler.AdminHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

// New wires the stores and handlers together. The system account is
// bootstrapped here so the list store always knows the adoptive owner for
// orphaned lineages.
func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	userStore := store.NewUserStore(db)
	systemUser, err := userStore.EnsureSystemUser()
	if err != nil {
		return nil, err
	}

	listStore := store.NewListStore(db, systemUser.ID)
	sessionStore := store.NewSessionStore(db)
	favoriteStore := store.NewFavoriteStore(db)
	autocompleteStore := store.NewAutocompleteStore(db)
	blobStore := blob.New(cfg.Blob)

	return &Server{
		db:            db,
		authH:         handler.NewAuthHandler(userStore, sessionStore, cfg.SecureCookies, logger.With("component", "auth")),
		listH:         handler.NewListHandler(listStore, logger.With("component", "list")),
		itemH:         handler.NewItemHandler(listStore, autocompleteStore, logger.With("component", "item")),
		originalH:     handler.NewOriginalHandler(listStore, autocompleteStore, logger.With("component", "original")),
		sectionH:      handler.NewSectionHandler(listStore),
		collaboratorH: handler.NewCollaboratorHandler(listStore, userStore, logger.With("component", "collaborator")),
		exploreH:      handler.NewExploreHandler(listStore, logger.With("component", "explore")),
		favoriteH:     handler.NewFavoriteHandler(favoriteStore, listStore, logger.With("component", "favorite")),
		autocompleteH: handler.NewAutocompleteHandler(autocompleteStore, logger.With("component", "autocomplete")),
		thumbnailH:    handler.NewThumbnailHandler(listStore, blobStore, logger.With("component", "thumbnail")),
		adminH:        handler.NewAdminHandler(userStore, logger.With("component", "admin")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Routes open to anonymous viewers of public lists. OptionalAuth still
	// resolves a session when one is present so role classification works.
	optionalAuth := middleware.OptionalAuth(s.sessionStore, s.userStore)
	outerMux.Handle("GET /api/explore", optionalAuth(http.HandlerFunc(s.exploreH.Explore)))
	outerMux.Handle("GET /api/lists/{id}", optionalAuth(http.HandlerFunc(s.listH.Get)))
	outerMux.Handle("GET /api/lists/{id}/sections", optionalAuth(http.HandlerFunc(s.sectionH.Index)))
	outerMux.Handle("POST /api/lists/{id}/items/{item_id}/check", optionalAuth(http.HandlerFunc(s.itemH.Check)))

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	// Registered on the outer mux so the literal segment beats the public
	// "/api/lists/{id}" wildcard.
	outerMux.Handle("GET /api/lists/shared", authMiddleware(http.HandlerFunc(s.listH.Shared)))
	outerMux.Handle("/", authMiddleware(protectedMux))

	httpLogger := s.logger.With("component", "http")
	return middleware.RequestLogger(httpLogger)(middleware.Recover(httpLogger)(outerMux))
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/theme", s.authH.UpdateTheme)

	// List CRUD
	mux.HandleFunc("GET /api/lists", s.listH.Index)
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)
	mux.HandleFunc("POST /api/lists/{id}/clone", s.listH.Clone)

	// Working items
	mux.HandleFunc("POST /api/lists/{id}/items", s.itemH.Add)
	mux.HandleFunc("PUT /api/lists/{id}/items/{item_id}", s.itemH.Edit)
	mux.HandleFunc("DELETE /api/lists/{id}/items/{item_id}", s.itemH.Remove)
	mux.HandleFunc("POST /api/lists/{id}/items/{item_id}/quantity", s.itemH.Quantity)
	mux.HandleFunc("POST /api/lists/{id}/restore", s.itemH.Restore)

	// Template (original) items
	mux.HandleFunc("POST /api/lists/{id}/original/items", s.originalH.Add)
	mux.HandleFunc("PUT /api/lists/{id}/original/items/{item_id}", s.originalH.Edit)
	mux.HandleFunc("DELETE /api/lists/{id}/original/items/{item_id}", s.originalH.Remove)

	// Sections
	mux.HandleFunc("POST /api/lists/{id}/sections", s.sectionH.Create)
	mux.HandleFunc("PUT /api/lists/{id}/sections/{name}", s.sectionH.Rename)
	mux.HandleFunc("DELETE /api/lists/{id}/sections/{name}", s.sectionH.Delete)

	// Collaborators
	mux.HandleFunc("GET /api/lists/{id}/collaborators", s.collaboratorH.Index)
	mux.HandleFunc("POST /api/lists/{id}/collaborators", s.collaboratorH.Add)
	mux.HandleFunc("DELETE /api/lists/{id}/collaborators/{user_id}", s.collaboratorH.Remove)
	mux.HandleFunc("GET /api/users/search", s.collaboratorH.SearchUsers)

	// Favorites
	mux.HandleFunc("POST /api/favorites/{list_id}", s.favoriteH.Toggle)
	mux.HandleFunc("GET /api/favorites", s.favoriteH.Index)

	// Autocomplete
	mux.HandleFunc("GET /api/autocomplete", s.autocompleteH.Suggest)

	// Thumbnails
	mux.HandleFunc("POST /api/lists/{id}/thumbnail", s.thumbnailH.Upload)

	// Admin
	mux.Handle("PUT /api/admin/users/{id}", middleware.RequireAdmin(http.HandlerFunc(s.adminH.SetAdmin)))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
