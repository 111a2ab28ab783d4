package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/handfistface/ListPoint/internal/model"
	"github.com/handfistface/ListPoint/internal/store"
)

const (
	explorePageSize = 20
	exploreCacheTTL = 30 * time.Second
)

// ExploreHandler serves the public list browser. Results are cached briefly
// per query so a busy explore page does not hammer the database; staleness
// up to the TTL is acceptable there.
type ExploreHandler struct {
	lists  *store.ListStore
	cache  *cache.Cache
	logger *slog.Logger
}

func NewExploreHandler(ls *store.ListStore, logger *slog.Logger) *ExploreHandler {
	return &ExploreHandler{
		lists:  ls,
		cache:  cache.New(exploreCacheTTL, 5*time.Minute),
		logger: logger,
	}
}

func (h *ExploreHandler) Explore(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var tags []string
	if raw := strings.TrimSpace(r.URL.Query().Get("tags")); raw != "" {
		tags = normalizeTags(strings.Split(raw, ","))
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}

	key := fmt.Sprintf("%s|%s|%d", strings.ToLower(q), strings.Join(tags, ","), page)
	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	lists, err := h.lists.PublicListsPage(q, tags, page*explorePageSize, explorePageSize)
	if err != nil {
		h.logger.Error("explore query", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if lists == nil {
		lists = []model.List{}
	}

	result := map[string]any{
		"lists":     lists,
		"page":      page,
		"page_size": explorePageSize,
	}
	h.cache.Set(key, result, cache.DefaultExpiration)
	writeJSON(w, http.StatusOK, result)
}
