package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/handfistface/ListPoint/internal/auth"
	"github.com/handfistface/ListPoint/internal/store"
)

type AutocompleteHandler struct {
	autocomplete *store.AutocompleteStore
	logger       *slog.Logger
}

func NewAutocompleteHandler(ac *store.AutocompleteStore, logger *slog.Logger) *AutocompleteHandler {
	return &AutocompleteHandler{autocomplete: ac, logger: logger}
}

// Suggest returns the caller's ranked suggestions for an item-text prefix.
func (h *AutocompleteHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	suggestions, err := h.autocomplete.Suggest(auth.UserID(r.Context()), q)
	if err != nil {
		h.logger.Error("autocomplete", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
