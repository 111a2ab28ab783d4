package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/handfistface/ListPoint/internal/access"
	"github.com/handfistface/ListPoint/internal/auth"
	"github.com/handfistface/ListPoint/internal/model"
	"github.com/handfistface/ListPoint/internal/store"
)

type FavoriteHandler struct {
	favorites *store.FavoriteStore
	lists     *store.ListStore
	logger    *slog.Logger
}

func NewFavoriteHandler(fs *store.FavoriteStore, ls *store.ListStore, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: fs, lists: ls, logger: logger}
}

// Toggle flips the favorite state of a list for the caller and returns the
// new state.
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(r.PathValue("list_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}
	userID := auth.UserID(r.Context())

	lst, err := h.lists.GetByID(listID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !access.Classify(lst, userID).CanView() {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	favorited, err := h.favorites.IsFavorited(userID, listID)
	if err != nil {
		h.logger.Error("check favorite", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if favorited {
		err = h.favorites.Remove(userID, listID)
	} else {
		err = h.favorites.Add(userID, listID)
	}
	if err != nil {
		h.logger.Error("toggle favorite", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "favorited": !favorited})
}

// Index returns the caller's favorited lists.
func (h *FavoriteHandler) Index(w http.ResponseWriter, r *http.Request) {
	lists, err := h.favorites.ListsByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list favorites", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}
