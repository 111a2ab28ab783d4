package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/handfistface/ListPoint/internal/auth"
	"github.com/handfistface/ListPoint/internal/store"
)

// OriginalHandler serves the template-collection mutations of ethereal
// lists. These reshape what every future restore produces, so they are owner
// only.
type OriginalHandler struct {
	lists        *store.ListStore
	autocomplete *store.AutocompleteStore
	logger       *slog.Logger
}

func NewOriginalHandler(ls *store.ListStore, ac *store.AutocompleteStore, logger *slog.Logger) *OriginalHandler {
	return &OriginalHandler{lists: ls, autocomplete: ac, logger: logger}
}

func (h *OriginalHandler) Add(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can modify the template")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	id, err := h.lists.AddItemToOriginal(lst.ID, req.Text)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.autocomplete.Record(auth.UserID(r.Context()), req.Text); err != nil {
		h.logger.Warn("record autocomplete", "error", err)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "item_id": id})
}

func (h *OriginalHandler) Remove(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can modify the template")
		return
	}
	if err := h.lists.RemoveItemFromOriginal(lst.ID, r.PathValue("item_id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *OriginalHandler) Edit(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can modify the template")
		return
	}

	var req editItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	oldText, err := h.lists.EditItemTextInOriginal(lst.ID, r.PathValue("item_id"), req.Text)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.autocomplete.Replace(auth.UserID(r.Context()), oldText, req.Text); err != nil {
		h.logger.Warn("repair autocomplete", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
