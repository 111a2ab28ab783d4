package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/handfistface/ListPoint/internal/auth"
	"github.com/handfistface/ListPoint/internal/store"
)

type ItemHandler struct {
	lists        *store.ListStore
	autocomplete *store.AutocompleteStore
	logger       *slog.Logger
}

func NewItemHandler(ls *store.ListStore, ac *store.AutocompleteStore, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{lists: ls, autocomplete: ac, logger: logger}
}

type addItemRequest struct {
	Text    string `json:"text"`
	Section string `json:"section"`
}

func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
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

	id, err := h.lists.AddItem(lst.ID, req.Text, strings.TrimSpace(req.Section))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.autocomplete.Record(auth.UserID(r.Context()), req.Text); err != nil {
		// The add already happened; a stale suggestion index is tolerable.
		h.logger.Warn("record autocomplete", "error", err)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "item_id": id})
}

func (h *ItemHandler) Remove(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
		return
	}
	if err := h.lists.RemoveItem(lst.ID, r.PathValue("item_id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type editItemRequest struct {
	Text string `json:"text"`
}

func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
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

	oldText, err := h.lists.EditItemText(lst.ID, r.PathValue("item_id"), req.Text)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.autocomplete.Replace(auth.UserID(r.Context()), oldText, req.Text); err != nil {
		h.logger.Warn("repair autocomplete", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

func (h *ItemHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	qty, err := h.lists.AdjustQuantity(lst.ID, r.PathValue("item_id"), req.Delta)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quantity": qty})
}

// Check toggles an item's checked flag. Any viewer of the list may check
// items off, which is what makes shared shopping runs work.
func (h *ItemHandler) Check(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanToggleChecked() {
		writeError(w, http.StatusForbidden, "no access to this list")
		return
	}

	checked, err := h.lists.ToggleChecked(lst.ID, r.PathValue("item_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "checked": checked})
}

type restoreRequest struct {
	Mode string `json:"mode"`
}

// Restore starts a new checklist cycle: mode "full" re-copies the template,
// "reset_checked" just clears checkmarks.
func (h *ItemHandler) Restore(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
		return
	}

	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	var resetOnly bool
	switch req.Mode {
	case "full", "":
		resetOnly = false
	case "reset_checked":
		resetOnly = true
	default:
		writeError(w, http.StatusBadRequest, "mode must be full or reset_checked")
		return
	}

	if err := h.lists.Restore(lst.ID, resetOnly); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
