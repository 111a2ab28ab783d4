package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/handfistface/ListPoint/internal/store"
)

type SectionHandler struct {
	lists *store.ListStore
}

func NewSectionHandler(ls *store.ListStore) *SectionHandler {
	return &SectionHandler{lists: ls}
}

func (h *SectionHandler) Index(w http.ResponseWriter, r *http.Request) {
	lst, _, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	sections, err := h.lists.Sections(lst.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sections == nil {
		sections = []string{}
	}
	writeJSON(w, http.StatusOK, sections)
}

type createSectionRequest struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
}

// Create tags an item with a section name. Sections have no existence apart
// from the items carrying them.
func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
		return
	}

	var req createSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id and name are required")
		return
	}

	if err := h.lists.CreateSection(lst.ID, req.ItemID, req.Name); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

type renameSectionRequest struct {
	Name string `json:"name"`
}

func (h *SectionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
		return
	}

	var req renameSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.lists.RenameSection(lst.ID, r.PathValue("name"), req.Name); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Delete untags every item in the section; the items survive.
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanEditItems() {
		writeError(w, http.StatusForbidden, "no edit access to this list")
		return
	}
	if err := h.lists.DeleteSection(lst.ID, r.PathValue("name")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
