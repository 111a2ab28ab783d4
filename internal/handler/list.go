package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/handfistface/ListPoint/internal/auth"
	"github.com/handfistface/ListPoint/internal/model"
	"github.com/handfistface/ListPoint/internal/store"
)

type ListHandler struct {
	lists  *store.ListStore
	logger *slog.Logger
}

func NewListHandler(ls *store.ListStore, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: ls, logger: logger}
}

// Index returns the caller's own lists, newest first.
func (h *ListHandler) Index(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list by owner", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// Shared returns lists where the caller is a collaborator.
func (h *ListHandler) Shared(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListByCollaborator(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list by collaborator", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

type createListRequest struct {
	Name       string   `json:"name"`
	IsPublic   bool     `json:"is_public"`
	IsEthereal bool     `json:"is_ethereal"`
	Tags       []string `json:"tags"`
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	lst, err := h.lists.Create(store.CreateListParams{
		Name:       req.Name,
		OwnerID:    auth.UserID(r.Context()),
		IsPublic:   req.IsPublic,
		IsEthereal: req.IsEthereal,
		Tags:       normalizeTags(req.Tags),
	})
	if err != nil {
		h.logger.Error("create list", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, lst)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": lst, "role": role.String()})
}

type updateListRequest struct {
	Name     *string   `json:"name"`
	IsPublic *bool     `json:"is_public"`
	Tags     *[]string `json:"tags"`
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can modify the list")
		return
	}

	var req updateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	upd := store.ListUpdate{IsPublic: req.IsPublic}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		upd.Name = &name
	}
	if req.Tags != nil {
		tags := normalizeTags(*req.Tags)
		upd.Tags = &tags
	}

	updated, err := h.lists.UpdateMeta(lst.ID, upd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can delete the list")
		return
	}
	if err := h.lists.Delete(lst.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Clone duplicates a visible list into the caller's account.
func (h *ListHandler) Clone(w http.ResponseWriter, r *http.Request) {
	lst, _, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	clone, err := h.lists.Clone(lst.ID, auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}

// normalizeTags trims, lowercases, and de-duplicates tag names.
func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
