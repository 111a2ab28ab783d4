package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/handfistface/ListPoint/internal/model"
	"github.com/handfistface/ListPoint/internal/store"
)

const userSearchLimit = 10

// userProfile is the public projection of a user: enough for a collaborator
// picker, nothing private.
type userProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func profilesOf(users []model.User) []userProfile {
	out := make([]userProfile, len(users))
	for i, u := range users {
		out[i] = userProfile{ID: u.ID, Username: u.Username}
	}
	return out
}

type CollaboratorHandler struct {
	lists  *store.ListStore
	users  *store.UserStore
	logger *slog.Logger
}

func NewCollaboratorHandler(ls *store.ListStore, us *store.UserStore, logger *slog.Logger) *CollaboratorHandler {
	return &CollaboratorHandler{lists: ls, users: us, logger: logger}
}

// Index returns the list's collaborators as user profiles.
func (h *CollaboratorHandler) Index(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can view collaborators")
		return
	}

	profiles := []userProfile{}
	for _, userID := range lst.Collaborators {
		u, err := h.users.GetByID(userID)
		if err != nil {
			h.logger.Error("resolve collaborator", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if u != nil {
			profiles = append(profiles, userProfile{ID: u.ID, Username: u.Username})
		}
	}
	writeJSON(w, http.StatusOK, profiles)
}

type addCollaboratorRequest struct {
	Username string `json:"username"`
}

func (h *CollaboratorHandler) Add(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can manage collaborators")
		return
	}

	var req addCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Username == store.SystemUsername {
		writeError(w, http.StatusBadRequest, "cannot add this user")
		return
	}

	u, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("collaborator lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.lists.AddCollaborator(lst.ID, u.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user_id": u.ID})
}

func (h *CollaboratorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can manage collaborators")
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.lists.RemoveCollaborator(lst.ID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SearchUsers is the collaborator picker: username prefix lookup.
func (h *CollaboratorHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []userProfile{})
		return
	}

	users, err := h.users.SearchByUsername(q, userSearchLimit)
	if err != nil {
		h.logger.Error("search users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, profilesOf(users))
}
