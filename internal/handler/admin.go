package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/handfistface/ListPoint/internal/store"
)

type AdminHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewAdminHandler(us *store.UserStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{users: us, logger: logger}
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// SetAdmin grants or revokes another user's admin flag. The system account
// is off limits.
func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("admin lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if u.Username == store.SystemUsername {
		writeError(w, http.StatusBadRequest, "cannot change this user")
		return
	}

	if err := h.users.SetAdmin(userID, req.IsAdmin); err != nil {
		h.logger.Error("set admin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "is_admin": req.IsAdmin})
}
