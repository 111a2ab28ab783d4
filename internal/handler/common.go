package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/handfistface/ListPoint/internal/access"
	"github.com/handfistface/ListPoint/internal/auth"
	"github.com/handfistface/ListPoint/internal/model"
	"github.com/handfistface/ListPoint/internal/store"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// writeStoreError maps store sentinels to API responses. Anything
// unrecognized is a 500 with a generic message.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrListNotFound):
		writeError(w, http.StatusNotFound, "list not found")
	case errors.Is(err, store.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, store.ErrSectionNotFound):
		writeError(w, http.StatusNotFound, "section not found")
	case errors.Is(err, store.ErrDuplicateItem):
		writeError(w, http.StatusConflict, store.ErrDuplicateItem.Error())
	case errors.Is(err, store.ErrNoOpEdit):
		writeError(w, http.StatusBadRequest, store.ErrNoOpEdit.Error())
	case errors.Is(err, store.ErrNotEthereal):
		writeError(w, http.StatusBadRequest, "list is not ethereal")
	case errors.Is(err, store.ErrOwnerCollaborator):
		writeError(w, http.StatusConflict, store.ErrOwnerCollaborator.Error())
	case errors.Is(err, store.ErrAlreadyCollaborator):
		writeError(w, http.StatusConflict, store.ErrAlreadyCollaborator.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// loadListWithRole fetches a list and classifies the caller against it.
// Lists the caller may not even see report 404 rather than 403, so private
// list ids are not probeable.
func loadListWithRole(w http.ResponseWriter, r *http.Request, lists *store.ListStore) (*model.List, access.Role, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return nil, access.Denied, false
	}
	lst, err := lists.GetByID(id)
	if err != nil {
		writeStoreError(w, err)
		return nil, access.Denied, false
	}
	role := access.Classify(lst, auth.UserID(r.Context()))
	if lst == nil || !role.CanView() {
		writeError(w, http.StatusNotFound, "list not found")
		return nil, access.Denied, false
	}
	return lst, role, true
}
