package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/handfistface/ListPoint/internal/blob"
	"github.com/handfistface/ListPoint/internal/store"
)

// maxThumbnailBytes caps uploads at 5 MiB.
const maxThumbnailBytes = 5 << 20

type ThumbnailHandler struct {
	lists  *store.ListStore
	blobs  *blob.Store
	logger *slog.Logger
}

func NewThumbnailHandler(ls *store.ListStore, bs *blob.Store, logger *slog.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{lists: ls, blobs: bs, logger: logger}
}

// Upload replaces a list's thumbnail. The old object is deleted best-effort
// after the list row points at the new one.
func (h *ThumbnailHandler) Upload(w http.ResponseWriter, r *http.Request) {
	lst, role, ok := loadListWithRole(w, r, h.lists)
	if !ok {
		return
	}
	if !role.CanManage() {
		writeError(w, http.StatusForbidden, "only the owner can change the thumbnail")
		return
	}
	if !h.blobs.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "thumbnail storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxThumbnailBytes)
	if err := r.ParseMultipartForm(maxThumbnailBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !blob.ValidExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	url, err := h.blobs.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.logger.Error("upload thumbnail", "error", err)
		writeError(w, http.StatusBadGateway, "thumbnail upload failed")
		return
	}

	old := lst.ThumbnailURL
	if _, err := h.lists.UpdateMeta(lst.ID, store.ListUpdate{ThumbnailURL: &url}); err != nil {
		writeStoreError(w, err)
		return
	}
	if old != "" {
		if err := h.blobs.Delete(r.Context(), old); err != nil {
			h.logger.Warn("delete old thumbnail", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "thumbnail_url": url})
}
