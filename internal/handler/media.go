package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
)

// Thumbnailer renders list thumbnails of story pictures.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, key string) ([]byte, error)
}

// MediaHandler serves story picture thumbnails.
type MediaHandler struct {
	thumbs Thumbnailer
	logger *slog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(thumbs Thumbnailer, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{thumbs: thumbs, logger: logger}
}

// RegisterRoutes registers the media routes.
func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /media/thumb/{key...}", h.Thumbnail)
}

// Thumbnail serves the JPEG thumbnail of the picture stored under key.
func (h *MediaHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	data, err := h.thumbs.Thumbnail(r.Context(), r.PathValue("key"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
