package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/DukeRupert/storyshelf/internal/domain"
	"github.com/DukeRupert/storyshelf/internal/metrics"
	"github.com/DukeRupert/storyshelf/internal/storage"
	"github.com/disintegration/imaging"
)

const (
	// ThumbnailSize is the edge of the square box thumbnails fit in.
	ThumbnailSize = 64

	ThumbnailJPEGQuality = 85

	// maxSourceBytes bounds how much of an original picture is decoded.
	maxSourceBytes = 20 << 20
)

// Thumbnailer produces list thumbnails from stored pictures and caches them
// back into the store.
type Thumbnailer struct {
	store  storage.Storage
	size   int
	logger *slog.Logger
}

// NewThumbnailer creates a Thumbnailer producing size x size JPEGs from store.
func NewThumbnailer(store storage.Storage, size int, logger *slog.Logger) *Thumbnailer {
	if size <= 0 {
		size = ThumbnailSize
	}
	return &Thumbnailer{store: store, size: size, logger: logger}
}

// Thumbnail returns the JPEG thumbnail of the picture at key.
func (t *Thumbnailer) Thumbnail(ctx context.Context, key string) ([]byte, error) {
	const op = "media.Thumbnail"

	key, err := storage.CleanKey(key)
	if err != nil {
		return nil, domain.Invalid(op, "invalid picture path")
	}
	cacheKey := storage.ThumbnailKey(key, t.size)

	if cached, err := t.read(ctx, cacheKey); err == nil {
		metrics.ThumbnailsGenerated.WithLabelValues("cached").Inc()
		return cached, nil
	}

	rc, info, err := t.store.Get(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, domain.NotFound(op, "picture", key)
		}
		metrics.ThumbnailsGenerated.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, op, "failed to read picture")
	}
	defer rc.Close()

	if info.ContentType != "" && !storage.IsThumbnailable(info.ContentType) {
		return nil, domain.Invalid(op, "picture format cannot be thumbnailed")
	}

	out, err := t.render(io.LimitReader(rc, maxSourceBytes))
	if err != nil {
		metrics.ThumbnailsGenerated.WithLabelValues("error").Inc()
		t.logger.Warn("thumbnail generation failed", "key", key, "error", err)
		return nil, domain.Invalid(op, "picture could not be decoded")
	}
	metrics.ThumbnailsGenerated.WithLabelValues("generated").Inc()

	if err := t.store.Put(ctx, cacheKey, bytes.NewReader(out), storage.PutOptions{
		ContentType: "image/jpeg",
		Overwrite:   true,
	}); err != nil {
		t.logger.Warn("failed to cache thumbnail", "key", cacheKey, "error", err)
	}
	return out, nil
}

func (t *Thumbnailer) read(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := t.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// render fits the image in a size x size box, keeping the aspect ratio.
func (t *Thumbnailer) render(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(img, t.size, t.size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
