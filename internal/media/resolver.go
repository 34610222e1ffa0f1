// Package media turns story pictures into URLs the browser can load and
// renders the small cover thumbnails shown in the admin story list.
package media

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/DukeRupert/storyshelf/internal/domain"
	"github.com/DukeRupert/storyshelf/internal/storage"
)

// PlaceholderURL is shown for stories without a usable picture.
const PlaceholderURL = "/static/img/placeholder.svg"

// Resolver maps a story picture to a URL.
type Resolver struct {
	store  storage.Storage
	ttl    time.Duration
	logger *slog.Logger
}

// NewResolver creates a resolver. store may be nil, in which case only
// absolute picture URLs resolve and everything else gets the placeholder.
func NewResolver(store storage.Storage, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, ttl: ttl, logger: logger}
}

// PictureURL returns the URL for p. Missing pictures and storage failures
// resolve to PlaceholderURL.
func (r *Resolver) PictureURL(ctx context.Context, p *domain.Picture) string {
	if p == nil || strings.TrimSpace(p.Path) == "" {
		return PlaceholderURL
	}
	if isAbsoluteURL(p.Path) {
		return p.Path
	}
	if r.store == nil {
		return PlaceholderURL
	}

	u, err := r.store.URL(ctx, p.Path, r.ttl)
	if err != nil {
		r.logger.Warn("failed to resolve picture URL", "path", p.Path, "error", err)
		return PlaceholderURL
	}
	return u
}

// ThumbnailURL returns the route that serves the list thumbnail for p, or
// the placeholder when p has nothing the thumbnailer can read.
func (r *Resolver) ThumbnailURL(p *domain.Picture) string {
	if p == nil || isAbsoluteURL(p.Path) || r.store == nil {
		return r.PictureURL(context.Background(), p)
	}
	key, err := storage.CleanKey(p.Path)
	if err != nil {
		return PlaceholderURL
	}
	return "/media/thumb/" + key
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
