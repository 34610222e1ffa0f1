package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/storyshelf/internal/catalog"
)

// NewStoryItem is one row of the "new stories" section.
type NewStoryItem struct {
	catalog.NewStory
	CategoryNames []string
}

// HomePageData contains data for the reader home page.
type HomePageData struct {
	Title       string
	CurrentPath string
	NewStories  []NewStoryItem
	Categories  []catalog.Category
}

// CategoryPageData contains data for a single category page.
type CategoryPageData struct {
	Title       string
	CurrentPath string
	Category    catalog.Category
	Stories     []NewStoryItem
	Categories  []catalog.Category
}

// ReaderHandler serves the public reader pages from the bundled catalog.
type ReaderHandler struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewReaderHandler creates a new ReaderHandler.
func NewReaderHandler(renderer *Renderer, logger *slog.Logger) *ReaderHandler {
	return &ReaderHandler{renderer: renderer, logger: logger}
}

// RegisterRoutes registers the reader routes.
func (h *ReaderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /categories", h.Categories)
	mux.HandleFunc("GET /categories/{slug}", h.Category)
}

// Home renders the new stories and category sections.
func (h *ReaderHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/home", HomePageData{
		Title:       "Trang chủ",
		CurrentPath: r.URL.Path,
		NewStories:  newStoryItems(catalog.NewStories()),
		Categories:  catalog.Categories(),
	})
}

// Categories renders the category index.
func (h *ReaderHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, http.StatusOK, "public/categories", HomePageData{
		Title:       "Thể loại",
		CurrentPath: r.URL.Path,
		Categories:  catalog.Categories(),
	})
}

// Category renders one category with the new stories tagged with it.
func (h *ReaderHandler) Category(w http.ResponseWriter, r *http.Request) {
	c, ok := catalog.CategoryBySlug(r.PathValue("slug"))
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	h.renderer.RenderHTTP(w, http.StatusOK, "public/category", CategoryPageData{
		Title:       c.Name,
		CurrentPath: r.URL.Path,
		Category:    c,
		Stories:     newStoryItems(catalog.StoriesInCategory(c.Slug)),
		Categories:  catalog.Categories(),
	})
}

func newStoryItems(stories []catalog.NewStory) []NewStoryItem {
	items := make([]NewStoryItem, 0, len(stories))
	for _, s := range stories {
		items = append(items, NewStoryItem{NewStory: s, CategoryNames: catalog.CategoryNames(s)})
	}
	return items
}
