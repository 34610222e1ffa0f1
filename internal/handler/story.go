// Package handler contains the HTTP handlers of the admin console and the
// reader site.
//
// This file implements the admin story list: the page itself, htmx page
// navigation and the delete confirmation flow.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/DukeRupert/storyshelf/internal/csrf"
	"github.com/DukeRupert/storyshelf/internal/domain"
	"github.com/DukeRupert/storyshelf/internal/media"
	"github.com/DukeRupert/storyshelf/internal/middleware"
	"github.com/DukeRupert/storyshelf/internal/pagination"
	"github.com/DukeRupert/storyshelf/internal/storylist"
	"github.com/DukeRupert/storyshelf/internal/templ/components/loader"
	pagecontrol "github.com/DukeRupert/storyshelf/internal/templ/components/pagination"
)

const (
	storiesPath = "/stories"

	// storyListID is the element htmx swaps on navigation and deletes.
	storyListID = "story-list"
	loaderID    = "story-loader"
)

// =============================================================================
// Template Data Types
// =============================================================================

// Flash is a one-shot message shown above the list.
type Flash struct {
	Type    string // "success", "error", or "info"
	Message string
}

// StoryRow is one rendered row of the story table.
type StoryRow struct {
	ID         int64
	Name       string
	Author     string
	Categories string
	PictureURL string
	ThumbURL   string
	PictureAlt string
}

// StoryListData is the data of the swappable story list region.
type StoryListData struct {
	ID         string
	Rows       []StoryRow
	Snapshot   storylist.Snapshot
	Pagination templ.Component
	Loader     templ.Component
	LoaderID   string
	Flash      *Flash
	CSRFToken  string
}

// StoryListPageData is the data of the full story list page.
type StoryListPageData struct {
	Title       string
	CurrentPath string
	CSRFToken   string
	List        StoryListData
}

// =============================================================================
// Handler Configuration
// =============================================================================

// StoryHandler serves the admin story list.
type StoryHandler struct {
	renderer *Renderer
	pictures *media.Resolver
	logger   *slog.Logger
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(renderer *Renderer, pictures *media.Resolver, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		renderer: renderer,
		pictures: pictures,
		logger:   logger,
	}
}

// RegisterRoutes registers the story list routes. console must attach the
// browser's storylist.List to the request context.
//
// Routes registered:
// - GET  /stories                 -> List
// - GET  /stories/nav             -> Navigate
// - POST /stories/{id}/delete     -> OpenDelete
// - POST /stories/delete/confirm  -> ConfirmDelete
// - POST /stories/delete/cancel   -> CancelDelete
func (h *StoryHandler) RegisterRoutes(mux *http.ServeMux, console func(http.Handler) http.Handler) {
	mux.Handle("GET /stories", console(http.HandlerFunc(h.List)))
	mux.Handle("GET /stories/nav", console(http.HandlerFunc(h.Navigate)))
	mux.Handle("POST /stories/{id}/delete", console(http.HandlerFunc(h.OpenDelete)))
	mux.Handle("POST /stories/delete/confirm", console(http.HandlerFunc(h.ConfirmDelete)))
	mux.Handle("POST /stories/delete/cancel", console(http.HandlerFunc(h.CancelDelete)))
}

// =============================================================================
// GET /stories - Story List
// =============================================================================

// List mounts the list on the page named by the ?page= query parameter and
// renders it. htmx requests get the list region only.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, ok := h.list(w, r)
	if !ok {
		return
	}

	page := pagination.ParsePage(r.URL.Query().Get("page"))
	// A failed load is logged by the list and shown from its snapshot.
	_ = list.Mount(r.Context(), page)

	h.render(w, r, list, nil)
}

// =============================================================================
// GET /stories/nav?to=prev|next|N&from=M - Page Navigation
// =============================================================================

// Navigate moves the list to another page, starting from the page the
// control was rendered for (?from=). When the page changes, the new deep
// link is pushed to the browser with HX-Push-Url.
func (h *StoryHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	list, ok := h.list(w, r)
	if !ok {
		return
	}
	if !h.resume(w, r, list, r.URL.Query().Get("from")) {
		return
	}

	push := storylist.PageSyncFunc(func(page int) {
		w.Header().Set("HX-Push-Url", pageURL(page))
	})

	ctx := r.Context()
	switch to := r.URL.Query().Get("to"); to {
	case "prev":
		list.Previous(ctx, push)
	case "next":
		list.Next(ctx, push)
	default:
		page, err := strconv.Atoi(to)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("StoryHandler.Navigate", "Invalid page"))
			return
		}
		list.GoTo(ctx, push, page)
	}

	if !middleware.IsHTMX(r) {
		http.Redirect(w, r, pageURL(list.CurrentPage()), http.StatusSeeOther)
		return
	}
	h.render(w, r, list, nil)
}

// =============================================================================
// Delete confirmation
// =============================================================================

// OpenDelete opens the confirmation dialog for a story of the current page.
func (h *StoryHandler) OpenDelete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.list(w, r)
	if !ok {
		return
	}
	if !h.resume(w, r, list, r.FormValue("page")) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(w, r, h.logger, domain.Invalid("StoryHandler.OpenDelete", "Invalid story ID"))
		return
	}

	var flash *Flash
	if err := list.OpenDeleteDialog(id); err != nil {
		flash = &Flash{Type: "error", Message: "That story is no longer on this page."}
	}
	h.respond(w, r, list, flash)
}

// ConfirmDelete deletes the story of the open dialog. A failure keeps the
// dialog open and shows the error inside it.
func (h *StoryHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.list(w, r)
	if !ok {
		return
	}
	if !h.resume(w, r, list, r.FormValue("page")) {
		return
	}

	name := list.Snapshot().Dialog.StoryName

	var flash *Flash
	if err := list.ConfirmDelete(r.Context()); err == nil {
		flash = &Flash{Type: "success", Message: "Deleted " + name + "."}
	}
	h.respond(w, r, list, flash)
}

// CancelDelete closes the dialog.
func (h *StoryHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.list(w, r)
	if !ok {
		return
	}
	if !h.resume(w, r, list, r.FormValue("page")) {
		return
	}
	list.CancelDelete()
	h.respond(w, r, list, nil)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *StoryHandler) list(w http.ResponseWriter, r *http.Request) (*storylist.List, bool) {
	list := storylist.FromContext(r.Context())
	if list == nil {
		h.logger.Error("story handler called without console session", "path", r.URL.Path)
		InternalErrorResponse(w, r, h.logger, domain.Errorf(domain.EINTERNAL, "StoryHandler", "no console session"))
		return nil, false
	}
	return list, true
}

// resume moves the list back to the page the submitting view showed. An
// empty value keeps the list where it is.
func (h *StoryHandler) resume(w http.ResponseWriter, r *http.Request, list *storylist.List, raw string) bool {
	if raw == "" {
		return true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		ErrorResponse(w, r, h.logger, domain.Invalid("StoryHandler.resume", "Invalid page"))
		return false
	}
	// A failed load is logged by the list and shown from its snapshot.
	_ = list.Resume(r.Context(), page)
	return true
}

// respond answers a state-changing request: htmx gets the list region,
// plain form posts are redirected back to the list.
func (h *StoryHandler) respond(w http.ResponseWriter, r *http.Request, list *storylist.List, flash *Flash) {
	if !middleware.IsHTMX(r) {
		http.Redirect(w, r, pageURL(list.CurrentPage()), http.StatusSeeOther)
		return
	}
	h.render(w, r, list, flash)
}

func (h *StoryHandler) render(w http.ResponseWriter, r *http.Request, list *storylist.List, flash *Flash) {
	token := csrf.Token(r.Context())
	data := h.listData(r.Context(), list.Snapshot(), flash, token)

	if middleware.IsHTMX(r) {
		h.renderer.RenderPartial(w, "story_list", data)
		return
	}
	h.renderer.RenderHTTP(w, http.StatusOK, "admin/stories", StoryListPageData{
		Title:       "Stories",
		CurrentPath: r.URL.Path,
		CSRFToken:   token,
		List:        data,
	})
}

func (h *StoryHandler) listData(ctx context.Context, snap storylist.Snapshot, flash *Flash, token string) StoryListData {
	rows := make([]StoryRow, 0, len(snap.Stories))
	for _, s := range snap.Stories {
		rows = append(rows, StoryRow{
			ID:         s.ID,
			Name:       s.Name,
			Author:     s.Author.FullName,
			Categories: s.CategoryNames(),
			PictureURL: h.pictures.PictureURL(ctx, s.Picture),
			ThumbURL:   h.pictures.ThumbnailURL(s.Picture),
			PictureAlt: s.PictureAlt(),
		})
	}

	return StoryListData{
		ID:       storyListID,
		Rows:     rows,
		Snapshot: snap,
		Pagination: pagecontrol.Pagination(snap.Pagination, pagecontrol.Config{
			BaseURL:   storiesPath,
			TargetID:  storyListID,
			Indicator: "#" + loaderID,
		}),
		Loader:    loader.Loader(),
		LoaderID:  loaderID,
		Flash:     flash,
		CSRFToken: token,
	}
}

func pageURL(page int) string {
	return storiesPath + "?page=" + strconv.Itoa(page)
}
