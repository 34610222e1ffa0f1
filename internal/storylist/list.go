// Package storylist holds the state of the admin story list: the current
// page of stories, its pagination counters and the delete confirmation
// dialog.
//
// A List is fed by a StorySource (the story API) and uses a
// loadstate.Tracker so that a slow response for a superseded request is
// discarded instead of overwriting the page the admin navigated to.
package storylist

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/DukeRupert/storyshelf/internal/auth"
	"github.com/DukeRupert/storyshelf/internal/domain"
	"github.com/DukeRupert/storyshelf/internal/loadstate"
	"github.com/DukeRupert/storyshelf/internal/metrics"
	"github.com/DukeRupert/storyshelf/internal/pagination"
)

// StorySource is the subset of the story API the list needs.
type StorySource interface {
	ListStories(ctx context.Context, page int) (domain.StoryPage, error)
	DeleteStory(ctx context.Context, token string, id int64) error
}

// PageSync is notified when navigation changes the current page, so the
// page number can be reflected in the browser URL.
type PageSync interface {
	SyncPage(page int)
}

// PageSyncFunc adapts a function to PageSync.
type PageSyncFunc func(page int)

// SyncPage calls f.
func (f PageSyncFunc) SyncPage(page int) { f(page) }

// DeleteDialog is the confirmation dialog state.
type DeleteDialog struct {
	Open      bool
	StoryID   int64
	StoryName string
	Err       string
}

// List is the story list state of one admin console. Safe for concurrent
// use.
type List struct {
	source StorySource
	creds  auth.CredentialProvider
	logger *slog.Logger
	limits pagination.Limits

	tracker loadstate.Tracker[domain.StoryPage]

	mu          sync.Mutex
	stories     []domain.Story
	perPage     int
	totalPages  int
	totalItems  int
	currentPage int
	dialog      DeleteDialog
}

// New creates an empty list on page 1.
func New(source StorySource, creds auth.CredentialProvider, limits pagination.Limits, logger *slog.Logger) *List {
	return &List{
		source:      source,
		creds:       creds,
		logger:      logger,
		limits:      limits,
		currentPage: 1,
	}
}

// Mount sets the initial page (from the URL) and loads it.
func (l *List) Mount(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.currentPage = page
	l.mu.Unlock()

	return l.Fetch(ctx)
}

// Resume puts the list back on page, the page a view of this console was
// rendered for, and fetches it. It does nothing when the list is already
// there. Several tabs share one console, so each request names its page.
func (l *List) Resume(ctx context.Context, page int) error {
	if page < 1 {
		return nil
	}
	l.mu.Lock()
	if l.currentPage == page {
		l.mu.Unlock()
		return nil
	}
	l.currentPage = page
	l.mu.Unlock()

	return l.Fetch(ctx)
}

// Fetch loads the current page. On failure the previously displayed
// stories and counters are left untouched.
func (l *List) Fetch(ctx context.Context) error {
	// The page is read and the request begun under one lock, so the latest
	// ticket always belongs to the latest page.
	l.mu.Lock()
	page := l.currentPage
	reqCtx, ticket := l.tracker.Begin(ctx)
	l.mu.Unlock()

	result, err := l.source.ListStories(reqCtx, page)
	if err == nil && result.PerPage <= 0 {
		err = domain.Errorf(domain.EUPSTREAM, "storylist.Fetch", "Story API returned per_page %d", result.PerPage)
	}

	if err != nil {
		if !l.tracker.Fail(ticket, err) {
			metrics.StaleResponsesDiscarded.Inc()
			return nil
		}
		l.logger.Error("failed to load stories", "page", page, "error", err)
		return err
	}

	totalPages, err := pagination.TotalPages(result.Total, result.PerPage)
	if err != nil {
		l.tracker.Fail(ticket, err)
		l.logger.Error("story API returned inconsistent counters", "page", page, "error", err)
		return err
	}

	// Succeed and apply under one lock so a newer result can never be
	// applied before an older one.
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.tracker.Succeed(ticket, result) {
		metrics.StaleResponsesDiscarded.Inc()
		l.logger.Debug("discarded stale story page", "page", page)
		return nil
	}
	l.stories = slices.Clone(result.Stories)
	l.perPage = result.PerPage
	l.totalItems = result.Total
	l.totalPages = totalPages
	return nil
}

// Next moves one page forward. See GoTo.
func (l *List) Next(ctx context.Context, ps PageSync) bool {
	return l.navigate(ctx, ps, func(n *pagination.Navigator) (int, bool) { return n.Next() })
}

// Previous moves one page back. See GoTo.
func (l *List) Previous(ctx context.Context, ps PageSync) bool {
	return l.navigate(ctx, ps, func(n *pagination.Navigator) (int, bool) { return n.Previous() })
}

// GoTo moves to page p. Requests outside [1, TotalPages] and requests for
// the current page do nothing and return false. Otherwise ps is told the
// new page exactly once and the page is fetched.
func (l *List) GoTo(ctx context.Context, ps PageSync, p int) bool {
	return l.navigate(ctx, ps, func(n *pagination.Navigator) (int, bool) { return n.GoTo(p) })
}

func (l *List) navigate(ctx context.Context, ps PageSync, move func(*pagination.Navigator) (int, bool)) bool {
	l.mu.Lock()
	nav := pagination.Navigator{Current: l.currentPage, TotalPages: l.totalPages}
	page, changed := move(&nav)
	if changed {
		l.currentPage = page
	}
	l.mu.Unlock()

	if !changed {
		return false
	}
	if ps != nil {
		ps.SyncPage(page)
	}
	_ = l.Fetch(ctx)
	return true
}

// OpenDeleteDialog opens the confirmation dialog for a story on the
// current page.
func (l *List) OpenDeleteDialog(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.stories, func(s domain.Story) bool { return s.ID == id })
	if idx < 0 {
		return domain.NotFound("storylist.OpenDeleteDialog", "story", formatID(id))
	}
	l.dialog = DeleteDialog{Open: true, StoryID: id, StoryName: l.stories[idx].Name}
	return nil
}

// CancelDelete closes the dialog without deleting anything.
func (l *List) CancelDelete() {
	l.mu.Lock()
	l.dialog = DeleteDialog{}
	l.mu.Unlock()
}

// ConfirmDelete deletes the story targeted by the open dialog. On success
// the dialog closes and the current page is fetched again, once. On failure
// the dialog stays open with an error message.
func (l *List) ConfirmDelete(ctx context.Context) error {
	const op = "storylist.ConfirmDelete"

	l.mu.Lock()
	dialog := l.dialog
	l.mu.Unlock()

	if !dialog.Open {
		return domain.Invalid(op, "No story is selected for deletion")
	}

	token, err := l.creds.Token(ctx)
	if err != nil {
		metrics.StoriesDeleted.WithLabelValues("unauthorized").Inc()
		l.logger.Warn("delete without credential", "story_id", dialog.StoryID, "error", err)
		l.setDialogError(dialog.StoryID, domain.ErrorMessage(err))
		return err
	}

	if err := l.source.DeleteStory(ctx, token, dialog.StoryID); err != nil {
		metrics.StoriesDeleted.WithLabelValues("error").Inc()
		l.logger.Error("failed to delete story", "story_id", dialog.StoryID, "error", err)
		l.setDialogError(dialog.StoryID, domain.ErrorMessage(err))
		return err
	}

	metrics.StoriesDeleted.WithLabelValues("ok").Inc()
	l.logger.Info("story deleted", "story_id", dialog.StoryID, "name", dialog.StoryName)

	l.mu.Lock()
	if l.dialog.StoryID == dialog.StoryID {
		l.dialog = DeleteDialog{}
	}
	l.mu.Unlock()

	// The deletion itself succeeded; a failed reload is reported through
	// the snapshot's load error.
	_ = l.Fetch(ctx)
	return nil
}

func (l *List) setDialogError(id int64, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dialog.Open && l.dialog.StoryID == id {
		l.dialog.Err = msg
	}
}

// Snapshot is an immutable copy of the list state for rendering.
type Snapshot struct {
	Stories     []domain.Story
	CurrentPage int
	TotalPages  int
	PerPage     int
	Total       int
	Pagination  pagination.View
	Dialog      DeleteDialog
	Loading     bool
	Loaded      bool
	LoadErr     string
}

// Empty reports whether a load finished and there is nothing to show.
func (s Snapshot) Empty() bool {
	return s.Loaded && len(s.Stories) == 0
}

// Snapshot returns the current state.
func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, _ := l.tracker.State()
	_, loaded := l.tracker.Data()

	s := Snapshot{
		Stories:     slices.Clone(l.stories),
		CurrentPage: l.currentPage,
		TotalPages:  l.totalPages,
		PerPage:     l.perPage,
		Total:       l.totalItems,
		Dialog:      l.dialog,
		Loading:     state == loadstate.Loading,
		Loaded:      loaded,
	}
	if state == loadstate.Failed {
		s.LoadErr = domain.ErrorMessage(l.tracker.Err())
	}

	if l.perPage > 0 {
		// A deletion can shrink the list below the current page.
		current := min(max(l.currentPage, 1), max(l.totalPages, 1))
		view, err := pagination.Build(l.totalItems, l.perPage, current, l.limits)
		if err != nil {
			l.logger.Error("failed to build pagination", "error", err)
		} else {
			s.Pagination = view
		}
	}
	return s
}

// CurrentPage returns the page the list is on.
func (l *List) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPage
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
