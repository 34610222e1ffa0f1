package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DukeRupert/storyshelf/internal/auth"
	"github.com/DukeRupert/storyshelf/internal/csrf"
	"github.com/DukeRupert/storyshelf/internal/domain"
)

// StoryEditor is the part of the story API the create and edit forms use.
type StoryEditor interface {
	GetStory(ctx context.Context, id int64) (domain.Story, error)
	CreateStory(ctx context.Context, token string, in domain.StoryInput) error
	UpdateStory(ctx context.Context, token string, id int64, in domain.StoryInput) error
}

// StoryFormPageData contains data for the story create/edit form.
type StoryFormPageData struct {
	Title       string
	CurrentPath string
	Action      string            // form action URL
	IsEdit      bool              // true for edit, false for create
	StoryID     int64             // story being edited (0 for create)
	Form        map[string]string // Form field values
	Errors      map[string]string // Field-level validation errors
	Flash       *Flash
	CSRFToken   string
}

// StoryFormHandler serves the create and edit forms.
type StoryFormHandler struct {
	stories  StoryEditor
	creds    auth.CredentialProvider
	renderer *Renderer
	logger   *slog.Logger
}

// NewStoryFormHandler creates a new StoryFormHandler.
func NewStoryFormHandler(stories StoryEditor, creds auth.CredentialProvider, renderer *Renderer, logger *slog.Logger) *StoryFormHandler {
	return &StoryFormHandler{
		stories:  stories,
		creds:    creds,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the form routes.
func (h *StoryFormHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /stories/new", h.New)
	mux.HandleFunc("POST /stories", h.Create)
	mux.HandleFunc("GET /stories/{id}/edit", h.Edit)
	mux.HandleFunc("POST /stories/{id}", h.Update)
}

// =============================================================================
// GET /stories/new - Create Form
// =============================================================================

// New renders an empty create form.
func (h *StoryFormHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, StoryFormPageData{
		Title:  "New story",
		Action: storiesPath,
		Form:   map[string]string{},
	})
}

// =============================================================================
// POST /stories - Create Story
// =============================================================================

// Create validates the form and creates the story through the API.
func (h *StoryFormHandler) Create(w http.ResponseWriter, r *http.Request) {
	data := StoryFormPageData{
		Title:  "New story",
		Action: storiesPath,
	}
	h.submit(w, r, data, func(ctx context.Context, token string, in domain.StoryInput) error {
		return h.stories.CreateStory(ctx, token, in)
	})
}

// =============================================================================
// GET /stories/{id}/edit - Edit Form
// =============================================================================

// Edit loads the story and renders the edit form.
func (h *StoryFormHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.storyID(w, r)
	if !ok {
		return
	}

	story, err := h.stories.GetStory(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	categories := make([]string, 0, len(story.Categories))
	for _, c := range story.Categories {
		categories = append(categories, c.Name)
	}

	h.renderForm(w, r, http.StatusOK, StoryFormPageData{
		Title:   "Edit story",
		Action:  storyURL(id),
		IsEdit:  true,
		StoryID: id,
		Form: map[string]string{
			"name":       story.Name,
			"author":     story.Author.FullName,
			"categories": strings.Join(categories, ", "),
		},
	})
}

// =============================================================================
// POST /stories/{id} - Update Story
// =============================================================================

// Update validates the form and updates the story through the API.
func (h *StoryFormHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.storyID(w, r)
	if !ok {
		return
	}

	data := StoryFormPageData{
		Title:   "Edit story",
		Action:  storyURL(id),
		IsEdit:  true,
		StoryID: id,
	}
	h.submit(w, r, data, func(ctx context.Context, token string, in domain.StoryInput) error {
		return h.stories.UpdateStory(ctx, token, id, in)
	})
}

// =============================================================================
// Helpers
// =============================================================================

// submit runs the shared create/update flow: parse, validate, send with
// the admin credential, then redirect back to the list.
func (h *StoryFormHandler) submit(w http.ResponseWriter, r *http.Request, data StoryFormPageData, send func(context.Context, string, domain.StoryInput) error) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		data.Form = map[string]string{}
		data.Flash = &Flash{Type: "error", Message: "Invalid form submission."}
		h.renderForm(w, r, http.StatusBadRequest, data)
		return
	}

	in := domain.StoryInput{
		Name:       strings.TrimSpace(r.FormValue("name")),
		AuthorName: strings.TrimSpace(r.FormValue("author")),
		Categories: domain.ParseCategoryList(r.FormValue("categories")),
	}
	data.Form = map[string]string{
		"name":       in.Name,
		"author":     in.AuthorName,
		"categories": strings.Join(in.Categories, ", "),
	}

	if err := in.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			data.Errors = ve.Fields
		}
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	token, err := h.creds.Token(r.Context())
	if err != nil {
		data.Flash = &Flash{Type: "error", Message: domain.ErrorMessage(err)}
		h.renderForm(w, r, http.StatusUnauthorized, data)
		return
	}

	if err := send(r.Context(), token, in); err != nil {
		h.logger.Error("failed to save story", "story_id", data.StoryID, "error", err)
		data.Flash = &Flash{Type: "error", Message: domain.ErrorMessage(err)}
		h.renderForm(w, r, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), data)
		return
	}

	h.logger.Info("story saved", "story_id", data.StoryID, "name", in.Name, "edit", data.IsEdit)
	http.Redirect(w, r, storiesPath, http.StatusSeeOther)
}

func (h *StoryFormHandler) storyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(w, r, h.logger, domain.Invalid("StoryFormHandler", "Invalid story ID"))
		return 0, false
	}
	return id, true
}

func (h *StoryFormHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data StoryFormPageData) {
	data.CurrentPath = r.URL.Path
	data.CSRFToken = csrf.Token(r.Context())
	h.renderer.RenderHTTP(w, status, "admin/story_form", data)
}

func storyURL(id int64) string {
	return storiesPath + "/" + strconv.FormatInt(id, 10)
}
