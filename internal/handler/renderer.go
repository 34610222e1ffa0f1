package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Layouts known to the renderer. Pages under pages/<layout>/ are rendered
// inside layouts/<layout>.html.
var layouts = []string{"admin", "public"}

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "admin" layout for the story console
//   - "public" layout for the reader site
//
// Templates are organized as:
//   - layouts/admin.html, layouts/public.html - base layouts
//   - components/*.html - reusable components (shared across layouts)
//   - partials/*.html - standalone fragments for htmx responses
//   - pages/admin/*.html, pages/public/*.html - pages per layout
type Renderer struct {
	templates map[string]*template.Template
	fsys      fs.FS
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	FS     fs.FS // rooted at the templates directory
	Logger *slog.Logger
	IsDev  bool // reload templates on every render
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.FS == nil {
		return nil, fmt.Errorf("renderer: template filesystem is required")
	}
	r := &Renderer{
		templates: make(map[string]*template.Template),
		fsys:      cfg.FS,
		logger:    cfg.Logger,
		isDev:     cfg.IsDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	templates := make(map[string]*template.Template)

	componentFiles, err := r.glob("components/*.html")
	if err != nil {
		return err
	}
	partialFiles, err := r.glob("partials/*.html")
	if err != nil {
		return err
	}

	// Parse each partial as a standalone template, with the components
	// available to it.
	for _, partial := range partialFiles {
		files := append([]string{partial}, componentFiles...)
		partialTmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(r.fsys, files...)
		if err != nil {
			return fmt.Errorf("failed to parse partial %s: %w", partial, err)
		}
		templates["partial/"+baseName(partial)] = partialTmpl
	}

	for _, layout := range layouts {
		files := []string{"layouts/" + layout + ".html"}
		files = append(files, componentFiles...)
		files = append(files, partialFiles...)

		baseTmpl, err := template.New(layout).Funcs(TemplateFuncs()).ParseFS(r.fsys, files...)
		if err != nil {
			return fmt.Errorf("failed to parse %s layout: %w", layout, err)
		}

		pages, err := r.glob("pages/" + layout + "/*.html")
		if err != nil {
			return err
		}
		for _, page := range pages {
			pageTmpl, err := baseTmpl.Clone()
			if err != nil {
				return fmt.Errorf("failed to clone %s template for %s: %w", layout, page, err)
			}
			pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
			if err != nil {
				return fmt.Errorf("failed to parse page %s: %w", page, err)
			}
			// Store as "admin/stories", "public/home", etc.
			templates[layout+"/"+baseName(page)] = pageTmpl
		}
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	r.logger.Debug("templates loaded", "count", len(templates))
	return nil
}

func (r *Renderer) glob(pattern string) ([]string, error) {
	matches, err := fs.Glob(r.fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	return matches, nil
}

func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// Reload reloads all templates from the filesystem. Useful for development.
func (r *Renderer) Reload() error {
	return r.loadTemplates()
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, execName, err := r.lookup(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, execName, data)
}

// RenderHTTP renders a page with the given status code. The output is
// buffered so a template error never produces a half-written page.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, status int, name string, data any) {
	tmpl, execName, err := r.lookup(name)
	if err != nil {
		r.logger.Error("template lookup failed", "name", name, "error", err)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderPartial renders a partial template (for htmx responses).
// The partial file should contain {{define "name"}}...{{end}} where name matches the file name.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data any) {
	r.RenderHTTP(w, http.StatusOK, "partial/"+name, data)
}

func (r *Renderer) lookup(name string) (*template.Template, string, error) {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return nil, "", fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("template %q not found", name)
	}
	return tmpl, baseTemplateName(name), nil
}

// baseTemplateName determines which template to execute.
func baseTemplateName(name string) string {
	layout, rest, _ := strings.Cut(name, "/")
	if layout == "partial" {
		return rest
	}
	return layout
}

// ListTemplates returns a list of all loaded template names.
// Useful for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
