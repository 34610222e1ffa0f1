package domain

import (
	"strings"
	"unicode/utf8"
)

// StoryNameMaxLength bounds the story name accepted by the create/edit form.
const StoryNameMaxLength = 255

// Story is a story as reported by the story API. The admin console only
// displays it; the API owns every field.
type Story struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Author     Author     `json:"author"`
	Picture    *Picture   `json:"story_picture"`
	Categories []Category `json:"categories"`
}

// Author is the story author as embedded in the list response.
type Author struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

// Picture is the optional cover picture of a story.
type Picture struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Category is a story category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// CategoryNames joins the category names for the list row.
func (s Story) CategoryNames() string {
	names := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// PictureAlt returns the picture title, or "" when the story has no picture.
func (s Story) PictureAlt() string {
	if s.Picture == nil {
		return ""
	}
	return s.Picture.Title
}

// StoryPage is one page of stories plus the counters the API reports with it.
type StoryPage struct {
	Stories     []Story `json:"data"`
	PerPage     int     `json:"per_page"`
	LastPage    int     `json:"last_page"`
	Total       int     `json:"total"`
	CurrentPage int     `json:"current_page"`
}

// StoryInput holds the fields submitted by the create and edit forms.
type StoryInput struct {
	Name       string   `json:"name"`
	AuthorName string   `json:"author"`
	Categories []string `json:"categories"`
}

// Validate checks the form input before it is sent to the API.
func (in StoryInput) Validate() error {
	fields := make(map[string]string)

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		fields["name"] = "Story name is required"
	case utf8.RuneCountInString(name) > StoryNameMaxLength:
		fields["name"] = "Story name must be 255 characters or fewer"
	}

	if strings.TrimSpace(in.AuthorName) == "" {
		fields["author"] = "Author is required"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Op: "StoryInput.Validate", Fields: fields}
}

// ParseCategoryList splits a comma separated form value into trimmed,
// de-duplicated category names.
func ParseCategoryList(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}
