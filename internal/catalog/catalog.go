// Package catalog holds the reader app's bundled home page data: the list
// of newly updated stories and the category index. The data is embedded in
// the binary, parsed once at startup and never modified.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"slices"
)

//go:embed data/*.json
var dataFS embed.FS

// Category is one entry of the category index.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewStory is one row of the "new stories" section.
type NewStory struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	CategorySlugs []string `json:"categories"`
	LatestChapter int      `json:"latest_chapter"`
	Updated       string   `json:"updated"`
}

// HasCategory reports whether the story is tagged with slug.
func (s NewStory) HasCategory(slug string) bool {
	return slices.Contains(s.CategorySlugs, slug)
}

var (
	newStories []NewStory
	categories []Category
	bySlug     map[string]int
)

func init() {
	if err := load(); err != nil {
		panic(err)
	}
}

func load() error {
	if err := decode("data/categories.json", &categories); err != nil {
		return err
	}
	if err := decode("data/new_stories.json", &newStories); err != nil {
		return err
	}

	bySlug = make(map[string]int, len(categories))
	for i, c := range categories {
		bySlug[c.Slug] = i
	}
	for _, s := range newStories {
		for _, slug := range s.CategorySlugs {
			if _, ok := bySlug[slug]; !ok {
				return fmt.Errorf("catalog: story %d references unknown category %q", s.ID, slug)
			}
		}
	}
	return nil
}

func decode(name string, v any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return nil
}

// NewStories returns the new stories in bundled order.
func NewStories() []NewStory {
	out := make([]NewStory, len(newStories))
	for i, s := range newStories {
		s.CategorySlugs = slices.Clone(s.CategorySlugs)
		out[i] = s
	}
	return out
}

// Categories returns the category index in bundled order.
func Categories() []Category {
	return slices.Clone(categories)
}

// CategoryBySlug looks up a category.
func CategoryBySlug(slug string) (Category, bool) {
	i, ok := bySlug[slug]
	if !ok {
		return Category{}, false
	}
	return categories[i], true
}

// StoriesInCategory returns the new stories tagged with slug, in bundled order.
func StoriesInCategory(slug string) []NewStory {
	var out []NewStory
	for _, s := range NewStories() {
		if s.HasCategory(slug) {
			out = append(out, s)
		}
	}
	return out
}

// CategoryNames resolves the story's category slugs to display names.
func CategoryNames(s NewStory) []string {
	names := make([]string, 0, len(s.CategorySlugs))
	for _, slug := range s.CategorySlugs {
		if c, ok := CategoryBySlug(slug); ok {
			names = append(names, c.Name)
		}
	}
	return names
}
