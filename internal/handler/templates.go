package handler

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Math functions
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},

		// String functions
		"title": func(v interface{}) string {
			s := fmt.Sprint(v)
			return cases.Title(language.Vietnamese).String(s)
		},
		"upper": func(v interface{}) string {
			return cases.Upper(language.Vietnamese).String(fmt.Sprint(v))
		},
		"truncate": func(s string, length int) string {
			if utf8.RuneCountInString(s) <= length {
				return s
			}
			return string([]rune(s)[:length]) + "..."
		},
		"join": func(items []string, sep string) string {
			return strings.Join(items, sep)
		},

		// Conditional/Logic functions
		"default": func(defaultVal, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},

		// Collection functions
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},

		// templ components embedded in html/template pages
		"render": func(c templ.Component) (template.HTML, error) {
			if c == nil {
				return "", nil
			}
			return templ.ToGoHTML(context.Background(), c)
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`, template.HTMLEscapeString(token)))
		},
	}
}
