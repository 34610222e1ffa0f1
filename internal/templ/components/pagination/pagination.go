package pagination

import (
	"context"
	"fmt"
	"io"
	"strconv"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	paging "github.com/DukeRupert/storyshelf/internal/pagination"
)

const (
	navClass     = "flex justify-center mt-6"
	listClass    = "inline-flex items-center gap-1 text-sm"
	buttonClass  = "block px-3 py-1.5 rounded-md border border-gray-300 bg-white text-gray-700 hover:bg-gray-50"
	currentClass = "border-indigo-600 bg-indigo-600 text-white hover:bg-indigo-600 pointer-events-none"
	arrowClass   = "px-2"
	gapClass     = "px-2 py-1.5 text-gray-400 select-none"
)

// Pagination renders v as: previous arrow, start pages, ellipsis, end
// pages, next arrow. It renders nothing when v has a single page.
func Pagination(v paging.View, cfg Config) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !v.Visible() {
			return nil
		}

		var err error
		write := func(format string, args ...any) {
			if err == nil {
				_, err = fmt.Fprintf(w, format, args...)
			}
		}

		write(`<nav class="%s" aria-label="Pagination"><ul class="%s">`,
			templ.EscapeString(twmerge.Merge(navClass, cfg.Class)),
			listClass,
		)

		if v.ShowPrevious {
			write(`<li>%s</li>`, link(cfg, "prev", v.CurrentPage, v.CurrentPage-1, twmerge.Merge(buttonClass, arrowClass), `aria-label="Previous page"`, "&laquo;"))
		}

		for _, it := range v.Items {
			if it.IsEllipsis() {
				write(`<li class="%s" aria-hidden="true">&hellip;</li>`, gapClass)
				continue
			}
			page := strconv.Itoa(it.Page)
			if it.Current {
				write(`<li>%s</li>`, link(cfg, page, v.CurrentPage, it.Page, twmerge.Merge(buttonClass, currentClass), `aria-current="page"`, page))
				continue
			}
			write(`<li>%s</li>`, link(cfg, page, v.CurrentPage, it.Page, buttonClass, "", page))
		}

		if v.ShowNext {
			write(`<li>%s</li>`, link(cfg, "next", v.CurrentPage, v.CurrentPage+1, twmerge.Merge(buttonClass, arrowClass), `aria-label="Next page"`, "&raquo;"))
		}

		write(`</ul></nav>`)
		return err
	})
}

// link builds one navigation anchor. The href keeps the control usable
// without JavaScript; htmx swaps the list in place. from is the page the
// control is rendered for.
func link(cfg Config, to string, from, page int, class, attrs, label string) string {
	s := fmt.Sprintf(`<a href="%s" class="%s"`,
		templ.EscapeString(cfg.PageURL(page)),
		templ.EscapeString(class),
	)
	if cfg.TargetID != "" {
		s += fmt.Sprintf(` hx-get="%s" hx-target="#%s" hx-swap="outerHTML"`,
			templ.EscapeString(cfg.NavURL(to, from)),
			templ.EscapeString(cfg.TargetID),
		)
		if cfg.Indicator != "" {
			s += fmt.Sprintf(` hx-indicator="%s"`, templ.EscapeString(cfg.Indicator))
		}
		if cfg.PushURL {
			s += fmt.Sprintf(` hx-push-url="%s"`, templ.EscapeString(cfg.PageURL(page)))
		}
	}
	if attrs != "" {
		s += " " + attrs
	}
	return s + ">" + label + "</a>"
}
