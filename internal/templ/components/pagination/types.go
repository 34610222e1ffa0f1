// Package pagination renders the page-button row for paginated lists.
package pagination

import "strconv"

// Config allows customization of the rendered control.
type Config struct {
	BaseURL   string // list route, e.g. "/stories"
	TargetID  string // htmx target, e.g. "story-list"
	Indicator string // htmx indicator selector, e.g. "#story-loader"
	PushURL   bool   // update the browser URL with hx-push-url
	Class     string // extra classes merged into the <nav>
}

// NavURL is the htmx navigation endpoint for to ("prev", "next" or a page),
// issued from a control rendered for page from.
func (c Config) NavURL(to string, from int) string {
	return c.BaseURL + "/nav?to=" + to + "&from=" + strconv.Itoa(from)
}

// PageURL is the deep link for page.
func (c Config) PageURL(page int) string {
	return c.BaseURL + "?page=" + strconv.Itoa(page)
}
