// Package pagination computes which page buttons a list shows.
//
// The control renders a leading "start" window, an optional ellipsis and a
// trailing "end" window. All functions here are pure: they take the counts
// reported by the story API and the current page, and return page numbers.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

// Default window sizes used by the story list.
const (
	DefaultLimitTop = 2
	DefaultLimitEnd = 2
)

// Limits configures the size of the start and end windows.
type Limits struct {
	Top int
	End int
}

// DefaultLimits returns the limits the admin console uses.
func DefaultLimits() Limits {
	return Limits{Top: DefaultLimitTop, End: DefaultLimitEnd}
}

// Validate reports whether both windows have a positive size.
func (l Limits) Validate() error {
	if l.Top < 1 {
		return fmt.Errorf("pagination: limitTop must be positive, got %d", l.Top)
	}
	if l.End < 1 {
		return fmt.Errorf("pagination: limitEnd must be positive, got %d", l.End)
	}
	return nil
}

// Window is the set of page numbers the control renders.
type Window struct {
	TotalPages   int
	Start        []int
	End          []int
	ShowEllipsis bool
}

// Pages returns Start followed by End.
func (w Window) Pages() []int {
	pages := make([]int, 0, len(w.Start)+len(w.End))
	pages = append(pages, w.Start...)
	return append(pages, w.End...)
}

// TotalPages returns ceil(total/perPage).
func TotalPages(total, perPage int) (int, error) {
	if perPage <= 0 {
		return 0, fmt.Errorf("pagination: perPage must be positive, got %d", perPage)
	}
	if total < 0 {
		return 0, fmt.Errorf("pagination: total must not be negative, got %d", total)
	}
	return (total + perPage - 1) / perPage, nil
}

// ComputeWindow returns the start and end windows for the current page.
//
// The start window begins at current and runs limitTop pages forward. Once
// current is within limitTop+limitEnd pages of the last page the start window
// is pinned to the block just before the end window, so the last
// limitTop+limitEnd pages are shown contiguously. The end window is always the
// last limitEnd pages. Windows never contain pages below 1 and never overlap.
//
// With one page or fewer the returned window is empty: the control renders
// nothing. Otherwise current must lie in [1, TotalPages].
func ComputeWindow(total, perPage, current, limitTop, limitEnd int) (Window, error) {
	limits := Limits{Top: limitTop, End: limitEnd}
	if err := limits.Validate(); err != nil {
		return Window{}, err
	}

	totalPages, err := TotalPages(total, perPage)
	if err != nil {
		return Window{}, err
	}

	w := Window{TotalPages: totalPages}
	if totalPages <= 1 {
		return w, nil
	}

	if current < 1 || current > totalPages {
		return Window{}, fmt.Errorf("pagination: current page %d outside [1, %d]", current, totalPages)
	}

	endFirst := max(totalPages-limitEnd+1, 1)
	for p := endFirst; p <= totalPages; p++ {
		w.End = append(w.End, p)
	}

	var startFirst, startLast int
	if limitTop+limitEnd >= totalPages-current+1 {
		pinned := totalPages - (limitTop + limitEnd)
		startFirst = pinned + 1
		startLast = pinned + limitTop
	} else {
		startFirst = current
		startLast = current + limitTop - 1
	}
	startFirst = max(startFirst, 1)
	startLast = min(startLast, endFirst-1)

	for p := startFirst; p <= startLast; p++ {
		w.Start = append(w.Start, p)
	}

	if len(w.Start) > 0 {
		w.ShowEllipsis = w.End[0]-w.Start[len(w.Start)-1] > 1
	}

	return w, nil
}

// ParsePage parses a page query parameter. Missing, malformed or
// non-positive values yield page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
