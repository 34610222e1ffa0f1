package pagination

// ItemKind distinguishes page buttons from the ellipsis marker.
type ItemKind int

const (
	ItemPage ItemKind = iota
	ItemEllipsis
)

// Item is one entry of the rendered button row.
type Item struct {
	Kind    ItemKind
	Page    int
	Current bool
}

// IsEllipsis reports whether the item is the non-interactive gap marker.
func (i Item) IsEllipsis() bool {
	return i.Kind == ItemEllipsis
}

// View is everything the pagination control needs to render.
type View struct {
	CurrentPage  int
	TotalPages   int
	PerPage      int
	Total        int
	Items        []Item
	ShowPrevious bool
	ShowNext     bool
}

// Visible reports whether the control renders anything at all.
func (v View) Visible() bool {
	return v.TotalPages > 1
}

// CurrentCount returns how many page items are marked current.
func (v View) CurrentCount() int {
	n := 0
	for _, it := range v.Items {
		if it.Current {
			n++
		}
	}
	return n
}

// Build computes the window for the given counts and lays it out as an
// ordered row: start pages, ellipsis (when there is a gap), end pages.
func Build(total, perPage, current int, limits Limits) (View, error) {
	w, err := ComputeWindow(total, perPage, current, limits.Top, limits.End)
	if err != nil {
		return View{}, err
	}

	v := View{
		CurrentPage: current,
		TotalPages:  w.TotalPages,
		PerPage:     perPage,
		Total:       total,
	}
	if !v.Visible() {
		return v, nil
	}

	v.ShowPrevious = current != 1
	v.ShowNext = current != w.TotalPages

	v.Items = make([]Item, 0, len(w.Start)+len(w.End)+1)
	for _, p := range w.Start {
		v.Items = append(v.Items, Item{Kind: ItemPage, Page: p, Current: p == current})
	}
	if w.ShowEllipsis {
		v.Items = append(v.Items, Item{Kind: ItemEllipsis})
	}
	for _, p := range w.End {
		v.Items = append(v.Items, Item{Kind: ItemPage, Page: p, Current: p == current})
	}

	return v, nil
}
