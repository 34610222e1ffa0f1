package pagination

// Navigator holds the current page and enforces [1, TotalPages] on every
// move. Requests outside that range are ignored.
type Navigator struct {
	Current    int
	TotalPages int
}

// Next moves one page forward.
func (n *Navigator) Next() (int, bool) {
	return n.GoTo(n.Current + 1)
}

// Previous moves one page back.
func (n *Navigator) Previous() (int, bool) {
	return n.GoTo(n.Current - 1)
}

// GoTo moves to page p. It returns the resulting page and whether the
// current page changed.
func (n *Navigator) GoTo(p int) (int, bool) {
	if p < 1 || p > n.TotalPages || p == n.Current {
		return n.Current, false
	}
	n.Current = p
	return p, true
}
