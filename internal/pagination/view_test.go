package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_HiddenForSinglePage(t *testing.T) {
	for _, total := range []int{0, 1, 10} {
		v, err := Build(total, 10, 1, DefaultLimits())
		require.NoError(t, err)

		assert.False(t, v.Visible())
		assert.Empty(t, v.Items)
		assert.False(t, v.ShowPrevious)
		assert.False(t, v.ShowNext)
	}
}

func TestBuild_LayoutWithEllipsis(t *testing.T) {
	v, err := Build(200, 10, 1, DefaultLimits())
	require.NoError(t, err)

	require.True(t, v.Visible())
	assert.False(t, v.ShowPrevious, "no previous arrow on first page")
	assert.True(t, v.ShowNext)

	want := []Item{
		{Kind: ItemPage, Page: 1, Current: true},
		{Kind: ItemPage, Page: 2},
		{Kind: ItemEllipsis},
		{Kind: ItemPage, Page: 19},
		{Kind: ItemPage, Page: 20},
	}
	assert.Equal(t, want, v.Items)
}

func TestBuild_LastPageHidesNext(t *testing.T) {
	v, err := Build(95, 10, 10, DefaultLimits())
	require.NoError(t, err)

	assert.True(t, v.ShowPrevious)
	assert.False(t, v.ShowNext)
	for _, it := range v.Items {
		assert.False(t, it.IsEllipsis())
	}
}

func TestBuild_ExactlyOneCurrent(t *testing.T) {
	for totalPages := 2; totalPages <= 30; totalPages++ {
		for current := 1; current <= totalPages; current++ {
			v, err := Build(totalPages*7, 7, current, DefaultLimits())
			require.NoError(t, err)
			assert.Equal(t, 1, v.CurrentCount(), "total=%d current=%d", totalPages, current)
		}
	}
}

func TestBuild_PropagatesErrors(t *testing.T) {
	_, err := Build(10, 0, 1, DefaultLimits())
	assert.Error(t, err)

	_, err = Build(100, 10, 1, Limits{})
	assert.Error(t, err)
}

func TestNavigator(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		total    int
		move     func(n *Navigator) (int, bool)
		wantPage int
		wantOK   bool
	}{
		{"next within range", 1, 10, (*Navigator).Next, 2, true},
		{"next on last page ignored", 10, 10, (*Navigator).Next, 10, false},
		{"previous within range", 5, 10, (*Navigator).Previous, 4, true},
		{"previous on first page ignored", 1, 10, (*Navigator).Previous, 1, false},
		{"goto in range", 1, 10, func(n *Navigator) (int, bool) { return n.GoTo(7) }, 7, true},
		{"goto zero ignored", 3, 10, func(n *Navigator) (int, bool) { return n.GoTo(0) }, 3, false},
		{"goto past end ignored", 3, 10, func(n *Navigator) (int, bool) { return n.GoTo(11) }, 3, false},
		{"goto current is not a move", 3, 10, func(n *Navigator) (int, bool) { return n.GoTo(3) }, 3, false},
		{"no pages known yet", 1, 0, (*Navigator).Next, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Navigator{Current: tt.start, TotalPages: tt.total}
			page, ok := tt.move(n)

			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPage, n.Current)
		})
	}
}
