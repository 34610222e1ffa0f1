// Package loader renders the busy indicator shown while a list request is
// in flight.
package loader

import (
	"context"
	"fmt"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

const (
	buttonClass  = "inline-flex items-center gap-2 px-4 py-2 rounded-md bg-indigo-600 text-white text-sm font-medium opacity-75 cursor-not-allowed"
	spinnerClass = "h-4 w-4 animate-spin rounded-full border-2 border-white border-t-transparent"
)

// Label is the text next to the spinner.
const Label = "Loading..."

// Loader renders a disabled button with a spinning glyph and a label.
func Loader() templ.Component {
	return Styled("")
}

// Styled renders the loader with extra classes merged into the button.
func Styled(class string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<button type="button" class="%s" disabled><span class="%s" role="status" aria-hidden="true"></span><span>%s</span></button>`,
			templ.EscapeString(twmerge.Merge(buttonClass, class)),
			spinnerClass,
			Label,
		)
		return err
	})
}
