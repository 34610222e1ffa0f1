// Package web embeds the HTML templates and static assets of both servers.
package web

import (
	"embed"
	"io/fs"
)

// FS is the embedded web directory tree.
//
//go:embed templates static
var FS embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS {
	return mustSub("templates")
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	return mustSub("static")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
