// Package web embeds the browser front end served at the site root.
package web

import (
	"embed"
	"io/fs"
	"os"
)

// IndexFile is the page served for "/"
const IndexFile = "homePage.html"

//go:embed static
var staticFiles embed.FS

// Assets returns the front-end files. A non-empty dir replaces the embedded
// copy with files read from disk.
func Assets(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(staticFiles, "static")
}
