// Package assets embeds the console UI's static files so the server binary
// ships self-contained.
package assets

import "embed"

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded static file tree, rooted at "static/".
func StaticFS() embed.FS {
	return staticFS
}
