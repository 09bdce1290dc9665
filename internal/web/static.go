package web

import (
	"embed"
	"net/http"
)

//go:embed static/site.css
var staticFS embed.FS

// StaticHandler serves the embedded site assets under /static/.
func StaticHandler() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
