package handlers

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/stock-radar/internal/common"
)

// PageHandler serves static assets from the pages directory.
type PageHandler struct {
	logger    *common.Logger
	staticDir string
}

// NewPageHandler creates a page handler rooted at FindPagesDir().
func NewPageHandler(logger *common.Logger) *PageHandler {
	return &PageHandler{
		logger:    logger,
		staticDir: filepath.Join(FindPagesDir(), "static"),
	}
}

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// loadTemplates parses the page templates and their partials.
func loadTemplates(funcs template.FuncMap) *template.Template {
	pagesDir := FindPagesDir()
	templates := template.Must(template.New("pages").Funcs(funcs).ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))
	return templates
}

// StaticFileHandler serves static files (CSS, JS, images).
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	// Remove /static/ prefix from URL path
	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath := filepath.Join(h.staticDir, path)

	// Security: prevent directory traversal
	absStaticDir, _ := filepath.Abs(h.staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absFullPath, absStaticDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
