package webui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"busdash.astana.transit/internal/app"
	"busdash.astana.transit/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{"dashboard", "routes", "create"}

var templateFuncs = template.FuncMap{
	"coord": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 5, 64)
	},
}

// WebUI serves the dashboard pages on top of the shared Application.
type WebUI struct {
	*app.Application
	templates   map[string]*template.Template
	debug       *template.Template
	rateLimiter *RateLimitMiddleware
}

// New parses the embedded templates and prepares the middleware.
func New(application *app.Application) (*WebUI, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	debug, err := template.ParseFS(templateFS, "templates/debug.html")
	if err != nil {
		return nil, fmt.Errorf("parse debug template: %w", err)
	}

	return &WebUI{
		Application: application,
		templates:   templates,
		debug:       debug,
		rateLimiter: NewRateLimitMiddleware(application.Config.RateLimit, time.Second),
	}, nil
}

// Handler returns the router wrapped in the middleware chain.
func (ui *WebUI) Handler() http.Handler {
	var handler http.Handler = ui.routes()
	handler = NewCompressionMiddleware(DefaultCompressionConfig())(handler)
	handler = ui.rateLimiter.Handler(handler)
	handler = NewSecurityHeadersMiddleware(ui.Maps.Config().TileURL)(handler)
	handler = NewRequestLoggingMiddleware(ui.Logger)(handler)
	return handler
}

// Close releases background resources held by the middleware.
func (ui *WebUI) Close() {
	ui.rateLimiter.Stop()
}

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return http.FS(sub)
}

// render executes a page into a buffer first so template errors never leave a
// half-written response.
func (ui *WebUI) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := ui.templates[page]
	if !ok {
		ui.serverError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		ui.serverError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to write page", err,
			slog.String("page", page))
	}
}

func (ui *WebUI) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "internal server error", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
