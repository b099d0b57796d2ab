package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reid-dashboard/internal/dashboard"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NavItem is one sidebar entry
type NavItem struct {
	Title  string
	URL    string
	Active bool
}

// NavItems are the sidebar entries in display order
var NavItems = []NavItem{
	{Title: "Dashboard", URL: "/"},
	{Title: "Issues", URL: "/tags"},
	{Title: "Queue", URL: "/queue"},
}

// Navigation returns the sidebar with the entry matching path marked active
func Navigation(path string) []NavItem {
	items := make([]NavItem, len(NavItems))
	for i, item := range NavItems {
		item.Active = item.URL == path
		items[i] = item
	}
	return items
}

// PageData contains common data for all pages
type PageData struct {
	Title       string
	CurrentPath string
	Nav         []NavItem
	Toasts      []dashboard.Toast
	Data        any
}

// Renderer handles template rendering
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout and every page template. Each page is parsed
// into its own clone of the layout so the "content" blocks never collide.
func NewRenderer() *Renderer {
	base := template.Must(template.New("").
		Funcs(templateFuncs()).
		ParseFS(templatesFS, "templates/base.html"))

	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	pages := make(map[string]*template.Template, len(names))
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == "base.html" {
			continue
		}
		tmpl := template.Must(base.Clone())
		pages[name] = template.Must(tmpl.ParseFS(templatesFS, path))
	}
	return &Renderer{pages: pages}
}

// Render executes page template name inside the layout
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, page PageData) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %s", name)
	}
	page.CurrentPath = req.URL.Path
	page.Nav = Navigation(req.URL.Path)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", page)
}

// Static serves the embedded stylesheet
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatNumber": formatNumber,
		"formatTime":   formatTime,
		"truncate":     truncate,
		"toneClass":    toneClass,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
	}
}

// formatNumber renders an integer with thousands separators
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Never updated"
	}
	return t.Format("Jan 2, 2006, 3:04 PM")
}

func truncate(n int, s string) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func toneClass(t dashboard.Tone) string {
	switch t {
	case dashboard.ToneRed:
		return "text-red"
	case dashboard.ToneAmber:
		return "text-amber"
	default:
		return "text-green"
	}
}
