// Package web holds the embedded HTML templates of the site.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templates embed.FS

// Layout is the template every page is rendered into.
const Layout = "layout"

// Views returns the template engine for fiber.Config.Views.
func Views() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("percent", func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	})
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02 15:04")
	})
	engine.AddFunc("duration", func(seconds int64) string {
		return (time.Duration(seconds) * time.Second).String()
	})
	engine.AddFunc("join", strings.Join)
	return engine
}
