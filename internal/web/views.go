package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

//go:embed templates/*.html
var templateFS embed.FS

type views struct {
	pages map[string]*template.Template
}

func newViews() (*views, error) {
	funcs := template.FuncMap{
		"datetime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
	}

	v := &views{pages: make(map[string]*template.Template)}
	for _, page := range []string{"index.html", "result.html"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		v.pages[page] = t
	}
	return v, nil
}

func (v *views) render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

type indexPage struct {
	Flashes []Flash
	Recent  []model.RunRecord
}

type resultPage struct {
	Flashes []Flash
	Run     model.RunRecord
}
