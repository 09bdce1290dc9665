// Package web renders the HTML views of the club site.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

// SafeHTML marks pre-rendered block HTML as safe for templates. Only
// output of the block renderer goes through here; it escapes on its
// own.
func SafeHTML(s interface{}) template.HTML {
	switch v := s.(type) {
	case string:
		return template.HTML(v)
	case template.HTML:
		return v
	default:
		return template.HTML("")
	}
}

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds the parsed view templates.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"safeHTML": SafeHTML,
	}
	t, err := template.New("web").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) render(w io.Writer, name string, data interface{}) error {
	if err := r.t.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

func (r *Renderer) Home(w io.Writer, data HomeData) error {
	return r.render(w, "home.html", data)
}

func (r *Renderer) Members(w io.Writer, data MembersData) error {
	return r.render(w, "members.html", data)
}

func (r *Renderer) MemberProfile(w io.Writer, data MemberProfileData) error {
	return r.render(w, "member.html", data)
}

func (r *Renderer) Achievements(w io.Writer, data AchievementsData) error {
	return r.render(w, "achievements.html", data)
}

func (r *Renderer) Routes(w io.Writer, data RoutesData) error {
	return r.render(w, "routes.html", data)
}

func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.render(w, "page.html", data)
}

func (r *Renderer) Login(w io.Writer, data LoginData) error {
	return r.render(w, "login.html", data)
}
