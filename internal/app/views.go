package app

import (
	"errors"
	"html/template"
	"net/http"

	"rutanorte/api/internal/auth"
	"rutanorte/api/internal/club"
	"rutanorte/api/internal/notion"
	"rutanorte/api/internal/render"
	"rutanorte/api/internal/web"
)

func (s *HTTPServer) handleView(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && len(parts) == 0:
		s.viewHome(w, r)

	case r.Method == http.MethodGet && matches(parts, "miembros"):
		s.viewMembers(w, r)

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "miembros":
		s.viewMemberProfile(w, r, parts[1])

	case r.Method == http.MethodGet && matches(parts, "logros"):
		s.viewAchievements(w, r)

	case r.Method == http.MethodGet && matches(parts, "rutas"):
		s.viewRoutes(w, r)

	case r.Method == http.MethodGet && matches(parts, "normativa"):
		s.requireSessionView(w, r, func() { s.viewPrivatePage(w, r) })

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "pagina":
		s.requireSessionView(w, r, func() { s.viewPage(w, r, parts[1]) })

	case r.Method == http.MethodGet && matches(parts, "login"):
		s.viewLogin(w, r, "")

	case r.Method == http.MethodPost && matches(parts, "login"):
		s.viewLoginSubmit(w, r)

	case r.Method == http.MethodPost && matches(parts, "logout"):
		_ = s.auth.Logout(r.Context(), sessionToken(r))
		clearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		http.NotFound(w, r)
	}
}

// requireSessionView redirects anonymous requests to the login form.
func (s *HTTPServer) requireSessionView(w http.ResponseWriter, r *http.Request, next func()) {
	if !s.auth.Authenticated(r.Context(), sessionToken(r)) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	next()
}

func (s *HTTPServer) authenticated(r *http.Request) bool {
	return s.auth.Authenticated(r.Context(), sessionToken(r))
}

func (s *HTTPServer) viewHome(w http.ResponseWriter, r *http.Request) {
	data := web.HomeData{
		Collections:   s.club.ListCollections(r.Context()),
		Authenticated: s.authenticated(r),
	}
	s.renderView(w, r, func() error { return s.views.Home(w, data) })
}

func (s *HTTPServer) viewMembers(w http.ResponseWriter, r *http.Request) {
	list, err := s.club.ListRecords(r.Context(), club.CollectionMembers)
	if err != nil {
		s.viewError(w, r, err)
		return
	}
	data := web.MembersData{
		Members:       web.NewMemberCards(list.Items),
		Authenticated: s.authenticated(r),
	}
	s.renderView(w, r, func() error { return s.views.Members(w, data) })
}

func (s *HTTPServer) viewMemberProfile(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.club.GetRecord(r.Context(), id)
	if err != nil {
		s.viewError(w, r, err)
		return
	}
	achievements := s.club.MemberAchievements(r.Context(), record)
	data := web.NewMemberProfile(record, achievements)
	data.Authenticated = s.authenticated(r)
	s.renderView(w, r, func() error { return s.views.MemberProfile(w, data) })
}

func (s *HTTPServer) viewAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.club.ListRecords(r.Context(), club.CollectionAchievements)
	if err != nil {
		s.viewError(w, r, err)
		return
	}
	data := web.AchievementsData{
		Achievements:  web.NewAchievementCards(list.Items),
		Authenticated: s.authenticated(r),
	}
	s.renderView(w, r, func() error { return s.views.Achievements(w, data) })
}

func (s *HTTPServer) viewRoutes(w http.ResponseWriter, r *http.Request) {
	list, err := s.club.ListRecords(r.Context(), club.CollectionRoutes)
	if err != nil {
		s.viewError(w, r, err)
		return
	}
	data := web.RoutesData{
		Routes:        web.NewRouteCards(list.Items),
		Authenticated: s.authenticated(r),
	}
	s.renderView(w, r, func() error { return s.views.Routes(w, data) })
}

func (s *HTTPServer) viewPrivatePage(w http.ResponseWriter, r *http.Request) {
	view, err := s.club.PrivatePage(r.Context())
	if err != nil {
		s.viewError(w, r, err)
		return
	}
	data := web.PageData{
		ID:            view.Page.ID,
		Title:         view.Page.Title,
		ContentHTML:   template.HTML(render.RenderBlocks(view.ContentBlocks)),
		ChildPages:    view.ChildPages,
		Authenticated: true,
	}
	s.renderView(w, r, func() error { return s.views.Page(w, data) })
}

func (s *HTTPServer) viewPage(w http.ResponseWriter, r *http.Request, id string) {
	cursor := r.URL.Query().Get("cursor")

	page, err := s.club.GetPage(r.Context(), id)
	if err != nil {
		s.viewError(w, r, err)
		return
	}
	children, err := s.club.ListChildren(r.Context(), id, notion.MaxPageSize, cursor)
	if err != nil {
		s.viewError(w, r, err)
		return
	}

	data := web.PageData{
		ID:            page.ID,
		Title:         page.Title,
		ContentHTML:   template.HTML(render.RenderBlocks(children.ContentBlocks)),
		ChildPages:    children.ChildPages,
		HasMore:       children.HasMore,
		NextCursor:    children.NextCursor,
		Authenticated: true,
	}
	s.renderView(w, r, func() error { return s.views.Page(w, data) })
}

func (s *HTTPServer) viewLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	if s.authenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderView(w, r, func() error { return s.views.Login(w, web.LoginData{Error: errMsg}) })
}

func (s *HTTPServer) viewLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.viewLogin(w, r, "Solicitud inválida")
		return
	}
	token, err := s.auth.Login(r.Context(), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) || errors.Is(err, auth.ErrNotConfigured) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = s.views.Login(w, web.LoginData{Error: "Contraseña incorrecta"})
			return
		}
		s.viewError(w, r, err)
		return
	}
	setSessionCookie(w, token, s.auth.SessionTTL())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *HTTPServer) renderView(w http.ResponseWriter, r *http.Request, renderFn func() error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderFn(); err != nil {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("view render failed")
	}
}

func (s *HTTPServer) viewError(w http.ResponseWriter, r *http.Request, err error) {
	status, _, message, _ := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("view failed")
	}
	http.Error(w, message, status)
}
