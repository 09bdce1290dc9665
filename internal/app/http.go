// Package app wires the HTTP surface: the JSON API under /api and the
// HTML views of the club site.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rutanorte/api/internal/auth"
	"rutanorte/api/internal/club"
	"rutanorte/api/internal/notion"
	"rutanorte/api/internal/web"
)

const sessionCookie = "club_session"

type HTTPServer struct {
	club       *club.Service
	auth       *auth.Service
	views      *web.Renderer
	static     http.Handler
	corsOrigin string
	log        zerolog.Logger
}

func NewHTTPServer(clubSvc *club.Service, authSvc *auth.Service, views *web.Renderer, corsOrigin string, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		club:       clubSvc,
		auth:       authSvc,
		views:      views,
		static:     web.StaticHandler(),
		corsOrigin: corsOrigin,
		log:        log,
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/static/") {
		s.static.ServeHTTP(w, r)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		s.handleAPI(w, r)
		return
	}

	s.handleView(w, r)
}

func (s *HTTPServer) handleAPI(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)
	// parts[0] is "api".
	if len(parts) < 2 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown endpoint", nil)
		return
	}

	switch {
	case r.Method == http.MethodGet && matches(parts, "api", "health"):
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case r.Method == http.MethodGet && matches(parts, "api", "ready"):
		s.handleReady(w, r)

	case r.Method == http.MethodGet && matches(parts, "api", "databases"):
		writeJSON(w, http.StatusOK, map[string]any{
			"results": s.club.ListCollections(r.Context()),
		})

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "databases":
		detail, err := s.club.GetCollection(r.Context(), parts[2])
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)

	case r.Method == http.MethodGet && matches(parts, "api", "miembros"):
		s.handleListRecords(w, r, club.CollectionMembers)

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "miembros":
		s.handleMemberDetail(w, r, parts[2])

	case r.Method == http.MethodGet && matches(parts, "api", "logros"):
		s.handleListRecords(w, r, club.CollectionAchievements)

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "logros":
		s.handleRecordDetail(w, r, parts[2])

	case r.Method == http.MethodGet && matches(parts, "api", "rutas"):
		s.handleListRecords(w, r, club.CollectionRoutes)

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "rutas":
		s.handleRecordDetail(w, r, parts[2])

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "pages":
		s.requireSession(w, r, func() { s.handlePage(w, r, parts[2]) })

	case r.Method == http.MethodGet && len(parts) == 4 && parts[1] == "pages" && parts[3] == "children":
		s.requireSession(w, r, func() { s.handlePageChildren(w, r, parts[2]) })

	case r.Method == http.MethodGet && matches(parts, "api", "private-page"):
		s.requireSession(w, r, func() { s.handlePrivatePage(w, r) })

	case r.Method == http.MethodGet && matches(parts, "api", "auth", "status"):
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": s.auth.Authenticated(r.Context(), sessionToken(r)),
		})

	case r.Method == http.MethodPost && matches(parts, "api", "auth", "login"):
		s.handleAPILogin(w, r)

	case r.Method == http.MethodPost && matches(parts, "api", "auth", "logout"):
		_ = s.auth.Logout(r.Context(), sessionToken(r))
		clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown endpoint", nil)
	}
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"upstream": map[string]any{"status": "ok"},
	}
	if err := s.club.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["upstream"] = map[string]any{"status": "error", "error": err.Error()}
	}
	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleListRecords(w http.ResponseWriter, r *http.Request, key club.CollectionKey) {
	list, err := s.club.ListRecords(r.Context(), key)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleRecordDetail(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.club.GetRecord(r.Context(), id)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *HTTPServer) handleMemberDetail(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.club.GetRecord(r.Context(), id)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	achievements := s.club.MemberAchievements(r.Context(), record)
	if achievements == nil {
		achievements = []club.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member":       record,
		"achievements": achievements,
	})
}

func (s *HTTPServer) handlePage(w http.ResponseWriter, r *http.Request, id string) {
	page, err := s.club.GetPage(r.Context(), id)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *HTTPServer) handlePageChildren(w http.ResponseWriter, r *http.Request, id string) {
	pageSize := notion.MaxPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "page_size must be a positive integer", nil)
			return
		}
		pageSize = n
	}
	cursor := r.URL.Query().Get("start_cursor")

	children, err := s.club.ListChildren(r.Context(), id, pageSize, cursor)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *HTTPServer) handlePrivatePage(w http.ResponseWriter, r *http.Request) {
	view, err := s.club.PrivatePage(r.Context())
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	token, err := s.auth.Login(r.Context(), body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) || errors.Is(err, auth.ErrNotConfigured) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid password", nil)
			return
		}
		s.writeMappedError(w, r, err)
		return
	}
	setSessionCookie(w, token, s.auth.SessionTTL())
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

// requireSession runs the handler only for authenticated requests.
func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request, next func()) {
	if !s.auth.Authenticated(r.Context(), sessionToken(r)) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	next()
}

func (s *HTTPServer) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, code, message, details)
}

// sessionToken extracts the session token, preferring a bearer header
// over the cookie used by the HTML views.
func sessionToken(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", writer.status).
			Int64("duration_ms", time.Since(started).Milliseconds()).
			Msg("request")
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func setCORSHeaders(header http.Header, origin string) {
	if origin == "" {
		return
	}
	header.Set("Access-Control-Allow-Origin", origin)
	header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"error": code,
	}
	if message != "" {
		response["message"] = message
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matches(parts []string, want ...string) bool {
	if len(parts) != len(want) {
		return false
	}
	for i := range want {
		if parts[i] != want[i] {
			return false
		}
	}
	return true
}
