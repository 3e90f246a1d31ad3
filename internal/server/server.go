package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elpatron68/focustasks/internal/auth"
	"github.com/elpatron68/focustasks/internal/config"
	"github.com/elpatron68/focustasks/internal/export"
	applog "github.com/elpatron68/focustasks/internal/log"
	"github.com/elpatron68/focustasks/internal/slot"
	"github.com/elpatron68/focustasks/internal/tasks"
	"github.com/elpatron68/focustasks/internal/ui"
)

type Server struct {
	userStore auth.UserStore
	mux       *http.ServeMux
	layoutTpl *template.Template
	cfg       *config.Config
	stores    *tasks.Registry
	activity  *ui.ActivityLog
	exporter  *export.Exporter
}

const faviconSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
  <rect rx="12" width="64" height="64" fill="#0f766e"/>
  <path d="M26 44L14 32l4-4 8 8 20-20 4 4-24 24z" fill="#fff"/>
 </svg>`

// NewServer serves tasks from an in-memory slot store with default config.
func NewServer(userStore auth.UserStore) *Server {
	cfg := config.Default()
	return NewServerWithConfig(userStore, cfg, tasks.NewRegistry(slot.NewMemory(), cfg.SlotKey))
}

func NewServerWithConfig(userStore auth.UserStore, cfg *config.Config, stores *tasks.Registry) *Server {
	s := &Server{
		userStore: userStore,
		cfg:       cfg,
		stores:    stores,
		mux:       http.NewServeMux(),
		activity:  ui.NewActivityLog(cfg.UI.ActivityLogMax),
		exporter:  export.New(cfg.UI.Title),
	}
	s.layoutTpl = template.Must(template.New("layout").Funcs(template.FuncMap{
		"plain":          plainTitle,
		"renderMarkdown": renderMarkdown,
	}).Parse(layoutHTML))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /favicon.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(faviconSVG))
	})
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /help", s.handleHelp)
	s.mux.HandleFunc("POST /tasks", s.withCSRF(s.handleAdd))
	s.mux.HandleFunc("POST /tasks/{id}/toggle", s.withCSRF(s.handleToggle))
	s.mux.HandleFunc("POST /tasks/{id}/remove", s.withCSRF(s.handleRemove))
	s.mux.HandleFunc("GET /export/{format}", s.handleExport)

	s.mux.HandleFunc("GET /api/tasks", s.apiList)
	s.mux.HandleFunc("POST /api/tasks", s.withJSON(s.apiAdd))
	s.mux.HandleFunc("POST /api/tasks/{id}/toggle", s.withJSON(s.apiToggle))
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.apiRemove)
}

// Handler wraps the routes in Basic auth; /healthz stays public.
func (s *Server) Handler() http.Handler {
	protected := auth.BasicAuthMiddleware(s.userStore, "focustasks", s.mux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			s.mux.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}

// storeFor returns the authenticated user's store. The auth middleware
// guarantees a username on every protected route.
func (s *Server) storeFor(r *http.Request) (string, *tasks.Store) {
	username, _ := auth.UsernameFromRequest(r)
	return username, s.stores.For(username)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	username, store := s.storeFor(r)
	t, err := tasks.NewTask(r.PostFormValue("title"))
	if err != nil {
		s.setFlash(w, "error", "Please enter a valid task title.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_, err = store.Add(t)
	s.activity.Append(username, "add", err, plainTitle(t.Title))
	s.finishMutation(w, r, "add", err)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	username, store := s.storeFor(r)
	id := r.PathValue("id")
	_, err := store.Toggle(id)
	s.activity.Append(username, "toggle", err, id)
	s.finishMutation(w, r, "toggle", err)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	username, store := s.storeFor(r)
	id := r.PathValue("id")
	_, err := store.Remove(id)
	s.activity.Append(username, "remove", err, id)
	s.finishMutation(w, r, "remove", err)
}

func (s *Server) finishMutation(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		applog.Errorf("%s failed: %v", op, err)
		if errors.Is(err, slot.ErrQuotaExceeded) {
			s.setFlash(w, "error", "Storage is full; the change was not saved.")
		} else {
			s.setFlash(w, "error", "The change could not be saved.")
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, store := s.storeFor(r)
	format := export.Format(r.PathValue("format"))
	out, err := s.exporter.Render(format, store.List())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tasks."+string(format)))
	_, _ = w.Write(out)
}

// withCSRF rejects form posts whose csrf field does not match the cookie.
func (s *Server) withCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(csrfCookie)
		form := r.PostFormValue("csrf")
		if err != nil || c.Value == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(form)) != 1 {
			applog.Warnf("csrf check failed for %s %s", r.Method, r.URL.Path)
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

const csrfCookie = "csrf_token"

// ensureCSRFToken returns the request's CSRF token, issuing a new cookie if
// there is none yet.
func (s *Server) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookie); err == nil && c.Value != "" {
		return c.Value
	}
	token, err := generateCSRFToken()
	if err != nil {
		applog.Warnf("failed to generate CSRF token: %v", err)
		token = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type flash struct{ Type, Text string }

func (s *Server) setFlash(w http.ResponseWriter, typ, text string) {
	if typ == "" {
		typ = "info"
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: url.QueryEscape(typ + "|" + text), Path: "/", MaxAge: 5})
}

// takeFlash reads the flash cookie and clears it.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", MaxAge: -1})
	val, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	typ, text, ok := strings.Cut(val, "|")
	if !ok {
		return &flash{Type: "info", Text: val}
	}
	return &flash{Type: typ, Text: text}
}
