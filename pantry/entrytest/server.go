// entrytest/server.go
package entrytest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NotFoundPage is the text the library server renders (with 200 OK) when no
// user has the submitted email.
const NotFoundPage = "Пользователь с таким email не найден"

// Post is one request received on the user endpoint.
type Post struct {
	Method      string
	Path        string
	ContentType string
	RawBody     string
	Email       string
}

// IdentityServer stands in for the library server: POST /user redirects
// known emails to /user/{id} and sets a patron cookie; unknown emails get the
// server's 200 error page. Respond replaces that behavior for a test.
type IdentityServer struct {
	*httptest.Server

	mu      sync.Mutex
	users   map[string]string
	posts   []Post
	visits  []string
	cookies []string
	respond http.HandlerFunc
}

// NewIdentityServer starts a server knowing users (email → id). It is closed
// on test cleanup.
func NewIdentityServer(t *testing.T, users map[string]string) *IdentityServer {
	t.Helper()
	s := &IdentityServer{users: make(map[string]string, len(users))}
	for email, id := range users {
		s.users[email] = id
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Post("/user", s.handleUser)
	r.Get("/user/{id}", s.handleUserPage)
	r.Get("/tables", func(w http.ResponseWriter, r *http.Request) {
		s.visit(r)
		_, _ = io.WriteString(w, "librarian tables")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.visit(r)
		http.NotFound(w, r)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Server.Close)
	return s
}

// Respond overrides the POST /user handler. The request is still recorded.
func (s *IdentityServer) Respond(h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = h
}

// RespondStatus makes POST /user answer with status and body.
func (s *IdentityServer) RespondStatus(status int, body string) {
	s.Respond(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// RedirectTo makes POST /user redirect to path (303 See Other).
func (s *IdentityServer) RedirectTo(path string) {
	s.Respond(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	})
}

// Posts returns the requests received on POST /user so far.
func (s *IdentityServer) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Post(nil), s.posts...)
}

// Visits returns the GET paths served so far, in order.
func (s *IdentityServer) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// PatronCookies returns the patron cookie value seen on each user page
// visit ("" when the client sent none).
func (s *IdentityServer) PatronCookies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cookies...)
}

func (s *IdentityServer) handleUser(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))
	email := form.Get("email")

	s.mu.Lock()
	s.posts = append(s.posts, Post{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		RawBody:     string(raw),
		Email:       email,
	})
	respond := s.respond
	id, known := s.users[email]
	s.mu.Unlock()

	if respond != nil {
		respond(w, r)
		return
	}
	if !known {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, NotFoundPage)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "patron", Value: id, Path: "/"})
	http.Redirect(w, r, "/user/"+id, http.StatusFound)
}

func (s *IdentityServer) handleUserPage(w http.ResponseWriter, r *http.Request) {
	s.visit(r)
	cookie := ""
	if c, err := r.Cookie("patron"); err == nil {
		cookie = c.Value
	}
	s.mu.Lock()
	s.cookies = append(s.cookies, cookie)
	s.mu.Unlock()
	_, _ = fmt.Fprintf(w, "user %s", chi.URLParam(r, "id"))
}

func (s *IdentityServer) visit(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, r.URL.Path)
}
