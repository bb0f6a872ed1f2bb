package ui

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// The console's UI posts are plain form submissions, so cross-site request
// forgery is guarded the double-submit way: a random token lives in a
// cookie and every mutating request must echo it back, either as a hidden
// form field or in the X-CSRF-Token header for datastar-driven posts.
const (
	csrfCookieName = "ui_csrf"
	csrfFormField  = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
)

type csrfContextKey struct{}

// EnsureCSRFToken issues the token cookie on first contact and stashes the
// token in the request context for the form renderers.
func (h *Handler) EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfCookie(r)
		if token == "" {
			token = newCSRFToken()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.Production,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCSRF rejects mutating requests whose echoed token does not match
// the cookie. Reads pass through untouched.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie := csrfCookie(r)
		echoed := echoedCSRFToken(r)
		if cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(echoed)) != 1 {
			renderHTML(w, http.StatusForbidden, errorPage("Request Blocked", "The form token is missing or stale. Reload the page and try again."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// echoedCSRFToken pulls the token the client sent back, preferring the
// header over the form field.
func echoedCSRFToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(csrfHeaderName)); v != "" {
		return v
	}
	_ = r.ParseForm()
	return strings.TrimSpace(r.Form.Get(csrfFormField))
}

// csrfField renders the hidden input carried by every mutating form.
func csrfField(r *http.Request) gomponents.Node {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	if token == "" {
		token = csrfCookie(r)
	}
	return html.Input(
		html.Type("hidden"),
		html.Name(csrfFormField),
		html.Value(token),
	)
}

func csrfFieldProvider(r *http.Request) func() gomponents.Node {
	return func() gomponents.Node {
		return csrfField(r)
	}
}

func csrfCookie(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func newCSRFToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
