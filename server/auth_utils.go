package server

import (
	"net/http"

	"github.com/google/uuid"
)

// browserSessionCookieName is the cookie carrying the opaque browser id
const browserSessionCookieName = "frontdoor_session"

// browserIDFromCookie returns the browser id of the request, or "" when the
// cookie is missing or was not issued by this server.
func browserIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(browserSessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) SetBrowserSessionCookie(w http.ResponseWriter, browserID string, r *http.Request) {
	s.setBrowserCookie(w, r, browserID, s.cookieMaxAge)
}

func (s *Server) ClearBrowserSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.setBrowserCookie(w, r, "", -1)
}

func (s *Server) setBrowserCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     browserSessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
