package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-frontdoor/frontdoor"
	"github.com/jrsteele09/go-auth-frontdoor/internal/utils"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBrowserID stores the browser id taken from the session cookie
	ContextKeyBrowserID ContextKey = "browser_id"
	// ContextKeyIdentity stores the identity resolved for the request
	ContextKeyIdentity ContextKey = "identity"
)

// BrowserSessionMiddleware makes sure the browser carries a session cookie and
// puts its id in the request context. The cookie is re-issued on every
// request so its lifetime slides with the server side record.
func (s *Server) BrowserSessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID := browserIDFromCookie(r)
		if browserID == "" {
			browserID = uuid.New().String()
		}
		s.SetBrowserSessionCookie(w, browserID, r)

		ctx := context.WithValue(r.Context(), ContextKeyBrowserID, browserID)
		next(w, r.WithContext(ctx))
	}
}

// ResolveIdentityMiddleware resolves the browser's identity once per request
// and stores it in the context. It must run after BrowserSessionMiddleware.
func (s *Server) ResolveIdentityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.frontdoor.ResolveCurrentIdentity(r.Context(), browserID(r))
		if err != nil {
			writeControllerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
		next(w, r.WithContext(ctx))
	}
}

func browserID(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeyBrowserID).(string)
	return id
}

func currentIdentity(r *http.Request) *frontdoor.Identity {
	identity, ok := r.Context().Value(ContextKeyIdentity).(*frontdoor.Identity)
	if !ok {
		return utils.Ptr(frontdoor.AnonymousIdentity)
	}
	return identity
}
