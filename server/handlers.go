package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-frontdoor/frontdoor"
	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
	"github.com/rs/zerolog/log"
)

// Landing page states
const (
	stateAnonymous = "anonymous"
	stateLoggedIn  = "logged_in"

	statusEmailSent       = "email_sent"
	statusAlreadyLoggedIn = "already_logged_in"
)

type indexResponse struct {
	State string `json:"state"`
	*frontdoor.Identity
}

type statusResponse struct {
	Status string `json:"status"`
}

// IndexHandler reports who the browser is logged in as (GET /)
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := currentIdentity(r)
		if !identity.Authenticated {
			writeJSON(w, http.StatusOK, indexResponse{State: stateAnonymous})
			return
		}
		writeJSON(w, http.StatusOK, indexResponse{State: stateLoggedIn, Identity: identity})
	}
}

// LoginSignupHandler emails a discovery or organization magic link (POST /magic-links/login-signup)
func (s *Server) LoginSignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentIdentity(r).Authenticated {
			writeJSON(w, http.StatusOK, statusResponse{Status: statusAlreadyLoggedIn})
			return
		}

		if err := r.ParseForm(); err != nil {
			writeJSONError(w, errorInvalidRequest, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.PostForm.Get(paramEmail)
		if err := s.frontdoor.InitiateLogin(r.Context(), email, r.PostForm.Get(paramOrganizationID)); err != nil {
			writeControllerError(w, r, err)
			return
		}

		log.Info().Str("email", strings.TrimSpace(email)).Msg("Magic link sent")
		writeJSON(w, http.StatusOK, statusResponse{Status: statusEmailSent})
	}
}

// AuthenticateHandler redeems the token the authority redirected back with (GET /authenticate)
func (s *Server) AuthenticateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		token := query.Get(paramToken)
		if token == "" {
			writeControllerError(w, r, apperrors.Kindf(apperrors.ErrValidation, "token not present in request query string"))
			return
		}

		tokenType, err := frontdoor.ParseTokenType(query.Get(paramTokenType))
		if err != nil {
			writeControllerError(w, r, err)
			return
		}

		result, err := s.frontdoor.CompleteAuthentication(r.Context(), browserID(r), tokenType, token)
		if err != nil {
			writeControllerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// CreateOrganizationHandler creates an organization from the discovered identity (POST /organizations/create)
func (s *Server) CreateOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, errorInvalidRequest, "Invalid form data", http.StatusBadRequest)
			return
		}

		_, err := s.frontdoor.CreateOrganization(r.Context(), browserID(r), r.PostForm.Get(paramOrgName), r.PostForm.Get(paramOrgSlug))
		if err != nil {
			writeControllerError(w, r, err)
			return
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// SelectOrganizationHandler scopes the session to an organization (GET /organizations/select/{organizationId})
func (s *Server) SelectOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := s.frontdoor.SelectOrganization(r.Context(), browserID(r), r.PathValue(paramOrganizationID))
		if err != nil {
			writeControllerError(w, r, err)
			return
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// SwitchOrganizationHandler lists the organizations the member may switch to (GET /organizations/switch)
func (s *Server) SwitchOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discovery, err := s.frontdoor.ListSwitchableOrganizations(r.Context(), browserID(r))
		if err != nil {
			writeControllerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, discovery)
	}
}

// OrganizationBySlugHandler switches to the organization with the slug in the path (GET /orgs/{slug})
func (s *Server) OrganizationBySlugHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := s.frontdoor.ResolveOrganizationBySlug(r.Context(), browserID(r), currentIdentity(r), r.PathValue(paramSlug))
		if err != nil {
			writeControllerError(w, r, err)
			return
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// JITPolicyHandler restricts JIT provisioning of the current organization to the member's domain (GET /organizations/jit)
func (s *Server) JITPolicyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.frontdoor.UpdateOrganizationJITPolicy(r.Context(), browserID(r), currentIdentity(r)); err != nil {
			writeControllerError(w, r, err)
			return
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// LogoutHandler forgets the browser's session (GET /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.frontdoor.Logout(r.Context(), browserID(r)); err != nil {
			writeControllerError(w, r, err)
			return
		}
		s.ClearBrowserSessionCookie(w, r)
		redirectSuccess(w, r, RouteIndex)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, errorNotFound, descriptionNotFound, http.StatusNotFound)
	}
}
