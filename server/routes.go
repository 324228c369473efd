package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.IdentityMiddleware()...))

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteLoginSignup, ChainMiddleware(s.LoginSignupHandler(), s.IdentityMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthenticate, ChainMiddleware(s.AuthenticateHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.BrowserMiddleware()...))

	// ORGANIZATIONS
	s.RegisterRouteHandler("POST "+RouteOrganizationCreate, ChainMiddleware(s.CreateOrganizationHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOrganizationSelect, ChainMiddleware(s.SelectOrganizationHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOrganizationSwitch, ChainMiddleware(s.SwitchOrganizationHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOrganizationJIT, ChainMiddleware(s.JITPolicyHandler(), s.IdentityMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOrganizationBySlug, ChainMiddleware(s.OrganizationBySlugHandler(), s.IdentityMiddleware()...))

	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.StandardMiddleware()...))
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.StandardMiddleware()...))
}
