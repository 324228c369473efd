package server

// Route path constants
const (
	RouteIndex = "/"

	// Magic link login
	RouteLoginSignup  = "/magic-links/login-signup"
	RouteAuthenticate = "/authenticate"
	RouteLogout       = "/logout"

	// Organizations
	RouteOrganizationCreate = "/organizations/create"
	RouteOrganizationSelect = "/organizations/select/{organizationId}"
	RouteOrganizationSwitch = "/organizations/switch"
	RouteOrganizationJIT    = "/organizations/jit"
	RouteOrganizationBySlug = "/orgs/{slug}"
)

// Request parameter names
const (
	paramEmail          = "email"
	paramOrganizationID = "organizationId"
	paramTokenType      = "stytch_token_type"
	paramToken          = "token"
	paramOrgName        = "orgName"
	paramOrgSlug        = "orgSlug"
	paramSlug           = "slug"
)
