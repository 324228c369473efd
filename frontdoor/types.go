package frontdoor

import (
	"github.com/jrsteele09/go-auth-frontdoor/authority"
)

// Identity is the result of resolving a browser's session with the authority.
type Identity struct {
	Authenticated bool                   `json:"authenticated"`
	Member        authority.Member       `json:"member"`
	Organization  authority.Organization `json:"organization"`

	// credential is the session credential the identity was resolved from
	credential string
}

// AnonymousIdentity is returned when the browser holds no valid session.
var AnonymousIdentity = Identity{}

// DiscoveredOrganization is the display projection of an organization the
// verified email may enter.
type DiscoveredOrganization struct {
	OrganizationID      string `json:"organizationId"`
	OrganizationName    string `json:"organizationName"`
	OrganizationSlug    string `json:"organizationSlug,omitempty"`
	MembershipType      string `json:"membershipType,omitempty"`
	MemberAuthenticated bool   `json:"memberAuthenticated"`
}

// Discovery lists the organizations available to a verified email.
type Discovery struct {
	Email         string                   `json:"email"`
	Organizations []DiscoveredOrganization `json:"discoveredOrganizations"`
}

// AuthenticationResult is the outcome of completing a magic link or OAuth login.
// Discovery is set for discovery tokens, Identity for organization scoped ones.
type AuthenticationResult struct {
	TokenType TokenType  `json:"-"`
	State     string     `json:"state"`
	Discovery *Discovery `json:"discovery,omitempty"`
	Identity  *Identity  `json:"identity,omitempty"`
}

// SlugResolution reports whether resolving an organization slug switched organizations.
type SlugResolution struct {
	Switched     bool                   `json:"switched"`
	Organization authority.Organization `json:"organization"`
}

func identityFrom(res *authority.SessionResult) *Identity {
	return &Identity{
		Authenticated: true,
		Member:        res.Member,
		Organization:  res.Organization,
		credential:    res.SessionCredential,
	}
}

func discoveryFrom(email string, discovered []authority.DiscoveredOrganization) *Discovery {
	orgs := make([]DiscoveredOrganization, 0, len(discovered))
	for _, d := range discovered {
		orgs = append(orgs, DiscoveredOrganization{
			OrganizationID:      d.Organization.OrganizationID,
			OrganizationName:    d.Organization.Name,
			OrganizationSlug:    d.Organization.Slug,
			MembershipType:      d.Membership.Type,
			MemberAuthenticated: d.MemberAuthenticated,
		})
	}
	return &Discovery{Email: email, Organizations: orgs}
}
