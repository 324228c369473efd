package authority

// JIT provisioning policies understood by the authority.
const (
	JITProvisioningRestricted = "RESTRICTED"
	JITProvisioningNotAllowed = "NOT_ALLOWED"
)

// Member is the authority's view of a verified person within one organization.
type Member struct {
	MemberID       string `json:"member_id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email_address"`
	Name           string `json:"name"`
	Status         string `json:"status"`
}

// Organization is a read-only projection of a tenant held by the authority.
type Organization struct {
	OrganizationID       string   `json:"organization_id"`
	Name                 string   `json:"organization_name"`
	Slug                 string   `json:"organization_slug"`
	EmailJITProvisioning string   `json:"email_jit_provisioning"`
	EmailAllowedDomains  []string `json:"email_allowed_domains"`
}

// Membership describes how the verified email relates to a discovered organization.
type Membership struct {
	Type   string  `json:"type"` // active_member, pending_member, invited_member, eligible_to_join_by_email_domain
	Member *Member `json:"member,omitempty"`
}

// DiscoveredOrganization pairs an organization with the caller's eligibility to
// enter it. It is only used to render a choice and is never persisted.
type DiscoveredOrganization struct {
	Organization        Organization `json:"organization"`
	Membership          Membership   `json:"membership"`
	MemberAuthenticated bool         `json:"member_authenticated"`
}

// DiscoveryResult is returned by discovery authentication and listing calls.
// Exactly one of IntermediateCredential or SessionCredential is set by the
// authenticate calls; listing sets neither.
type DiscoveryResult struct {
	IntermediateCredential  string
	SessionCredential       string
	Email                   string
	DiscoveredOrganizations []DiscoveredOrganization
}

// SessionResult carries a (possibly rotated) organization scoped session.
type SessionResult struct {
	SessionCredential string
	Member            Member
	Organization      Organization
}

// OrganizationSettings is the subset of organization settings the front door updates.
type OrganizationSettings struct {
	EmailJITProvisioning string
	EmailAllowedDomains  []string
}
