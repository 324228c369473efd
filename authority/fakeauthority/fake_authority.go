package fakeauthority

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-frontdoor/authority"
)

var _ authority.Client = (*FakeAuthority)(nil)

// Method names used for call recording and failure injection
const (
	MethodSendDiscoveryLink               = "SendDiscoveryLink"
	MethodSendOrganizationLink            = "SendOrganizationLink"
	MethodAuthenticateDiscoveryToken      = "AuthenticateDiscoveryToken"
	MethodAuthenticateOAuthDiscoveryToken = "AuthenticateOAuthDiscoveryToken"
	MethodAuthenticateOrganizationToken   = "AuthenticateOrganizationToken"
	MethodAuthenticateSession             = "AuthenticateSession"
	MethodExchangeIntermediateCredential  = "ExchangeIntermediateCredential"
	MethodExchangeSessionForOrganization  = "ExchangeSessionForOrganization"
	MethodListDiscoveredOrganizations     = "ListDiscoveredOrganizations"
	MethodCreateOrganization              = "CreateOrganizationFromIntermediateCredential"
	MethodUpdateOrganizationSettings      = "UpdateOrganizationSettings"
)

// SentLink records a magic link the fake pretended to email.
type SentLink struct {
	Email          string
	OrganizationID string
}

type orgToken struct {
	email          string
	organizationID string
}

// FakeAuthority is an in-memory identity authority. Magic link and discovery
// tokens are single use, session tokens rotate on every authenticate call, and
// intermediate credentials are consumed by a successful exchange.
type FakeAuthority struct {
	lock sync.Mutex

	organizations map[string]*authority.Organization // organizationID -> organization
	members       map[string]map[string]bool         // organizationID -> email -> admin

	discoveryTokens map[string]string   // token -> email
	oauthTokens     map[string]orgToken // token -> email + organization scoped by the OAuth login
	orgTokens       map[string]orgToken // token -> email + organization
	ists            map[string]string   // ist -> email
	sessionTokens   map[string]orgToken // session token -> email + organization

	rotate   bool
	failures map[string]error
	calls    []string
	sent     []SentLink
}

// New creates an empty fake authority that rotates session tokens.
func New() *FakeAuthority {
	return &FakeAuthority{
		organizations:   make(map[string]*authority.Organization),
		members:         make(map[string]map[string]bool),
		discoveryTokens: make(map[string]string),
		oauthTokens:     make(map[string]orgToken),
		orgTokens:       make(map[string]orgToken),
		ists:            make(map[string]string),
		sessionTokens:   make(map[string]orgToken),
		rotate:          true,
		failures:        make(map[string]error),
	}
}

// SetRotation controls whether AuthenticateSession issues a fresh token.
func (f *FakeAuthority) SetRotation(rotate bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.rotate = rotate
}

// AddOrganization registers an organization.
func (f *FakeAuthority) AddOrganization(org authority.Organization) {
	f.lock.Lock()
	defer f.lock.Unlock()
	o := org
	f.organizations[org.OrganizationID] = &o
	if f.members[org.OrganizationID] == nil {
		f.members[org.OrganizationID] = make(map[string]bool)
	}
}

// AddMember adds email to an organization; admins may update organization settings.
func (f *FakeAuthority) AddMember(organizationID, email string, admin bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.members[organizationID] == nil {
		f.members[organizationID] = make(map[string]bool)
	}
	f.members[organizationID][email] = admin
}

// IssueDiscoveryToken returns a single use discovery magic link token for email.
func (f *FakeAuthority) IssueDiscoveryToken(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := uuid.New().String()
	f.discoveryTokens[token] = email
	return token
}

// IssueOAuthDiscoveryToken returns a single use OAuth discovery token whose
// session is scoped to organizationID.
func (f *FakeAuthority) IssueOAuthDiscoveryToken(email, organizationID string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := uuid.New().String()
	f.oauthTokens[token] = orgToken{email: email, organizationID: organizationID}
	return token
}

// IssueOrganizationToken returns a single use organization magic link token.
func (f *FakeAuthority) IssueOrganizationToken(email, organizationID string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := uuid.New().String()
	f.orgTokens[token] = orgToken{email: email, organizationID: organizationID}
	return token
}

// IssueSession returns a valid session token for a member of organizationID.
func (f *FakeAuthority) IssueSession(email, organizationID string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.newSessionLocked(email, organizationID)
}

// IssueIntermediateCredential returns an IST for email.
func (f *FakeAuthority) IssueIntermediateCredential(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	ist := "ist-" + uuid.New().String()
	f.ists[ist] = email
	return ist
}

// RevokeSession invalidates a session token.
func (f *FakeAuthority) RevokeSession(sessionToken string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.sessionTokens, sessionToken)
}

// SessionValid reports whether a session token is currently accepted.
func (f *FakeAuthority) SessionValid(sessionToken string) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	_, ok := f.sessionTokens[sessionToken]
	return ok
}

// Organization returns the stored organization.
func (f *FakeAuthority) Organization(organizationID string) (authority.Organization, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	org, ok := f.organizations[organizationID]
	if !ok {
		return authority.Organization{}, false
	}
	return *org, true
}

// Fail makes every call to method return err until Recover is called.
func (f *FakeAuthority) Fail(method string, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failures[method] = err
}

// Recover clears an injected failure.
func (f *FakeAuthority) Recover(method string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.failures, method)
}

// Calls returns every recorded method call in order.
func (f *FakeAuthority) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times method was called.
func (f *FakeAuthority) CallCount(method string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// SentLinks returns the magic links sent so far.
func (f *FakeAuthority) SentLinks() []SentLink {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]SentLink(nil), f.sent...)
}

// Rejection builds the error the fake returns for refused requests.
func Rejection(statusCode int, errorType, message string) *authority.Error {
	return &authority.Error{
		StatusCode: statusCode,
		RequestID:  "request-" + uuid.New().String(),
		ErrorType:  errorType,
		Message:    message,
		RawBody:    `{"error_type":"` + errorType + `"}`,
	}
}

func (f *FakeAuthority) begin(method string) error {
	f.calls = append(f.calls, method)
	return f.failures[method]
}

func (f *FakeAuthority) SendDiscoveryLink(ctx context.Context, email string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodSendDiscoveryLink); err != nil {
		return err
	}
	f.sent = append(f.sent, SentLink{Email: email})
	return nil
}

func (f *FakeAuthority) SendOrganizationLink(ctx context.Context, email, organizationID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodSendOrganizationLink); err != nil {
		return err
	}
	if _, ok := f.organizations[organizationID]; !ok {
		return Rejection(http.StatusNotFound, "organization_not_found", "organization not found")
	}
	f.sent = append(f.sent, SentLink{Email: email, OrganizationID: organizationID})
	return nil
}

func (f *FakeAuthority) AuthenticateDiscoveryToken(ctx context.Context, token string) (*authority.DiscoveryResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodAuthenticateDiscoveryToken); err != nil {
		return nil, err
	}
	email, ok := f.discoveryTokens[token]
	if !ok {
		return nil, Rejection(http.StatusUnauthorized, "magic_link_not_found", "discovery token not found or already used")
	}
	delete(f.discoveryTokens, token)

	ist := "ist-" + uuid.New().String()
	f.ists[ist] = email
	return &authority.DiscoveryResult{
		IntermediateCredential:  ist,
		Email:                   email,
		DiscoveredOrganizations: f.discoveredLocked(email),
	}, nil
}

func (f *FakeAuthority) AuthenticateOAuthDiscoveryToken(ctx context.Context, token string) (*authority.DiscoveryResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodAuthenticateOAuthDiscoveryToken); err != nil {
		return nil, err
	}
	t, ok := f.oauthTokens[token]
	if !ok {
		return nil, Rejection(http.StatusUnauthorized, "oauth_token_not_found", "oauth token not found or already used")
	}
	delete(f.oauthTokens, token)

	return &authority.DiscoveryResult{
		SessionCredential:       f.newSessionLocked(t.email, t.organizationID),
		Email:                   t.email,
		DiscoveredOrganizations: f.discoveredLocked(t.email),
	}, nil
}

func (f *FakeAuthority) AuthenticateOrganizationToken(ctx context.Context, token string) (*authority.SessionResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodAuthenticateOrganizationToken); err != nil {
		return nil, err
	}
	t, ok := f.orgTokens[token]
	if !ok {
		return nil, Rejection(http.StatusUnauthorized, "magic_link_not_found", "magic link not found or already used")
	}
	delete(f.orgTokens, token)
	return f.sessionResultLocked(f.newSessionLocked(t.email, t.organizationID), t), nil
}

func (f *FakeAuthority) AuthenticateSession(ctx context.Context, sessionToken string) (*authority.SessionResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodAuthenticateSession); err != nil {
		return nil, err
	}
	t, ok := f.sessionTokens[sessionToken]
	if !ok {
		return nil, Rejection(http.StatusNotFound, "session_not_found", "session not found")
	}
	token := sessionToken
	if f.rotate {
		delete(f.sessionTokens, sessionToken)
		token = f.newSessionLocked(t.email, t.organizationID)
	}
	return f.sessionResultLocked(token, t), nil
}

func (f *FakeAuthority) ExchangeIntermediateCredential(ctx context.Context, ist, organizationID string) (*authority.SessionResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodExchangeIntermediateCredential); err != nil {
		return nil, err
	}
	email, ok := f.ists[ist]
	if !ok {
		return nil, Rejection(http.StatusUnauthorized, "intermediate_session_not_found", "intermediate session not found")
	}
	if !f.canJoinLocked(email, organizationID) {
		return nil, Rejection(http.StatusForbidden, "unauthorized_organization", "email may not join organization")
	}
	delete(f.ists, ist)
	f.joinLocked(organizationID, email)

	t := orgToken{email: email, organizationID: organizationID}
	return f.sessionResultLocked(f.newSessionLocked(email, organizationID), t), nil
}

func (f *FakeAuthority) ExchangeSessionForOrganization(ctx context.Context, sessionToken, organizationID string) (*authority.SessionResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodExchangeSessionForOrganization); err != nil {
		return nil, err
	}
	current, ok := f.sessionTokens[sessionToken]
	if !ok {
		return nil, Rejection(http.StatusNotFound, "session_not_found", "session not found")
	}
	if !f.canJoinLocked(current.email, organizationID) {
		return nil, Rejection(http.StatusForbidden, "unauthorized_organization", "member may not switch to organization")
	}
	delete(f.sessionTokens, sessionToken)
	f.joinLocked(organizationID, current.email)

	t := orgToken{email: current.email, organizationID: organizationID}
	return f.sessionResultLocked(f.newSessionLocked(current.email, organizationID), t), nil
}

func (f *FakeAuthority) ListDiscoveredOrganizations(ctx context.Context, sessionToken string) (*authority.DiscoveryResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodListDiscoveredOrganizations); err != nil {
		return nil, err
	}
	t, ok := f.sessionTokens[sessionToken]
	if !ok {
		return nil, Rejection(http.StatusNotFound, "session_not_found", "session not found")
	}
	return &authority.DiscoveryResult{
		Email:                   t.email,
		DiscoveredOrganizations: f.discoveredLocked(t.email),
	}, nil
}

func (f *FakeAuthority) CreateOrganizationFromIntermediateCredential(ctx context.Context, ist, name, slug string) (*authority.SessionResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodCreateOrganization); err != nil {
		return nil, err
	}
	email, ok := f.ists[ist]
	if !ok {
		return nil, Rejection(http.StatusUnauthorized, "intermediate_session_not_found", "intermediate session not found")
	}
	for _, org := range f.organizations {
		if org.Slug == slug {
			return nil, Rejection(http.StatusConflict, "organization_slug_already_used", "slug already used")
		}
	}
	delete(f.ists, ist)

	orgID := "organization-" + uuid.New().String()
	f.organizations[orgID] = &authority.Organization{
		OrganizationID:       orgID,
		Name:                 name,
		Slug:                 slug,
		EmailJITProvisioning: authority.JITProvisioningNotAllowed,
	}
	f.members[orgID] = map[string]bool{email: true}

	t := orgToken{email: email, organizationID: orgID}
	return f.sessionResultLocked(f.newSessionLocked(email, orgID), t), nil
}

func (f *FakeAuthority) UpdateOrganizationSettings(ctx context.Context, organizationID string, settings authority.OrganizationSettings, authCredential string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if err := f.begin(MethodUpdateOrganizationSettings); err != nil {
		return err
	}
	t, ok := f.sessionTokens[authCredential]
	if !ok {
		return Rejection(http.StatusUnauthorized, "session_not_found", "member session not found")
	}
	if t.organizationID != organizationID || !f.members[organizationID][t.email] {
		return Rejection(http.StatusForbidden, "unauthorized_credentials", "member is not permitted to update organization")
	}
	org := f.organizations[organizationID]
	org.EmailJITProvisioning = settings.EmailJITProvisioning
	org.EmailAllowedDomains = append([]string(nil), settings.EmailAllowedDomains...)
	return nil
}

func (f *FakeAuthority) newSessionLocked(email, organizationID string) string {
	token := "session-" + uuid.New().String()
	f.sessionTokens[token] = orgToken{email: email, organizationID: organizationID}
	return token
}

func (f *FakeAuthority) sessionResultLocked(token string, t orgToken) *authority.SessionResult {
	var org authority.Organization
	if o, ok := f.organizations[t.organizationID]; ok {
		org = *o
	}
	return &authority.SessionResult{
		SessionCredential: token,
		Member: authority.Member{
			MemberID:       "member-" + t.organizationID + "-" + t.email,
			OrganizationID: t.organizationID,
			Email:          t.email,
			Name:           strings.Split(t.email, "@")[0],
			Status:         "active",
		},
		Organization: org,
	}
}

// canJoinLocked reports whether email is a member or matches the organization's JIT domains.
func (f *FakeAuthority) canJoinLocked(email, organizationID string) bool {
	org, ok := f.organizations[organizationID]
	if !ok {
		return false
	}
	if _, member := f.members[organizationID][email]; member {
		return true
	}
	return org.EmailJITProvisioning == authority.JITProvisioningRestricted && domainAllowed(email, org.EmailAllowedDomains)
}

// joinLocked records a JIT provisioned member without admin rights.
func (f *FakeAuthority) joinLocked(organizationID, email string) {
	if _, member := f.members[organizationID][email]; !member {
		f.members[organizationID][email] = false
	}
}

func (f *FakeAuthority) discoveredLocked(email string) []authority.DiscoveredOrganization {
	discovered := make([]authority.DiscoveredOrganization, 0)
	for id, org := range f.organizations {
		if _, member := f.members[id][email]; member {
			discovered = append(discovered, authority.DiscoveredOrganization{
				Organization: *org,
				Membership:   authority.Membership{Type: "active_member"},
			})
			continue
		}
		if org.EmailJITProvisioning == authority.JITProvisioningRestricted && domainAllowed(email, org.EmailAllowedDomains) {
			discovered = append(discovered, authority.DiscoveredOrganization{
				Organization: *org,
				Membership:   authority.Membership{Type: "eligible_to_join_by_email_domain"},
			})
		}
	}
	sort.Slice(discovered, func(i, j int) bool {
		return discovered[i].Organization.OrganizationID < discovered[j].Organization.OrganizationID
	})
	return discovered
}

func domainAllowed(email string, domains []string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range domains {
		if strings.ToLower(d) == domain {
			return true
		}
	}
	return false
}
