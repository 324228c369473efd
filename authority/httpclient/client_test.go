package httpclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-frontdoor/authority"
	"github.com/jrsteele09/go-auth-frontdoor/authority/httpclient"
	"github.com/stretchr/testify/require"
)

const (
	testProjectID = "project-test-1234"
	testSecret    = "secret-test-1234"
)

// recordedRequest captures what the fake authority received
type recordedRequest struct {
	Method   string
	Path     string
	Body     map[string]any
	User     string
	Password string
	Header   http.Header
}

// newTestAuthority starts an httptest server answering every request with the given status and body
func newTestAuthority(t *testing.T, status int, response string) (*httpclient.Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Header = r.Header.Clone()
		rec.User, rec.Password, _ = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		rec.Body = map[string]any{}
		_ = json.Unmarshal(raw, &rec.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := httpclient.New(srv.URL, testProjectID, testSecret, httpclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, rec
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := httpclient.New("https://test.stytch.com", "", "")
	require.Error(t, err)

	_, err = httpclient.New("not a url", testProjectID, testSecret)
	require.Error(t, err)
}

func TestSendDiscoveryLink(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{"status_code":200,"request_id":"r-1"}`)

	err := c.SendDiscoveryLink(context.Background(), "a@x.com")

	require.NoError(t, err)
	require.Equal(t, http.MethodPost, rec.Method)
	require.Equal(t, "/v1/b2b/magic_links/email/discovery/send", rec.Path)
	require.Equal(t, "a@x.com", rec.Body["email_address"])
	require.NotContains(t, rec.Body, "organization_id")
	require.Equal(t, testProjectID, rec.User)
	require.Equal(t, testSecret, rec.Password)
}

func TestSendOrganizationLink(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{}`)

	err := c.SendOrganizationLink(context.Background(), "a@x.com", "org1")

	require.NoError(t, err)
	require.Equal(t, "/v1/b2b/magic_links/email/login_or_signup", rec.Path)
	require.Equal(t, "org1", rec.Body["organization_id"])
}

func TestAuthenticateDiscoveryToken(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{
		"intermediate_session_token": "IST1",
		"email_address": "a@x.com",
		"discovered_organizations": [
			{"organization": {"organization_id": "org1", "organization_name": "Acme", "organization_slug": "acme"},
			 "membership": {"type": "active_member"}, "member_authenticated": false}
		]
	}`)

	res, err := c.AuthenticateDiscoveryToken(context.Background(), "T1")

	require.NoError(t, err)
	require.Equal(t, "/v1/b2b/magic_links/discovery/authenticate", rec.Path)
	require.Equal(t, "T1", rec.Body["discovery_magic_links_token"])
	require.Equal(t, "IST1", res.IntermediateCredential)
	require.Empty(t, res.SessionCredential)
	require.Equal(t, "a@x.com", res.Email)
	require.Len(t, res.DiscoveredOrganizations, 1)
	require.Equal(t, "org1", res.DiscoveredOrganizations[0].Organization.OrganizationID)
	require.Equal(t, "Acme", res.DiscoveredOrganizations[0].Organization.Name)
	require.Equal(t, "active_member", res.DiscoveredOrganizations[0].Membership.Type)
}

func TestAuthenticateDiscoveryToken_MissingIST(t *testing.T) {
	c, _ := newTestAuthority(t, http.StatusOK, `{"email_address": "a@x.com"}`)

	_, err := c.AuthenticateDiscoveryToken(context.Background(), "T1")

	require.Error(t, err)
	require.True(t, authority.IsUnavailable(err))
	require.False(t, authority.IsRejected(err))
}

func TestAuthenticateOAuthDiscoveryToken(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{
		"session_token": "S1",
		"email_address": "a@x.com",
		"discovered_organizations": []
	}`)

	res, err := c.AuthenticateOAuthDiscoveryToken(context.Background(), "OT1")

	require.NoError(t, err)
	require.Equal(t, "/v1/b2b/oauth/discovery/authenticate", rec.Path)
	require.Equal(t, "OT1", rec.Body["discovery_oauth_token"])
	require.Equal(t, "S1", res.SessionCredential)
	require.Empty(t, res.IntermediateCredential)
}

func TestAuthenticateSession(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{
		"session_token": "S2",
		"member": {"member_id": "m1", "email_address": "a@x.com", "name": "Ann"},
		"organization": {"organization_id": "org1", "organization_name": "Acme", "organization_slug": "acme-slug"}
	}`)

	res, err := c.AuthenticateSession(context.Background(), "S1")

	require.NoError(t, err)
	require.Equal(t, "/v1/b2b/sessions/authenticate", rec.Path)
	require.Equal(t, "S1", rec.Body["session_token"])
	require.Equal(t, "S2", res.SessionCredential)
	require.Equal(t, "m1", res.Member.MemberID)
	require.Equal(t, "acme-slug", res.Organization.Slug)
}

func TestExchangeCalls(t *testing.T) {
	const sessionBody = `{"session_token": "S9", "member": {}, "organization": {"organization_id": "org2"}}`

	t.Run("intermediate credential", func(t *testing.T) {
		c, rec := newTestAuthority(t, http.StatusOK, sessionBody)
		res, err := c.ExchangeIntermediateCredential(context.Background(), "IST1", "org2")
		require.NoError(t, err)
		require.Equal(t, "/v1/b2b/discovery/intermediate_sessions/exchange", rec.Path)
		require.Equal(t, "IST1", rec.Body["intermediate_session_token"])
		require.Equal(t, "org2", rec.Body["organization_id"])
		require.Equal(t, "S9", res.SessionCredential)
	})

	t.Run("session", func(t *testing.T) {
		c, rec := newTestAuthority(t, http.StatusOK, sessionBody)
		res, err := c.ExchangeSessionForOrganization(context.Background(), "S1", "org2")
		require.NoError(t, err)
		require.Equal(t, "/v1/b2b/sessions/exchange", rec.Path)
		require.Equal(t, "S1", rec.Body["session_token"])
		require.Equal(t, "S9", res.SessionCredential)
	})

	t.Run("create organization", func(t *testing.T) {
		c, rec := newTestAuthority(t, http.StatusOK, sessionBody)
		res, err := c.CreateOrganizationFromIntermediateCredential(context.Background(), "IST1", "Acme", "acme")
		require.NoError(t, err)
		require.Equal(t, "/v1/b2b/discovery/organizations/create", rec.Path)
		require.Equal(t, "Acme", rec.Body["organization_name"])
		require.Equal(t, "acme", rec.Body["organization_slug"])
		require.Equal(t, "org2", res.Organization.OrganizationID)
	})
}

func TestListDiscoveredOrganizations(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{
		"email_address": "a@x.com",
		"discovered_organizations": [
			{"organization": {"organization_id": "org1"}},
			{"organization": {"organization_id": "org2"}}
		]
	}`)

	res, err := c.ListDiscoveredOrganizations(context.Background(), "S1")

	require.NoError(t, err)
	require.Equal(t, "/v1/b2b/discovery/organizations", rec.Path)
	require.Len(t, res.DiscoveredOrganizations, 2)
	require.Empty(t, res.SessionCredential)
}

func TestUpdateOrganizationSettings(t *testing.T) {
	c, rec := newTestAuthority(t, http.StatusOK, `{}`)

	err := c.UpdateOrganizationSettings(context.Background(), "org1", authority.OrganizationSettings{
		EmailJITProvisioning: authority.JITProvisioningRestricted,
		EmailAllowedDomains:  []string{"x.com"},
	}, "S1")

	require.NoError(t, err)
	require.Equal(t, http.MethodPut, rec.Method)
	require.Equal(t, "/v1/b2b/organizations/org1", rec.Path)
	require.Equal(t, "S1", rec.Header.Get("X-Stytch-Member-Session"))
	require.Equal(t, "RESTRICTED", rec.Body["email_jit_provisioning"])
	require.Equal(t, []any{"x.com"}, rec.Body["email_allowed_domains"])
}

func TestRejection(t *testing.T) {
	const body = `{"status_code":401,"request_id":"req-1","error_type":"magic_link_not_found","error_message":"The magic link could not be authenticated."}`
	c, _ := newTestAuthority(t, http.StatusUnauthorized, body)

	_, err := c.AuthenticateOrganizationToken(context.Background(), "used-token")

	require.Error(t, err)
	require.True(t, authority.IsRejected(err))
	require.False(t, authority.IsUnavailable(err))

	var apiErr *authority.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "magic_link_not_found", apiErr.ErrorType)
	require.Equal(t, "req-1", apiErr.RequestID)
	require.Equal(t, body, apiErr.RawBody)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	c, _ := newTestAuthority(t, http.StatusBadGateway, `upstream down`)

	err := c.SendDiscoveryLink(context.Background(), "a@x.com")

	require.Error(t, err)
	require.True(t, authority.IsUnavailable(err))

	var apiErr *authority.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "unknown_error", apiErr.ErrorType)
	require.Equal(t, "upstream down", apiErr.RawBody)
}

func TestUndecodableBodyIsUnavailable(t *testing.T) {
	c, _ := newTestAuthority(t, http.StatusOK, `<html>`)

	_, err := c.AuthenticateSession(context.Background(), "S1")

	require.Error(t, err)
	require.True(t, authority.IsUnavailable(err))
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := httpclient.New(url, testProjectID, testSecret)
	require.NoError(t, err)

	err = c.SendDiscoveryLink(context.Background(), "a@x.com")
	require.Error(t, err)
	require.True(t, authority.IsUnavailable(err))
}

func TestClientErrorWithoutAuthorityBodyIsUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "proxy page", status: http.StatusForbidden, body: `<html>blocked by proxy</html>`},
		{name: "wrong base url", status: http.StatusNotFound, body: `{}`},
		{name: "empty body", status: http.StatusUnauthorized, body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestAuthority(t, tt.status, tt.body)

			_, err := c.AuthenticateSession(context.Background(), "S1")

			require.Error(t, err)
			require.True(t, authority.IsUnavailable(err))
			require.False(t, authority.IsRejected(err))

			var apiErr *authority.Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.True(t, apiErr.Unknown)
			require.Equal(t, tt.body, apiErr.RawBody)
		})
	}
}
