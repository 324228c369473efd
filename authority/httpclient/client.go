package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-frontdoor/authority"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20

	memberSessionHeader = "X-Stytch-Member-Session"
)

// API paths of the B2B identity authority
const (
	pathDiscoverySend           = "/v1/b2b/magic_links/email/discovery/send"
	pathLoginOrSignup           = "/v1/b2b/magic_links/email/login_or_signup"
	pathDiscoveryAuthenticate   = "/v1/b2b/magic_links/discovery/authenticate"
	pathOAuthDiscoveryAuth      = "/v1/b2b/oauth/discovery/authenticate"
	pathMagicLinkAuthenticate   = "/v1/b2b/magic_links/authenticate"
	pathSessionsAuthenticate    = "/v1/b2b/sessions/authenticate"
	pathIntermediateExchange    = "/v1/b2b/discovery/intermediate_sessions/exchange"
	pathSessionsExchange        = "/v1/b2b/sessions/exchange"
	pathDiscoveredOrganizations = "/v1/b2b/discovery/organizations"
	pathCreateOrganization      = "/v1/b2b/discovery/organizations/create"
	pathOrganizationsPrefix     = "/v1/b2b/organizations/"
)

var _ authority.Client = (*Client)(nil)

// Client talks to the identity authority over HTTPS using project credentials.
type Client struct {
	baseURL    string
	projectID  string
	secret     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates an authority client. Requests are traced with OpenTelemetry.
func New(baseURL, projectID, secret string, options ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrap(err, "[httpclient.New] invalid base URL")
	}
	if projectID == "" || secret == "" {
		return nil, errors.New("[httpclient.New] project id and secret are required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		secret:    secret,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Wire payloads

type emailRequest struct {
	EmailAddress   string `json:"email_address"`
	OrganizationID string `json:"organization_id,omitempty"`
}

type discoveryResponse struct {
	IntermediateSessionToken string                             `json:"intermediate_session_token"`
	SessionToken             string                             `json:"session_token"`
	EmailAddress             string                             `json:"email_address"`
	DiscoveredOrganizations  []authority.DiscoveredOrganization `json:"discovered_organizations"`
}

type sessionResponse struct {
	SessionToken string                 `json:"session_token"`
	Member       authority.Member       `json:"member"`
	Organization authority.Organization `json:"organization"`
}

type updateOrganizationRequest struct {
	EmailJITProvisioning string   `json:"email_jit_provisioning,omitempty"`
	EmailAllowedDomains  []string `json:"email_allowed_domains"`
}

func (c *Client) SendDiscoveryLink(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, pathDiscoverySend, emailRequest{EmailAddress: email}, nil, nil)
}

func (c *Client) SendOrganizationLink(ctx context.Context, email, organizationID string) error {
	return c.do(ctx, http.MethodPost, pathLoginOrSignup, emailRequest{
		EmailAddress:   email,
		OrganizationID: organizationID,
	}, nil, nil)
}

func (c *Client) AuthenticateDiscoveryToken(ctx context.Context, token string) (*authority.DiscoveryResult, error) {
	var resp discoveryResponse
	body := map[string]string{"discovery_magic_links_token": token}
	if err := c.do(ctx, http.MethodPost, pathDiscoveryAuthenticate, body, &resp, nil); err != nil {
		return nil, err
	}
	if resp.IntermediateSessionToken == "" {
		return nil, unexpectedShape(pathDiscoveryAuthenticate, "intermediate_session_token")
	}
	return &authority.DiscoveryResult{
		IntermediateCredential:  resp.IntermediateSessionToken,
		Email:                   resp.EmailAddress,
		DiscoveredOrganizations: resp.DiscoveredOrganizations,
	}, nil
}

// AuthenticateOAuthDiscoveryToken returns both an organization scoped session
// and the sibling organizations available to the same email.
func (c *Client) AuthenticateOAuthDiscoveryToken(ctx context.Context, token string) (*authority.DiscoveryResult, error) {
	var resp discoveryResponse
	body := map[string]string{"discovery_oauth_token": token}
	if err := c.do(ctx, http.MethodPost, pathOAuthDiscoveryAuth, body, &resp, nil); err != nil {
		return nil, err
	}
	if resp.SessionToken == "" {
		return nil, unexpectedShape(pathOAuthDiscoveryAuth, "session_token")
	}
	return &authority.DiscoveryResult{
		SessionCredential:       resp.SessionToken,
		Email:                   resp.EmailAddress,
		DiscoveredOrganizations: resp.DiscoveredOrganizations,
	}, nil
}

func (c *Client) AuthenticateOrganizationToken(ctx context.Context, token string) (*authority.SessionResult, error) {
	return c.session(ctx, pathMagicLinkAuthenticate, map[string]string{"magic_links_token": token})
}

func (c *Client) AuthenticateSession(ctx context.Context, sessionToken string) (*authority.SessionResult, error) {
	return c.session(ctx, pathSessionsAuthenticate, map[string]string{"session_token": sessionToken})
}

func (c *Client) ExchangeIntermediateCredential(ctx context.Context, ist, organizationID string) (*authority.SessionResult, error) {
	return c.session(ctx, pathIntermediateExchange, map[string]string{
		"intermediate_session_token": ist,
		"organization_id":            organizationID,
	})
}

func (c *Client) ExchangeSessionForOrganization(ctx context.Context, sessionToken, organizationID string) (*authority.SessionResult, error) {
	return c.session(ctx, pathSessionsExchange, map[string]string{
		"session_token":   sessionToken,
		"organization_id": organizationID,
	})
}

func (c *Client) ListDiscoveredOrganizations(ctx context.Context, sessionToken string) (*authority.DiscoveryResult, error) {
	var resp discoveryResponse
	body := map[string]string{"session_token": sessionToken}
	if err := c.do(ctx, http.MethodPost, pathDiscoveredOrganizations, body, &resp, nil); err != nil {
		return nil, err
	}
	return &authority.DiscoveryResult{
		Email:                   resp.EmailAddress,
		DiscoveredOrganizations: resp.DiscoveredOrganizations,
	}, nil
}

func (c *Client) CreateOrganizationFromIntermediateCredential(ctx context.Context, ist, name, slug string) (*authority.SessionResult, error) {
	return c.session(ctx, pathCreateOrganization, map[string]string{
		"intermediate_session_token": ist,
		"organization_name":          name,
		"organization_slug":          slug,
	})
}

// UpdateOrganizationSettings forwards the member session so the authority can
// enforce the member's permissions on the organization.
func (c *Client) UpdateOrganizationSettings(ctx context.Context, organizationID string, settings authority.OrganizationSettings, authCredential string) error {
	headers := map[string]string{}
	if authCredential != "" {
		headers[memberSessionHeader] = authCredential
	}
	body := updateOrganizationRequest{
		EmailJITProvisioning: settings.EmailJITProvisioning,
		EmailAllowedDomains:  settings.EmailAllowedDomains,
	}
	return c.do(ctx, http.MethodPut, pathOrganizationsPrefix+url.PathEscape(organizationID), body, nil, headers)
}

func (c *Client) session(ctx context.Context, path string, body any) (*authority.SessionResult, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp, nil); err != nil {
		return nil, err
	}
	if resp.SessionToken == "" {
		return nil, unexpectedShape(path, "session_token")
	}
	return &authority.SessionResult{
		SessionCredential: resp.SessionToken,
		Member:            resp.Member,
		Organization:      resp.Organization,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "[httpclient %s] marshal request", path)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "[httpclient %s] build request", path)
	}
	req.SetBasicAuth(c.projectID, c.secret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[httpclient %s] %w: %v", path, authority.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("[httpclient %s] %w: read body: %v", path, authority.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("[httpclient %s] %w: decode response: %v", path, authority.ErrUnavailable, err)
	}
	return nil
}

func decodeError(statusCode int, raw []byte) error {
	apiErr := &authority.Error{}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.ErrorType == "" {
		apiErr = &authority.Error{ErrorType: "unknown_error", Message: http.StatusText(statusCode), Unknown: true}
	}
	// The body's status_code is informational; the HTTP status decides the class.
	apiErr.StatusCode = statusCode
	apiErr.RawBody = string(raw)
	return apiErr
}

func unexpectedShape(path, field string) error {
	return fmt.Errorf("[httpclient %s] %w: response missing %s", path, authority.ErrUnavailable, field)
}
