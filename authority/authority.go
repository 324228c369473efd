// Package authority defines the contract between the front door and the
// external identity authority. The authority performs all token verification
// and issuance; callers only see opaque credentials and read-only projections.
package authority

import "context"

// Client is a synchronous facade over the identity authority. Every call is a
// single attempt. Authority-side rejections return an *Error matching
// ErrRejected; transport and decoding failures match ErrUnavailable.
type Client interface {
	SendDiscoveryLink(ctx context.Context, email string) error
	SendOrganizationLink(ctx context.Context, email, organizationID string) error

	AuthenticateDiscoveryToken(ctx context.Context, token string) (*DiscoveryResult, error)
	AuthenticateOAuthDiscoveryToken(ctx context.Context, token string) (*DiscoveryResult, error)
	AuthenticateOrganizationToken(ctx context.Context, token string) (*SessionResult, error)
	AuthenticateSession(ctx context.Context, sessionToken string) (*SessionResult, error)

	ExchangeIntermediateCredential(ctx context.Context, ist, organizationID string) (*SessionResult, error)
	ExchangeSessionForOrganization(ctx context.Context, sessionToken, organizationID string) (*SessionResult, error)

	ListDiscoveredOrganizations(ctx context.Context, sessionToken string) (*DiscoveryResult, error)
	CreateOrganizationFromIntermediateCredential(ctx context.Context, ist, name, slug string) (*SessionResult, error)
	UpdateOrganizationSettings(ctx context.Context, organizationID string, settings OrganizationSettings, authCredential string) error
}
