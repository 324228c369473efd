package frontdoor

import (
	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
)

// TokenType is the closed set of tokens the authority redirects back with.
type TokenType int

const (
	TokenTypeDiscovery TokenType = iota + 1
	TokenTypeDiscoveryOAuth
	TokenTypeOrganizationMagicLink
)

// Wire names of the token types, as sent in the stytch_token_type query parameter
const (
	tokenTypeDiscoveryName      = "discovery"
	tokenTypeDiscoveryOAuthName = "discovery_oauth"
	tokenTypeMagicLinkName      = "multi_tenant_magic_links"
)

// ParseTokenType maps the wire name of a token type. Unknown names fail with
// ErrUnrecognizedTokenType before any business logic runs.
func ParseTokenType(s string) (TokenType, error) {
	switch s {
	case tokenTypeDiscoveryName:
		return TokenTypeDiscovery, nil
	case tokenTypeDiscoveryOAuthName:
		return TokenTypeDiscoveryOAuth, nil
	case tokenTypeMagicLinkName:
		return TokenTypeOrganizationMagicLink, nil
	default:
		return 0, apperrors.Kindf(apperrors.ErrUnrecognizedTokenType, "%q", s)
	}
}

func (t TokenType) String() string {
	switch t {
	case TokenTypeDiscovery:
		return tokenTypeDiscoveryName
	case TokenTypeDiscoveryOAuth:
		return tokenTypeDiscoveryOAuthName
	case TokenTypeOrganizationMagicLink:
		return tokenTypeMagicLinkName
	default:
		return "unknown"
	}
}
